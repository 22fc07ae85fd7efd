package domain

import "errors"

var (
	// ErrUnknownProduct buy ссылается на несуществующий пак
	ErrUnknownProduct = errors.New("product not found")

	// ErrOrderNotFound заказ не найден или принадлежит другому покупателю.
	// Намеренно одна и та же ошибка в обоих случаях, чтобы не раскрывать
	// существование чужих заказов.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition переход запрещён текущим статусом (например, cancel оплаченного)
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSignatureInvalid подпись IPN-уведомления не сошлась
	ErrSignatureInvalid = errors.New("notification signature invalid")

	// ErrSimulationUnavailable имитация оплаты разрешена только для
	// placeholder-invoice: заказ с настоящим invoice оплачивается у провайдера
	ErrSimulationUnavailable = errors.New("payment simulation unavailable for this order")

	// ErrProviderUnavailable платёжный провайдер недоступен (восстанавливается placeholder-invoice)
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
