package payment

import (
	"context"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// IPaymentGateway интерфейс платёжного шлюза (крипто-провайдер).
// Use case зависит только от этого интерфейса, не зная деталей реализации.
type IPaymentGateway interface {
	// CreateInvoice выставляет invoice на заказ. При недоступности провайдера
	// адаптер обязан вернуть локальный placeholder-invoice (pay-url на нашу
	// страницу оплаты), чтобы поток покупки не останавливался. Ошибка
	// возвращается только если и fallback построить не удалось.
	CreateInvoice(ctx context.Context, order *domain.Order, product *domain.Product) (*domain.Invoice, error)

	// VerifyNotification проверяет HMAC-SHA512 подпись тела уведомления.
	// Возвращает domain.ErrSignatureInvalid при несовпадении.
	VerifyNotification(rawBody []byte, signature string) error

	// ParseNotification разбирает тело уведомления в PaymentNotification
	ParseNotification(rawBody []byte) (domain.PaymentNotification, error)
}
