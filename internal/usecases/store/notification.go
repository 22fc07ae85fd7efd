package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/google/uuid"
)

// HandleNotification обрабатывает IPN-уведомление провайдера.
// Порядок строгий: сначала подпись, потом разбор, потом бизнес-логика.
func (u *UseCase) HandleNotification(ctx context.Context, rawBody []byte, signature string) error {
	if err := u.Gateway.VerifyNotification(rawBody, signature); err != nil {
		u.Log.Warn("notification rejected", "error", err)
		return err
	}

	notification, err := u.Gateway.ParseNotification(rawBody)
	if err != nil {
		u.Log.Warn("failed to parse notification", "error", err)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	orderIDRaw := notification.OrderID()
	if orderIDRaw == "" {
		u.Log.Warn("notification without order reference", "status", notification.Status())
		return fmt.Errorf("notification carries no order reference")
	}

	orderID, err := uuid.Parse(orderIDRaw)
	if err != nil {
		u.Log.Warn("notification with malformed order id", "order_id", orderIDRaw)
		return fmt.Errorf("malformed order id %q: %w", orderIDRaw, err)
	}

	if !notification.IsPaid() {
		status := notification.Status()
		u.Log.Info("non-final notification received",
			"order_id", orderID,
			"status", status,
		)
		if status == "" {
			return nil
		}
		return u.RecordProviderStatus(ctx, orderID, status)
	}

	amount, hasAmount := notification.PaidAmount()
	_, err = u.ConfirmPaid(ctx, orderID, amount, hasAmount, domain.TxInfo(notification))
	if errors.Is(err, domain.ErrInvalidTransition) {
		// Заказ в терминальном статусе, алерт уже ушёл - провайдеру отвечаем ок,
		// иначе он будет ретраить уведомление бесконечно
		return nil
	}
	return err
}

// SimulatePayment имитирует успешную оплату (dev-страница /pay).
// Работает только для placeholder-invoice: заказ, на который провайдер
// выставил настоящий invoice, бесплатно через эту ручку не оплатить.
// Проходит через тот же ConfirmPaid, что и настоящие уведомления.
func (u *UseCase) SimulatePayment(ctx context.Context, id uuid.UUID) error {
	order, err := u.Orders.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.Invoice.IsPlaceholder() {
		u.Log.Warn("payment simulation rejected",
			"order_id", id,
			"invoice_id", order.Invoice.ID,
		)
		return domain.ErrSimulationUnavailable
	}

	txInfo := domain.TxInfo{
		"payment_status": "finished",
		"order_id":       id.String(),
		"actually_paid":  order.Price,
		"simulated":      true,
	}

	_, err = u.ConfirmPaid(ctx, id, order.Price, true, txInfo)
	return err
}
