package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/cache"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/events"
	"github.com/google/uuid"
)

// CreateOrder создаёт заказ в статусе pending со снапшотом цены из каталога
func (u *UseCase) CreateOrder(ctx context.Context, buyerID int64, productID string) (*domain.Order, *domain.Product, error) {
	product, err := u.Catalog.Get(productID)
	if err != nil {
		return nil, nil, err
	}

	order := &domain.Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		ProductID: product.ID,
		Price:     product.Price,
		Currency:  product.Currency,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := u.Orders.Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	u.Log.Info("order created",
		"order_id", order.ID,
		"buyer_id", buyerID,
		"product_id", product.ID,
		"price", order.Price,
		"currency", order.Currency,
	)

	u.publishEvent(ctx, events.OrderCreated, order)
	return order, product, nil
}

// IssueInvoice выставляет invoice на заказ и переводит его в invoiced.
// Повторный вызов перевыставляет invoice: последний invoice выигрывает.
func (u *UseCase) IssueInvoice(ctx context.Context, order *domain.Order, product *domain.Product) (*domain.Invoice, error) {
	invoice, err := u.Gateway.CreateInvoice(ctx, order, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	stored, err := u.Orders.UpdateInvoice(ctx, order.ID, *invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}
	if !stored {
		// Заказ успел стать терминальным, пока провайдер выставлял invoice
		u.Log.Warn("invoice discarded, order already terminal", "order_id", order.ID)
		return nil, domain.ErrInvalidTransition
	}

	applied, err := u.Orders.Transition(ctx, order.ID,
		[]domain.OrderStatus{domain.OrderStatusPending},
		domain.OrderStatusInvoiced, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order invoiced: %w", err)
	}

	order.Invoice = *invoice
	if applied {
		order.Status = domain.OrderStatusInvoiced
		u.publishEvent(ctx, events.OrderInvoiced, order)
	}

	u.Log.Info("invoice issued",
		"order_id", order.ID,
		"invoice_id", invoice.ID,
		"pay_url", invoice.PayURL,
		"reissued", !applied,
	)
	return invoice, nil
}

// ConfirmPaid переводит заказ в paid. Идемпотентен: повторное подтверждение
// уже оплаченного заказа - no-op без повторной доставки. Недоплата ниже
// underpayTolerance не блокирует подтверждение, только алертится.
func (u *UseCase) ConfirmPaid(ctx context.Context, orderID uuid.UUID, paidAmount float64, hasAmount bool, txInfo domain.TxInfo) (*domain.Order, error) {
	order, err := u.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusPaid {
		u.Log.Info("order already paid, confirmation is a no-op", "order_id", orderID)
		return order, nil
	}

	if order.Status == domain.OrderStatusCancelled {
		u.Log.Warn("payment received for cancelled order",
			"order_id", orderID,
			"buyer_id", order.BuyerID,
		)
		u.alert(ctx, fmt.Sprintf("⚠️ Оплата по отменённому заказу %s (buyer %d) - нужна ручная сверка",
			orderID, order.BuyerID))
		return order, domain.ErrInvalidTransition
	}

	if hasAmount && paidAmount < order.Price {
		u.Log.Warn("underpayment detected",
			"order_id", orderID,
			"expected", order.Price,
			"received", paidAmount,
			"currency", order.Currency,
		)
		// Алерт в ops-чат только при существенной недоплате
		if paidAmount < order.Price*underpayTolerance {
			u.alert(ctx, fmt.Sprintf("⚠️ Недоплата по заказу %s: получено %.8g из %.8g %s",
				orderID, paidAmount, order.Price, order.Currency))
		}
	}

	now := time.Now().UTC()
	applied, err := u.Orders.Transition(ctx, orderID,
		[]domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusInvoiced},
		domain.OrderStatusPaid, &now, txInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if !applied {
		// Гонка с параллельным уведомлением: перечитываем и смотрим, кто успел
		order, err = u.Orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order.Status == domain.OrderStatusPaid {
			u.Log.Info("order paid by concurrent confirmation", "order_id", orderID)
			return order, nil
		}
		return order, domain.ErrInvalidTransition
	}

	order.Status = domain.OrderStatusPaid
	order.PaidAt = &now
	if len(txInfo) > 0 {
		order.TxInfo = txInfo
	}

	u.Log.Info("order paid",
		"order_id", orderID,
		"buyer_id", order.BuyerID,
		"product_id", order.ProductID,
	)

	u.invalidateStatusCache(ctx, order)
	u.publishEvent(ctx, events.OrderPaid, order)
	u.deliver(ctx, order)

	return order, nil
}

// deliver запускает доставку пака. Сбой доставки не откатывает оплату:
// заказ остаётся paid, алерт уходит в ops-чат.
func (u *UseCase) deliver(ctx context.Context, order *domain.Order) {
	product, err := u.Catalog.Get(order.ProductID)
	if err != nil {
		u.Log.Error("paid order references unknown product",
			"order_id", order.ID,
			"product_id", order.ProductID,
		)
		u.alert(ctx, fmt.Sprintf("🚨 Оплаченный заказ %s ссылается на неизвестный пак %s",
			order.ID, order.ProductID))
		return
	}

	if err := u.Delivery.Deliver(ctx, order, product); err != nil {
		u.Log.Error("delivery failed",
			"error", err,
			"order_id", order.ID,
			"buyer_id", order.BuyerID,
		)
		u.alert(ctx, fmt.Sprintf("🚨 Доставка по оплаченному заказу %s не удалась: %v", order.ID, err))
		return
	}

	u.Log.Info("pack delivered", "order_id", order.ID, "buyer_id", order.BuyerID)
}

// Cancel отменяет заказ покупателя. Отмена возможна только из pending/invoiced.
func (u *UseCase) Cancel(ctx context.Context, buyerID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := u.getOwnedOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}

	applied, err := u.Orders.Transition(ctx, orderID,
		[]domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusInvoiced},
		domain.OrderStatusCancelled, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	if !applied {
		return order, domain.ErrInvalidTransition
	}

	order.Status = domain.OrderStatusCancelled

	u.Log.Info("order cancelled", "order_id", orderID, "buyer_id", buyerID)
	u.invalidateStatusCache(ctx, order)
	u.publishEvent(ctx, events.OrderCancelled, order)
	return order, nil
}

// CheckPaid ручная проверка оплаты покупателем. Не просто читает статус:
// если в сохранённом invoice провайдер уже проставил "оплаченный" статус,
// подтверждает оплату; для оплаченного заказа повторно запускает доставку -
// маркер доставки делает повтор no-op, так что это безопасный путь
// восстановления после сбоя доставки.
func (u *UseCase) CheckPaid(ctx context.Context, buyerID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := u.getOwnedOrder(ctx, buyerID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.OrderStatusPaid {
		u.deliver(ctx, order)
		return order, nil
	}

	if !order.Status.IsTerminal() && domain.IsPaidProviderStatus(order.Invoice.Status) {
		confirmed, err := u.ConfirmPaid(ctx, orderID, 0, false, nil)
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		if confirmed != nil {
			return confirmed, nil
		}
	}

	return order, nil
}

// ListOrders возвращает заказы покупателя, новые первыми
func (u *UseCase) ListOrders(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	return u.Orders.ListByBuyer(ctx, buyerID)
}

// GetOrder возвращает заказ без проверки владельца (dev-страница оплаты)
func (u *UseCase) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return u.Orders.GetByID(ctx, id)
}

// RecordProviderStatus фиксирует промежуточный статус invoice от провайдера
func (u *UseCase) RecordProviderStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	if err := u.Orders.UpdateInvoiceStatus(ctx, orderID, status); err != nil {
		return err
	}
	u.Log.Info("provider status recorded", "order_id", orderID, "status", status)
	return nil
}

// getOwnedOrder получает заказ с проверкой владельца.
// Чужой заказ неотличим от несуществующего.
func (u *UseCase) getOwnedOrder(ctx context.Context, buyerID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := u.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		u.Log.Warn("order ownership check failed",
			"order_id", orderID,
			"owner_id", order.BuyerID,
			"requester_id", buyerID,
		)
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (u *UseCase) publishEvent(ctx context.Context, eventType string, order *domain.Order) {
	if u.Producer == nil {
		return
	}
	if err := u.Producer.PublishOrderEvent(ctx, eventType, order); err != nil {
		u.Log.Warn("failed to publish order event",
			"error", err,
			"event_type", eventType,
			"order_id", order.ID,
		)
	}
}

func (u *UseCase) alert(ctx context.Context, message string) {
	if u.Alerter == nil {
		return
	}
	if err := u.Alerter.SendAlert(ctx, message); err != nil {
		u.Log.Warn("failed to send alert", "error", err)
	}
}

func (u *UseCase) invalidateStatusCache(ctx context.Context, order *domain.Order) {
	if u.Cache == nil {
		return
	}
	if err := u.Cache.Delete(ctx, cache.OrderStatusKey(order.BuyerID, order.ID)); err != nil {
		u.Log.Debug("failed to invalidate status cache", "error", err, "order_id", order.ID)
	}
}
