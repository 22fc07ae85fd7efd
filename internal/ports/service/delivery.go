package service

import (
	"context"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// IDeliveryService доставка оплаченного пака покупателю.
// Ошибка доставки никогда не должна откатывать подтверждение оплаты.
type IDeliveryService interface {
	Deliver(ctx context.Context, order *domain.Order, product *domain.Product) error
}
