package events

import (
	"context"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
)

// Типы событий жизненного цикла заказа
const (
	OrderCreated   = "order_created"
	OrderInvoiced  = "order_invoiced"
	OrderPaid      = "order_paid"
	OrderCancelled = "order_cancelled"
)

// IOrderEventProducer публикация событий заказов для внешней аналитики.
// Опциональный: при отсутствии Kafka-конфигурации события просто не публикуются.
type IOrderEventProducer interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *domain.Order) error
}
