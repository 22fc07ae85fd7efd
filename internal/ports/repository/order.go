package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/google/uuid"
)

// IOrderRepo интерфейс для работы с заказами в БД.
// Все операции атомарны в пределах одного order_id.
type IOrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListByBuyer возвращает заказы покупателя, новые первыми
	ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error)

	// UpdateInvoice перезаписывает invoice заказа (последний выигрывает).
	// Терминальный заказ не трогается: возвращается false, как у Transition.
	UpdateInvoice(ctx context.Context, id uuid.UUID, invoice domain.Invoice) (bool, error)

	// UpdateInvoiceStatus обновляет только поле статуса внутри сохранённого invoice
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error

	// Transition делает compare-and-set перехода статуса: заказ переводится в to
	// только если текущий статус входит в from. Возвращает false ("not applicable"),
	// если статус заказа уже не позволяет переход - это не ошибка.
	Transition(ctx context.Context, id uuid.UUID, from []domain.OrderStatus, to domain.OrderStatus, paidAt *time.Time, txInfo domain.TxInfo) (bool, error)
}
