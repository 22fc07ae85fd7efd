package usecase

import (
	"context"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/service"
	"github.com/google/uuid"
)

// IStoreUseCase полный интерфейс use case магазина.
// Включает обработку чата (IBotService) и серверные операции,
// которые дергают HTTP-контроллеры.
type IStoreUseCase interface {
	service.IBotService

	// HandleNotification обрабатывает IPN-уведомление провайдера:
	// проверка подписи, разбор, подтверждение оплаты или запись статуса
	HandleNotification(ctx context.Context, rawBody []byte, signature string) error

	// GetOrder возвращает заказ без проверки владельца (для dev-страницы оплаты)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// SimulatePayment имитирует успешную оплату заказа (dev-страница оплаты)
	SimulatePayment(ctx context.Context, id uuid.UUID) error
}
