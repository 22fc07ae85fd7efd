package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCacheMiss ключ в кэше отсутствует
var ErrCacheMiss = errors.New("cache miss")

// Cache интерфейс кэша (Redis). Опциональный - при отсутствии конфигурации
// приложение работает без кэша.
type Cache interface {
	// Get возвращает значение или ошибку, оборачивающую ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Пространство ключей магазина. Все ключи собираются здесь,
// чтобы префиксы не разъезжались между сервисами.

// OrderStatusKey короткоживущий кэш статуса заказа. Ключ привязан
// к покупателю: чужой заказ из кэша не прочитать.
func OrderStatusKey(buyerID int64, orderID uuid.UUID) string {
	return fmt.Sprintf("order_status:%d:%s", buyerID, orderID)
}

// DeliveredKey маркер успешной доставки пака по заказу
func DeliveredKey(orderID uuid.UUID) string {
	return "delivered:" + orderID.String()
}
