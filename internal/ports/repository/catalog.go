package repository

import "github.com/admin/tg-bots/pack-store-bot/internal/domain"

// ICatalog статический read-only каталог паков
type ICatalog interface {
	Get(productID string) (*domain.Product, error)
	List(kind domain.ProductKind) []domain.Product
	All() []domain.Product
}
