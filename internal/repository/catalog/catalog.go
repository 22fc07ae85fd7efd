package catalogRepo

import (
	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	ports "github.com/admin/tg-bots/pack-store-bot/internal/ports/repository"
)

// Catalog статический каталог товаров. Паки захардкожены: ассортимент
// меняется релизом, а не админкой.
type Catalog struct {
	products map[string]domain.Product
	order    []string
}

// New создаёт каталог с предзаполненным ассортиментом
func New() ports.ICatalog {
	c := &Catalog{
		products: make(map[string]domain.Product),
	}

	for _, p := range defaultProducts() {
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}

	return c
}

func defaultProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "anime_pack",
			Title:       "Аниме-пак",
			Description: "50 артов в аниме-стилистике, 4K, без водяных знаков",
			Kind:        domain.ProductKindImage,
			Price:       5.0,
			Currency:    "USDT",
			DemoURL:     "https://cdn.pack-store.dev/demo/anime_pack.jpg",
			AssetURL:    "https://cdn.pack-store.dev/full/anime_pack.zip",
			AssetKey:    "packs/anime_pack.zip",
		},
		{
			ID:          "realism_pack",
			Title:       "Реализм-пак",
			Description: "40 фотореалистичных артов, 4K, без водяных знаков",
			Kind:        domain.ProductKindImage,
			Price:       7.0,
			Currency:    "USDT",
			DemoURL:     "https://cdn.pack-store.dev/demo/realism_pack.jpg",
			AssetURL:    "https://cdn.pack-store.dev/full/realism_pack.zip",
			AssetKey:    "packs/realism_pack.zip",
		},
		{
			ID:          "face_pack",
			Title:       "Портрет-пак",
			Description: "30 портретных артов крупным планом, 4K",
			Kind:        domain.ProductKindImage,
			Price:       10.0,
			Currency:    "USDT",
			DemoURL:     "https://cdn.pack-store.dev/demo/face_pack.jpg",
			AssetURL:    "https://cdn.pack-store.dev/full/face_pack.zip",
			AssetKey:    "packs/face_pack.zip",
		},
		{
			ID:          "cinematic_pack",
			Title:       "Кино-пак",
			Description: "10 видеороликов в кинематографичной цветокоррекции, 1080p",
			Kind:        domain.ProductKindVideo,
			Price:       15.0,
			Currency:    "USDT",
			DemoURL:     "https://cdn.pack-store.dev/demo/cinematic_pack.mp4",
			AssetURL:    "https://cdn.pack-store.dev/full/cinematic_pack.zip",
			AssetKey:    "packs/cinematic_pack.zip",
		},
	}
}

// Get находит товар по ID
func (c *Catalog) Get(productID string) (*domain.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return nil, domain.ErrUnknownProduct
	}
	return &p, nil
}

// List возвращает товары указанного типа в порядке каталога
func (c *Catalog) List(kind domain.ProductKind) []domain.Product {
	result := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		if p := c.products[id]; p.Kind == kind {
			result = append(result, p)
		}
	}
	return result
}

// All возвращает все товары в порядке каталога
func (c *Catalog) All() []domain.Product {
	result := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.products[id])
	}
	return result
}
