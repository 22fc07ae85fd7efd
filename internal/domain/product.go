package domain

// ProductKind тип пака
type ProductKind string

const (
	ProductKindImage ProductKind = "image"
	ProductKindVideo ProductKind = "video"
)

func (k ProductKind) IsValid() bool {
	switch k {
	case ProductKindImage, ProductKindVideo:
		return true
	default:
		return false
	}
}

// Product пак (набор изображений или видео) в каталоге магазина.
// Каталог загружается один раз на старте и не мутируется.
type Product struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        ProductKind `json:"kind"`
	Price       float64     `json:"price"`
	Currency    string      `json:"currency"`
	DemoURL     string      `json:"demo_url"`  // превью, отдаётся бесплатно
	AssetURL    string      `json:"asset_url"` // ссылка на сам пак, отправляется после оплаты
	AssetKey    string      `json:"asset_key"` // ключ объекта в S3 для fallback-доставки байтами
}
