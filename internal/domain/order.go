package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // создан, invoice ещё не выставлен
	OrderStatusInvoiced  OrderStatus = "invoiced"  // invoice выставлен, ждём оплату
	OrderStatusPaid      OrderStatus = "paid"      // оплачен (терминальный)
	OrderStatusCancelled OrderStatus = "cancelled" // отменён покупателем (терминальный)
)

// IsTerminal терминальные статусы не допускают переходов
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// PlaceholderInvoicePrefix префикс id местного invoice, выданного без
// участия платёжного провайдера
const PlaceholderInvoicePrefix = "local-"

// Invoice последний invoice, полученный от платёжного провайдера (JSONB)
type Invoice struct {
	ID       string  `json:"id"`
	PayURL   string  `json:"pay_url"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// IsZero true если invoice ещё не выставлялся
func (i Invoice) IsZero() bool {
	return i.ID == "" && i.PayURL == ""
}

// IsPlaceholder true если invoice выдан локально, а не провайдером.
// Только такие invoice можно оплачивать через dev-страницу.
func (i Invoice) IsPlaceholder() bool {
	return strings.HasPrefix(i.ID, PlaceholderInvoicePrefix)
}

// Scan реализует sql.Scanner для JSONB колонки
func (i *Invoice) Scan(value interface{}) error {
	if value == nil {
		*i = Invoice{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*i = Invoice{}
		return nil
	}

	if len(bytes) == 0 {
		*i = Invoice{}
		return nil
	}

	return json.Unmarshal(bytes, i)
}

// Value реализует driver.Valuer для сохранения в БД
func (i Invoice) Value() (driver.Value, error) {
	if i.IsZero() {
		return nil, nil
	}
	return json.Marshal(i)
}

// TxInfo payload уведомления провайдера, зафиксированный при переходе в paid (JSONB)
type TxInfo map[string]interface{}

// Scan реализует sql.Scanner для JSONB колонки
func (t *TxInfo) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*t = nil
		return nil
	}

	if len(bytes) == 0 {
		*t = nil
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// Value реализует driver.Valuer для сохранения в БД
func (t TxInfo) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return json.Marshal(t)
}

// Order заказ на покупку пака.
// Цена и валюта - снапшот из каталога на момент создания, дальше не меняются.
// Заказы никогда не удаляются физически, история хранится для /orders.
type Order struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	BuyerID   int64       `json:"buyer_id" db:"buyer_id"` // telegram chat/user id покупателя
	ProductID string      `json:"product_id" db:"product_id"`
	Price     float64     `json:"price" db:"price"`
	Currency  string      `json:"currency" db:"currency"`
	Status    OrderStatus `json:"status" db:"status"`
	Invoice   Invoice     `json:"invoice,omitempty" db:"invoice"`
	TxInfo    TxInfo      `json:"tx_info,omitempty" db:"tx_info"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	PaidAt    *time.Time  `json:"paid_at,omitempty" db:"paid_at"`
}
