package orderRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/pack-store-bot/internal/domain"
	"github.com/admin/tg-bots/pack-store-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/pack-store-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type orderColumns struct {
	TableName string
	ID        string
	BuyerID   string
	ProductID string
	Price     string
	Currency  string
	Status    string
	Invoice   string
	TxInfo    string
	CreatedAt string
	PaidAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns orderColumns
}

// New создаёт новый репозиторий для работы с заказами
func New(db persistence.Persistence, log *slog.Logger) ports.IOrderRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: orderColumns{
			TableName: "orders",
			ID:        "id",
			BuyerID:   "buyer_id",
			ProductID: "product_id",
			Price:     "price",
			Currency:  "currency",
			Status:    "status",
			Invoice:   "invoice",
			TxInfo:    "tx_info",
			CreatedAt: "created_at",
			PaidAt:    "paid_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (10 полей)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.BuyerID,
		r.columns.ProductID,
		r.columns.Price,
		r.columns.Currency,
		r.columns.Status,
		r.columns.Invoice,
		r.columns.TxInfo,
		r.columns.CreatedAt,
		r.columns.PaidAt,
	)
}

// Create создаёт новый заказ
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	invoiceValue, err := order.Invoice.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal invoice: %w", err)
	}

	txInfoValue, err := order.TxInfo.Value()
	if err != nil {
		return fmt.Errorf("failed to marshal tx_info: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err = r.db.Exec(ctx, query,
		order.ID,
		order.BuyerID,
		order.ProductID,
		order.Price,
		order.Currency,
		string(order.Status),
		invoiceValue,
		txInfoValue,
		order.CreatedAt,
		order.PaidAt,
	)
	if err != nil {
		r.Log.Error("failed to create order",
			"error", err,
			"order_id", order.ID,
			"buyer_id", order.BuyerID,
		)
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.Log.Debug("order created successfully",
		"order_id", order.ID,
		"buyer_id", order.BuyerID,
		"product_id", order.ProductID,
	)
	return nil
}

// GetByID получает заказ по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("order not found", "order_id", id)
			return nil, domain.ErrOrderNotFound
		}
		r.Log.Error("failed to get order",
			"error", err,
			"order_id", id,
		)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// ListByBuyer возвращает заказы покупателя, новые первыми
func (r *Repository) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	var orders []domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.BuyerID,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &orders, query, buyerID); err != nil {
		r.Log.Error("failed to list orders",
			"error", err,
			"buyer_id", buyerID,
		)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// UpdateInvoice перезаписывает invoice заказа (последний invoice выигрывает).
// Условие по статусу закрывает гонку с параллельным подтверждением оплаты:
// invoice оплаченного или отменённого заказа не перетирается.
func (r *Repository) UpdateInvoice(ctx context.Context, id uuid.UUID, invoice domain.Invoice) (bool, error) {
	invoiceValue, err := invoice.Value()
	if err != nil {
		return false, fmt.Errorf("failed to marshal invoice: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s IN ($3, $4)`,
		r.columns.TableName,
		r.columns.Invoice,
		r.columns.ID,
		r.columns.Status,
	)

	affected, err := r.db.ExecWithResult(ctx, query, invoiceValue, id,
		string(domain.OrderStatusPending), string(domain.OrderStatusInvoiced))
	if err != nil {
		r.Log.Error("failed to update invoice",
			"error", err,
			"order_id", id,
		)
		return false, fmt.Errorf("failed to update invoice: %w", err)
	}

	r.Log.Debug("invoice updated",
		"order_id", id,
		"invoice_id", invoice.ID,
		"applied", affected > 0,
	)
	return affected > 0, nil
}

// UpdateInvoiceStatus обновляет только поле status внутри JSONB invoice
func (r *Repository) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = jsonb_set(%s, '{status}', to_jsonb($1::text)) WHERE %s = $2 AND %s IS NOT NULL`,
		r.columns.TableName,
		r.columns.Invoice,
		r.columns.Invoice,
		r.columns.ID,
		r.columns.Invoice,
	)

	if err := r.db.Exec(ctx, query, status, id); err != nil {
		r.Log.Error("failed to update invoice status",
			"error", err,
			"order_id", id,
			"status", status,
		)
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	return nil
}

// Transition compare-and-set перехода статуса: UPDATE применяется только если
// текущий статус входит в from. Возвращает false если строка не затронута -
// переход "not applicable", решает вызывающая сторона, что с этим делать.
// Однострочный UPDATE атомарен, блокировок поверх него не нужно.
func (r *Repository) Transition(
	ctx context.Context,
	id uuid.UUID,
	from []domain.OrderStatus,
	to domain.OrderStatus,
	paidAt *time.Time,
	txInfo domain.TxInfo,
) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("transition requires at least one source status")
	}

	txInfoValue, err := txInfo.Value()
	if err != nil {
		return false, fmt.Errorf("failed to marshal tx_info: %w", err)
	}

	args := []interface{}{string(to), paidAt, txInfoValue, id}
	placeholders := make([]string, 0, len(from))
	for _, st := range from {
		args = append(args, string(st))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1, %s = COALESCE($2, %s), %s = COALESCE($3, %s) WHERE %s = $4 AND %s IN (%s)`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.PaidAt, r.columns.PaidAt,
		r.columns.TxInfo, r.columns.TxInfo,
		r.columns.ID,
		r.columns.Status,
		strings.Join(placeholders, ", "),
	)

	affected, err := r.db.ExecWithResult(ctx, query, args...)
	if err != nil {
		r.Log.Error("failed to transition order status",
			"error", err,
			"order_id", id,
			"to", to,
		)
		return false, fmt.Errorf("failed to transition order status: %w", err)
	}

	if affected == 0 {
		r.Log.Debug("transition not applicable",
			"order_id", id,
			"to", to,
		)
		return false, nil
	}

	r.Log.Debug("order status transitioned",
		"order_id", id,
		"to", to,
	)
	return true, nil
}
