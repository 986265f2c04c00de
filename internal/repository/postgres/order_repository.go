// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

type orderRow struct {
	ID          int64           `db:"id"`
	OrderNo     string          `db:"order_no"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Rows        json.RawMessage `db:"rows"`
	Status      string          `db:"status"`
	StockInAt   *time.Time      `db:"stock_in_at"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r orderRow) toDomain() (*domain.PurchaseOrder, error) {
	o := &domain.PurchaseOrder{
		ID:          r.ID,
		OrderNo:     r.OrderNo,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Status:      domain.OrderStatus(r.Status),
		StockInAt:   r.StockInAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Rows) > 0 {
		if err := json.Unmarshal(r.Rows, &o.Rows); err != nil {
			return nil, fmt.Errorf("decode rows for order %d: %w", r.ID, err)
		}
	}
	return o, nil
}

const orderColumns = `
	id, order_no, product_id, product_name, COALESCE(rows, '[]') AS rows,
	status, stock_in_at, created_at, updated_at
`

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1`

	var row orderRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return row.toDomain()
}

func (r *orderRepository) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.PurchaseOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM purchase_orders
		WHERE ($1 = 0 OR product_id = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR order_no LIKE $3 || '%')
		ORDER BY order_no DESC
	`

	var rows []orderRow
	err := sqlx.SelectContext(ctx, r.db, &rows, query,
		filter.ProductID, string(filter.Status), filter.OrderNoPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*domain.PurchaseOrder, 0, len(rows))
	for _, row := range rows {
		o, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	payload, err := json.Marshal(order.Rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO purchase_orders (order_no, product_id, product_name, rows, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query,
			order.OrderNo, order.ProductID, order.ProductName, payload, string(order.Status),
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) UpdateRows(ctx context.Context, id int64, rows []domain.PurchaseRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	query := `UPDATE purchase_orders SET rows = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, payload)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	query := `UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, string(status))
}

func (r *orderRepository) MarkStockIn(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE purchase_orders SET stock_in_at = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, at)
}

func (r *orderRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
