// backend-go/internal/repository/postgres/product_repository.go
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
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

type productRow struct {
	ID            int64           `db:"id"`
	SKU           string          `db:"sku"`
	Name          string          `db:"name"`
	Kind          string          `db:"kind"`
	PowerRange    json.RawMessage `db:"power_range"`
	PurchasePrice float64         `db:"purchase_price"`
	SalePrice     float64         `db:"sale_price"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r productRow) toDomain() (*domain.Product, error) {
	p := &domain.Product{
		ID:            r.ID,
		SKU:           r.SKU,
		Name:          r.Name,
		Kind:          domain.CategoryKind(r.Kind),
		PurchasePrice: r.PurchasePrice,
		SalePrice:     r.SalePrice,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if len(r.PowerRange) > 0 {
		if err := json.Unmarshal(r.PowerRange, &p.PowerRange); err != nil {
			return nil, fmt.Errorf("decode power range for product %d: %w", r.ID, err)
		}
	}
	return p, nil
}

func (r *productRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, kind, COALESCE(power_range, '[]') AS power_range,
		       COALESCE(purchase_price, 0) AS purchase_price,
		       COALESCE(sale_price, 0) AS sale_price,
		       created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var row productRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return row.toDomain()
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, sku, name, kind, COALESCE(power_range, '[]') AS power_range,
		       COALESCE(purchase_price, 0) AS purchase_price,
		       COALESCE(sale_price, 0) AS sale_price,
		       created_at, updated_at
		FROM products
		ORDER BY sku ASC
	`

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *productRepository) UpdatePowerRange(ctx context.Context, id int64, powerRange []string) error {
	payload, err := json.Marshal(powerRange)
	if err != nil {
		return fmt.Errorf("encode power range: %w", err)
	}

	query := `
		UPDATE products
		SET power_range = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("failed to update power range: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
