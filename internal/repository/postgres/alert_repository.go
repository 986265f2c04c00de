// backend-go/internal/repository/postgres/alert_repository.go
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

type alertConfigRepository struct {
	db *DB
}

func NewAlertConfigRepository(db *DB) *alertConfigRepository {
	return &alertConfigRepository{db: db}
}

type alertConfigRow struct {
	ProductID  int64           `db:"product_id"`
	Kind       string          `db:"kind"`
	Thresholds json.RawMessage `db:"thresholds"`
	Threshold  int             `db:"threshold"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r alertConfigRow) toDomain() (*domain.AlertConfig, error) {
	cfg := &domain.AlertConfig{
		ProductID: r.ProductID,
		Kind:      domain.AlertKind(r.Kind),
		Threshold: r.Threshold,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Thresholds) > 0 {
		if err := json.Unmarshal(r.Thresholds, &cfg.Thresholds); err != nil {
			return nil, fmt.Errorf("decode thresholds for product %d: %w", r.ProductID, err)
		}
	}
	return cfg, nil
}

func (r *alertConfigRepository) GetConfig(ctx context.Context, productID int64) (*domain.AlertConfig, error) {
	query := `
		SELECT product_id, kind, COALESCE(thresholds, '{}') AS thresholds, threshold, updated_at
		FROM stock_alert_configs
		WHERE product_id = $1
	`

	var row alertConfigRow
	if err := sqlx.GetContext(ctx, r.db, &row, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No config is a normal state, not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert config: %w", err)
	}
	return row.toDomain()
}

func (r *alertConfigRepository) ListConfigs(ctx context.Context) ([]*domain.AlertConfig, error) {
	query := `
		SELECT product_id, kind, COALESCE(thresholds, '{}') AS thresholds, threshold, updated_at
		FROM stock_alert_configs
		ORDER BY product_id
	`

	var rows []alertConfigRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list alert configs: %w", err)
	}

	configs := make([]*domain.AlertConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (r *alertConfigRepository) SaveConfig(ctx context.Context, cfg *domain.AlertConfig) error {
	payload, err := json.Marshal(cfg.Thresholds)
	if err != nil {
		return fmt.Errorf("encode thresholds: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO stock_alert_configs (product_id, kind, thresholds, threshold, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (product_id)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				thresholds = EXCLUDED.thresholds,
				threshold = EXCLUDED.threshold,
				updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, query, cfg.ProductID, string(cfg.Kind), payload, cfg.Threshold); err != nil {
			return fmt.Errorf("failed to save alert config: %w", err)
		}
		return nil
	})
}

func (r *alertConfigRepository) DeleteConfig(ctx context.Context, productID int64) error {
	query := `DELETE FROM stock_alert_configs WHERE product_id = $1`
	if _, err := r.db.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to delete alert config: %w", err)
	}
	return nil
}
