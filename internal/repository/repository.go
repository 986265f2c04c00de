// backend-go/internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	ProductID int64
	Status    domain.OrderStatus
	// OrderNoPrefix matches the head of the order number, e.g.
	// "CG20240101" for same-day sequence allocation.
	OrderNoPrefix string
}

type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdatePowerRange(ctx context.Context, id int64, powerRange []string) error
}

type OrderRepository interface {
	GetOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.PurchaseOrder, error)
	CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error
	UpdateRows(ctx context.Context, id int64, rows []domain.PurchaseRow) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	MarkStockIn(ctx context.Context, id int64, at time.Time) error
}

type AlertConfigRepository interface {
	// GetConfig returns (nil, nil) when the product has no config;
	// absence means "no alert configured", not an error.
	GetConfig(ctx context.Context, productID int64) (*domain.AlertConfig, error)
	ListConfigs(ctx context.Context) ([]*domain.AlertConfig, error)
	SaveConfig(ctx context.Context, cfg *domain.AlertConfig) error
	DeleteConfig(ctx context.Context, productID int64) error
}
