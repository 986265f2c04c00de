// backend-go/internal/service/purchase_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/cache"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/purchase"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/stock"
	"github.com/rs/zerolog/log"
)

type PurchaseService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	alertCache cache.AlertCache
	now        func() time.Time
}

func NewPurchaseService(orders repository.OrderRepository, products repository.ProductRepository, alertCache cache.AlertCache) *PurchaseService {
	return &PurchaseService{
		orders:     orders,
		products:   products,
		alertCache: alertCache,
		now:        time.Now,
	}
}

// CurrentStock is the derived stock view for one product.
type CurrentStock struct {
	ProductID int64          `json:"product_id"`
	Kind      domain.CategoryKind `json:"kind"`
	ByDegree  map[string]int `json:"by_degree,omitempty"`
	Total     int            `json:"total"`
}

// GetOrder returns one order.
func (s *PurchaseService) GetOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return s.orders.GetOrder(ctx, id)
}

// ListOrders lists orders, optionally filtered by product and status.
func (s *PurchaseService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.PurchaseOrder, error) {
	return s.orders.ListOrders(ctx, filter)
}

// CreateLensOrder creates a purchase order from per-cell quantities for a
// lens product. The unit price defaults to the product's purchase price.
func (s *PurchaseService) CreateLensOrder(ctx context.Context, productID int64, prefix string, quantities map[string]int) (*domain.PurchaseOrder, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Kind.IsLens() {
		return nil, fmt.Errorf("product %d is not a lens product", productID)
	}

	rows := purchase.BuildLensRows(quantities, p.PurchasePrice)
	if len(rows) == 0 {
		return nil, domain.ErrNoRows
	}
	return s.create(ctx, p, prefix, rows)
}

// CreateSimpleOrder creates a single-row order for a non-lens product.
func (s *PurchaseService) CreateSimpleOrder(ctx context.Context, productID int64, prefix string, quantity int) (*domain.PurchaseOrder, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, p, prefix, purchase.BuildSimpleRow(quantity, p.PurchasePrice))
}

func (s *PurchaseService) create(ctx context.Context, p *domain.Product, prefix string, rows []domain.PurchaseRow) (*domain.PurchaseOrder, error) {
	if prefix != domain.OrderPrefixNormal && prefix != domain.OrderPrefixAlert {
		return nil, fmt.Errorf("unknown order prefix %q", prefix)
	}

	now := s.now()
	// Same-day orders, cancelled included, feed the sequence scan.
	sameDay, err := s.orders.ListOrders(ctx, repository.OrderFilter{
		OrderNoPrefix: prefix + now.Format("20060102"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan same-day orders: %w", err)
	}

	order := &domain.PurchaseOrder{
		OrderNo:     purchase.NextOrderNo(sameDay, prefix, now),
		ProductID:   p.ID,
		ProductName: p.Name,
		Rows:        rows,
		Status:      domain.OrderActive,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// EditRows replaces an active order's rows. Zero-quantity rows are
// dropped; an edit that leaves nothing is rejected.
func (s *PurchaseService) EditRows(ctx context.Context, orderID int64, rows []domain.PurchaseRow) (*domain.PurchaseOrder, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderCancelled {
		return nil, domain.ErrOrderCancelled
	}

	kept, err := purchase.NormalizeEdit(rows)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdateRows(ctx, orderID, kept); err != nil {
		return nil, err
	}
	order.Rows = kept
	s.invalidateAlerts(ctx)
	return order, nil
}

// Cancel marks an order cancelled. Its order number is never reused.
func (s *PurchaseService) Cancel(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderCancelled {
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.OrderCancelled); err != nil {
		return err
	}
	s.invalidateAlerts(ctx)
	return nil
}

// StockIn receives an active order into stock. Rejected for cancelled
// orders and for orders already stocked in.
func (s *PurchaseService) StockIn(ctx context.Context, orderID int64) (*domain.PurchaseOrder, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderCancelled {
		return nil, domain.ErrOrderCancelled
	}
	if order.StockedIn() {
		return nil, domain.ErrAlreadyStockedIn
	}

	at := s.now()
	if err := s.orders.MarkStockIn(ctx, orderID, at); err != nil {
		return nil, err
	}
	order.StockInAt = &at
	s.invalidateAlerts(ctx)
	return order, nil
}

// Stock computes the current stock for one product by folding its orders.
func (s *PurchaseService) Stock(ctx context.Context, productID int64) (*CurrentStock, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, repository.OrderFilter{ProductID: productID})
	if err != nil {
		return nil, err
	}

	cs := &CurrentStock{ProductID: productID, Kind: p.Kind}
	if p.Kind.IsLens() {
		cs.ByDegree = stock.LensStock(orders)
		for _, qty := range cs.ByDegree {
			cs.Total += qty
		}
	} else {
		cs.Total = stock.TotalStock(orders)
	}
	return cs, nil
}

// Alert state depends on stock, so any stock-affecting mutation drops the
// snapshot. Failure here only delays the refresh until the TTL expires.
func (s *PurchaseService) invalidateAlerts(ctx context.Context) {
	if err := s.alertCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate alert snapshot")
	}
}
