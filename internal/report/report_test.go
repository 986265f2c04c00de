package report

import (
	"context"
	"testing"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	products []*domain.Product
}

func (s *stubProducts) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProducts) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products, nil
}

func (s *stubProducts) UpdatePowerRange(ctx context.Context, id int64, powerRange []string) error {
	return nil
}

type stubOrders struct {
	byProduct map[int64][]*domain.PurchaseOrder
}

func (s *stubOrders) GetOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return nil, domain.ErrNotFound
}

func (s *stubOrders) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*domain.PurchaseOrder, error) {
	return s.byProduct[filter.ProductID], nil
}

func (s *stubOrders) CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error { return nil }
func (s *stubOrders) UpdateRows(ctx context.Context, id int64, rows []domain.PurchaseRow) error {
	return nil
}
func (s *stubOrders) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return nil
}
func (s *stubOrders) MarkStockIn(ctx context.Context, id int64, at time.Time) error { return nil }

type stubConfigs struct {
	byProduct map[int64]*domain.AlertConfig
}

func (s *stubConfigs) GetConfig(ctx context.Context, productID int64) (*domain.AlertConfig, error) {
	return s.byProduct[productID], nil
}

func (s *stubConfigs) ListConfigs(ctx context.Context) ([]*domain.AlertConfig, error) {
	var configs []*domain.AlertConfig
	for _, cfg := range s.byProduct {
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (s *stubConfigs) SaveConfig(ctx context.Context, cfg *domain.AlertConfig) error { return nil }
func (s *stubConfigs) DeleteConfig(ctx context.Context, productID int64) error       { return nil }

func stockedIn(t time.Time) *time.Time { return &t }

func TestGenerateSummarizesCatalog(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	products := &stubProducts{products: []*domain.Product{
		{ID: 1, SKU: "LENS-161", Name: "1.61 Aspheric", Kind: domain.KindLens, PowerRange: []string{"80_0.00", "81_0.00"}},
		{ID: 2, SKU: "FRAME-01", Name: "Titanium Frame", Kind: domain.KindFrame},
	}}
	orders := &stubOrders{byProduct: map[int64][]*domain.PurchaseOrder{
		1: {
			{
				ID: 10, ProductID: 1, Status: domain.OrderActive, StockInAt: stockedIn(now),
				Rows: []domain.PurchaseRow{
					{Degree: "+0.00/+0.00", Quantity: 3},
					{Degree: "+0.25/+0.00", Quantity: 2},
				},
			},
			// Not stocked in yet, must not count.
			{
				ID: 11, ProductID: 1, Status: domain.OrderActive,
				Rows: []domain.PurchaseRow{{Degree: "+0.00/+0.00", Quantity: 50}},
			},
		},
		2: {
			{
				ID: 12, ProductID: 2, Status: domain.OrderActive, StockInAt: stockedIn(now),
				Rows: []domain.PurchaseRow{{Quantity: 4}},
			},
		},
	}}
	configs := &stubConfigs{byProduct: map[int64]*domain.AlertConfig{
		1: {ProductID: 1, Kind: domain.AlertLens, Thresholds: map[string]int{"80_0.00": 5, "81_0.00": 2}},
		2: {ProductID: 2, Kind: domain.AlertSimple, Threshold: 10},
	}}

	reporter := NewReporter(products, orders, configs, nil, 2)
	lines, err := reporter.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// Sorted by SKU.
	frame, lens := lines[0], lines[1]
	assert.Equal(t, "FRAME-01", frame.SKU)
	assert.Equal(t, 4, frame.TotalStock)
	assert.True(t, frame.InAlert)
	assert.Equal(t, 6, frame.SuggestedQty)

	assert.Equal(t, "LENS-161", lens.SKU)
	assert.Equal(t, 5, lens.TotalStock)
	assert.Equal(t, 2, lens.DegreesStocked)
	// 80_0.00 is at 3 of 5, 81_0.00 is at 2 of 2. Only the first fires.
	assert.True(t, lens.InAlert)
	assert.Equal(t, 2, lens.SuggestedQty)
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV([]Line{
		{SKU: "A", Name: "a", Kind: domain.KindOther, TotalStock: 1},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "sku,name,kind,total_stock,degrees_stocked,in_alert,suggested_qty")
	assert.Contains(t, string(data), "A,a,other,1,0,false,0")
}
