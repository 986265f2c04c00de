package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/cache"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducts struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	rangeErr error
}

func newFakeProducts(products ...*domain.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) ListProducts(_ context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Product, 0, len(f.products))
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProducts) UpdatePowerRange(_ context.Context, id int64, powerRange []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rangeErr != nil {
		return f.rangeErr
	}
	p, ok := f.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.PowerRange = powerRange
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*domain.PurchaseOrder
	nextID int64
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) ListOrders(_ context.Context, filter repository.OrderFilter) ([]*domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.PurchaseOrder
	for _, o := range f.orders {
		if filter.ProductID != 0 && o.ProductID != filter.ProductID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.OrderNoPrefix != "" && len(o.OrderNo) >= len(filter.OrderNoPrefix) &&
			o.OrderNo[:len(filter.OrderNoPrefix)] != filter.OrderNoPrefix {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *domain.PurchaseOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	cp := *order
	f.orders = append(f.orders, &cp)
	return nil
}

func (f *fakeOrders) UpdateRows(_ context.Context, id int64, rows []domain.PurchaseRow) error {
	return f.update(id, func(o *domain.PurchaseOrder) { o.Rows = rows })
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	return f.update(id, func(o *domain.PurchaseOrder) { o.Status = status })
}

func (f *fakeOrders) MarkStockIn(_ context.Context, id int64, at time.Time) error {
	return f.update(id, func(o *domain.PurchaseOrder) { o.StockInAt = &at })
}

func (f *fakeOrders) update(id int64, fn func(*domain.PurchaseOrder)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			fn(o)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeConfigs struct {
	mu      sync.Mutex
	configs map[int64]*domain.AlertConfig
}

func newFakeConfigs(configs ...*domain.AlertConfig) *fakeConfigs {
	f := &fakeConfigs{configs: make(map[int64]*domain.AlertConfig)}
	for _, cfg := range configs {
		f.configs[cfg.ProductID] = cfg
	}
	return f
}

func (f *fakeConfigs) GetConfig(_ context.Context, productID int64) (*domain.AlertConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[productID]
	if !ok {
		return nil, nil
	}
	cp := *cfg
	return &cp, nil
}

func (f *fakeConfigs) ListConfigs(_ context.Context) ([]*domain.AlertConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.AlertConfig, 0, len(f.configs))
	for _, cfg := range f.configs {
		cp := *cfg
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeConfigs) SaveConfig(_ context.Context, cfg *domain.AlertConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cfg
	f.configs[cfg.ProductID] = &cp
	return nil
}

func (f *fakeConfigs) DeleteConfig(_ context.Context, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.configs, productID)
	return nil
}

type failingMirror struct{}

func (failingMirror) Set(context.Context, int64, []string) error { return errors.New("mirror down") }
func (failingMirror) Get(context.Context, int64) ([]string, bool, error) {
	return nil, false, errors.New("mirror down")
}

func lensProduct(id int64, powerRange ...string) *domain.Product {
	return &domain.Product{
		ID:            id,
		SKU:           "LNS-001",
		Name:          "1.56 single vision",
		Kind:          domain.KindLens,
		PowerRange:    powerRange,
		PurchasePrice: 12.5,
	}
}

func TestSavePowerRangeOutcome(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1))
	svc := NewProductService(products, cache.NewNoopRangeMirror())

	outcome, err := svc.SavePowerRange(ctx, 1, []string{"80_0.00", "68_-0.50"})
	require.NoError(t, err)
	assert.True(t, outcome.Complete())
	assert.Equal(t, LegOK, outcome.Remote)
	assert.Equal(t, LegOK, outcome.Cache)

	p, err := products.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"68_-0.50", "80_0.00"}, p.PowerRange)
}

func TestSavePowerRangeRejectsBadKeys(t *testing.T) {
	svc := NewProductService(newFakeProducts(lensProduct(1)), cache.NewNoopRangeMirror())

	outcome, err := svc.SavePowerRange(context.Background(), 1, []string{"999_9.99"})
	require.Error(t, err)
	assert.False(t, outcome.Complete())
	assert.Equal(t, LegSkipped, outcome.Remote)
}

func TestSavePowerRangeDegradedOnMirrorFailure(t *testing.T) {
	svc := NewProductService(newFakeProducts(lensProduct(1)), failingMirror{})

	outcome, err := svc.SavePowerRange(context.Background(), 1, []string{"80_0.00"})
	// Remote succeeded: the write is complete, just degraded.
	require.NoError(t, err)
	assert.True(t, outcome.Complete())
	assert.True(t, outcome.Degraded())
	assert.Equal(t, LegFailed, outcome.Cache)
}

func newPurchaseService(products *fakeProducts, orders *fakeOrders, at time.Time) *PurchaseService {
	svc := NewPurchaseService(orders, products, cache.NewNoopAlertCache())
	svc.now = func() time.Time { return at }
	return svc
}

func TestCreateLensOrderNumbering(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1, "68_0.00"))
	orders := &fakeOrders{}
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := newPurchaseService(products, orders, day)

	first, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 2})
	require.NoError(t, err)
	assert.Equal(t, "CG2024010101", first.OrderNo)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, domain.PurchaseRow{Degree: "-3.00/+0.00", Quantity: 2, UnitPrice: 12.5}, first.Rows[0])

	// Cancel the first order; its number must not be reused.
	require.NoError(t, svc.Cancel(ctx, first.ID))
	second, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 1})
	require.NoError(t, err)
	assert.Equal(t, "CG2024010102", second.OrderNo)
}

func TestCreateLensOrderRejectsEmptyAndNonLens(t *testing.T) {
	ctx := context.Background()
	frame := &domain.Product{ID: 2, Name: "half frame", Kind: domain.KindFrame}
	svc := newPurchaseService(newFakeProducts(lensProduct(1, "68_0.00"), frame), &fakeOrders{}, time.Now())

	_, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 0})
	assert.ErrorIs(t, err, domain.ErrNoRows)

	_, err = svc.CreateLensOrder(ctx, 2, domain.OrderPrefixNormal, map[string]int{"68_0.00": 1})
	assert.Error(t, err)
}

func TestStockInRules(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1, "68_0.00"))
	orders := &fakeOrders{}
	svc := newPurchaseService(products, orders, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	order, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 5})
	require.NoError(t, err)

	stocked, err := svc.StockIn(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stocked.StockInAt)

	_, err = svc.StockIn(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyStockedIn)

	cancelled, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 1})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, cancelled.ID))
	_, err = svc.StockIn(ctx, cancelled.ID)
	assert.ErrorIs(t, err, domain.ErrOrderCancelled)
}

func TestStockPerDegree(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1, "68_0.00"))
	orders := &fakeOrders{}
	svc := newPurchaseService(products, orders, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	for _, qty := range []int{5, 3} {
		o, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": qty})
		require.NoError(t, err)
		_, err = svc.StockIn(ctx, o.ID)
		require.NoError(t, err)
	}
	// A cancelled stocked-in order must not count.
	big, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 100})
	require.NoError(t, err)
	_, err = svc.StockIn(ctx, big.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, big.ID))

	cs, err := svc.Stock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, cs.ByDegree["-3.00/+0.00"])
	assert.Equal(t, 8, cs.Total)
}

func TestEditRows(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1, "68_0.00", "69_0.00"))
	orders := &fakeOrders{}
	svc := newPurchaseService(products, orders, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	order, err := svc.CreateLensOrder(ctx, 1, domain.OrderPrefixNormal, map[string]int{"68_0.00": 5, "69_0.00": 2})
	require.NoError(t, err)

	edited, err := svc.EditRows(ctx, order.ID, []domain.PurchaseRow{
		{Degree: "-3.00/+0.00", Quantity: 0},
		{Degree: "-2.75/+0.00", Quantity: 4, UnitPrice: 12.5},
	})
	require.NoError(t, err)
	require.Len(t, edited.Rows, 1)
	assert.Equal(t, 4, edited.Rows[0].Quantity)

	_, err = svc.EditRows(ctx, order.ID, []domain.PurchaseRow{{Degree: "-3.00/+0.00", Quantity: 0}})
	assert.ErrorIs(t, err, domain.ErrNoRows)
}

func TestAlertEvaluatePrunesPurchased(t *testing.T) {
	ctx := context.Background()
	products := newFakeProducts(lensProduct(1, "68_0.00"))
	orders := &fakeOrders{}
	configs := newFakeConfigs(&domain.AlertConfig{
		ProductID:  1,
		Kind:       domain.AlertLens,
		Thresholds: map[string]int{"68_0.00": 5},
	})
	purchased := cache.NewMemoryPurchasedSet()
	alertSvc := NewAlertService(products, orders, configs, purchased, cache.NewNoopAlertCache())
	purchaseSvc := newPurchaseService(products, orders, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	// No stock at all: in alert, suggestion is the full threshold.
	items, err := alertSvc.Evaluate(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Suggestions[0].Quantity)

	require.NoError(t, alertSvc.MarkPurchased(ctx, 1))
	items, err = alertSvc.Evaluate(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Purchased)

	// Restock past the threshold: product leaves the alert list and the
	// purchased mark is pruned with it.
	o, err := purchaseSvc.CreateLensOrder(ctx, 1, domain.OrderPrefixAlert, map[string]int{"68_0.00": 5})
	require.NoError(t, err)
	_, err = purchaseSvc.StockIn(ctx, o.ID)
	require.NoError(t, err)

	items, err = alertSvc.Evaluate(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, items)

	members, err := purchased.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestSaveConfigClearsSimpleOnZero(t *testing.T) {
	ctx := context.Background()
	configs := newFakeConfigs(&domain.AlertConfig{ProductID: 2, Kind: domain.AlertSimple, Threshold: 4})
	svc := NewAlertService(newFakeProducts(), &fakeOrders{}, configs, cache.NewMemoryPurchasedSet(), cache.NewNoopAlertCache())

	require.NoError(t, svc.SaveConfig(ctx, &domain.AlertConfig{ProductID: 2, Kind: domain.AlertSimple, Threshold: 0}))
	cfg, err := svc.GetConfig(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	err = svc.SaveConfig(ctx, &domain.AlertConfig{ProductID: 2, Kind: domain.AlertSimple, Threshold: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}
