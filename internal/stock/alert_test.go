package stock

import (
	"testing"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cell key 68_0.00 renders as degree -3.00/+0.00.
const (
	cellA   = "68_0.00"
	degreeA = "-3.00/+0.00"
)

func lensProduct(powerRange ...string) *domain.Product {
	return &domain.Product{ID: 1, Name: "1.56 single vision", Kind: domain.KindLens, PowerRange: powerRange}
}

func TestEvaluateNoConfig(t *testing.T) {
	item := Evaluate(lensProduct(cellA), nil, nil)
	assert.Nil(t, item)
}

func TestEvaluateLensBoundary(t *testing.T) {
	cfg := &domain.AlertConfig{Kind: domain.AlertLens, Thresholds: map[string]int{cellA: 5}}

	// Stock exactly at the threshold: not in alert.
	orders := []*domain.PurchaseOrder{
		order(domain.OrderActive, stockedIn(), domain.PurchaseRow{Degree: degreeA, Quantity: 5}),
	}
	assert.Nil(t, Evaluate(lensProduct(cellA), cfg, orders))

	// One below: in alert with a suggestion of exactly 1.
	orders = []*domain.PurchaseOrder{
		order(domain.OrderActive, stockedIn(), domain.PurchaseRow{Degree: degreeA, Quantity: 4}),
	}
	item := Evaluate(lensProduct(cellA), cfg, orders)
	require.NotNil(t, item)
	require.Len(t, item.Suggestions, 1)
	assert.Equal(t, domain.Suggestion{Degree: degreeA, Stock: 4, Threshold: 5, Quantity: 1}, item.Suggestions[0])
}

func TestEvaluateLensSuggestedQuantity(t *testing.T) {
	cfg := &domain.AlertConfig{Kind: domain.AlertLens, Thresholds: map[string]int{cellA: 10}}
	orders := []*domain.PurchaseOrder{
		order(domain.OrderActive, stockedIn(), domain.PurchaseRow{Degree: degreeA, Quantity: 4}),
	}

	item := Evaluate(lensProduct(cellA), cfg, orders)
	require.NotNil(t, item)
	require.Len(t, item.Suggestions, 1)
	assert.Equal(t, 6, item.Suggestions[0].Quantity)
}

func TestEvaluateLensIgnoresDormantThresholds(t *testing.T) {
	// Threshold for a cell no longer in the power range never fires.
	cfg := &domain.AlertConfig{Kind: domain.AlertLens, Thresholds: map[string]int{
		cellA:     10,
		"69_0.00": 10,
	}}
	p := lensProduct(cellA)

	item := Evaluate(p, cfg, nil)
	require.NotNil(t, item)
	require.Len(t, item.Suggestions, 1)
	assert.Equal(t, degreeA, item.Suggestions[0].Degree)
}

func TestEvaluateLensSuggestionOrdering(t *testing.T) {
	// 68_-0.50 = -3.00/-0.50, 80_0.00 = +0.00/+0.00.
	cfg := &domain.AlertConfig{Kind: domain.AlertLens, Thresholds: map[string]int{
		"80_0.00":  2,
		cellA:      2,
		"68_-0.50": 2,
	}}
	p := lensProduct(cellA, "80_0.00", "68_-0.50")

	item := Evaluate(p, cfg, nil)
	require.NotNil(t, item)
	require.Len(t, item.Suggestions, 3)
	assert.Equal(t, "-3.00/-0.50", item.Suggestions[0].Degree)
	assert.Equal(t, degreeA, item.Suggestions[1].Degree)
	assert.Equal(t, "+0.00/+0.00", item.Suggestions[2].Degree)
}

func TestEvaluateSimple(t *testing.T) {
	p := &domain.Product{ID: 2, Name: "half frame", Kind: domain.KindFrame}
	cfg := &domain.AlertConfig{Kind: domain.AlertSimple, Threshold: 3}

	orders := []*domain.PurchaseOrder{
		order(domain.OrderActive, stockedIn(), domain.PurchaseRow{Quantity: 3}),
	}
	assert.Nil(t, Evaluate(p, cfg, orders))

	orders = []*domain.PurchaseOrder{
		order(domain.OrderActive, stockedIn(), domain.PurchaseRow{Quantity: 1}),
	}
	item := Evaluate(p, cfg, orders)
	require.NotNil(t, item)
	require.Len(t, item.Suggestions, 1)
	assert.Equal(t, 2, item.Suggestions[0].Quantity)
}

func TestEvaluateSimpleSuggestionFloor(t *testing.T) {
	p := &domain.Product{ID: 2, Name: "cleaning service", Kind: domain.KindService}

	// Threshold 0 can never fire (stock is never negative), and the
	// floor keeps any suggestion at a minimum of 1.
	cfg := &domain.AlertConfig{Kind: domain.AlertSimple, Threshold: 0}
	assert.Nil(t, Evaluate(p, cfg, nil))

	cfg = &domain.AlertConfig{Kind: domain.AlertSimple, Threshold: 1}
	item := Evaluate(p, cfg, nil)
	require.NotNil(t, item)
	assert.Equal(t, 1, item.Suggestions[0].Quantity)
}

func TestPrunePurchased(t *testing.T) {
	purchased := map[int64]struct{}{1: {}, 2: {}, 3: {}}
	inAlert := map[int64]struct{}{2: {}}

	removed := PrunePurchased(purchased, inAlert)
	assert.Equal(t, []int64{1, 3}, removed)
	assert.Equal(t, map[int64]struct{}{2: {}}, purchased)
}
