// backend-go/internal/stock/alert.go
package stock

import (
	"sort"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/grid"
)

// Evaluate compares a product's alert config against its current stock.
// Returns nil when the product is not in alert, which includes having no
// config at all. The boundary is strict: stock equal to the threshold is
// not in alert.
func Evaluate(p *domain.Product, cfg *domain.AlertConfig, orders []*domain.PurchaseOrder) *domain.AlertItem {
	if cfg == nil {
		return nil
	}

	var suggestions []domain.Suggestion
	switch cfg.Kind {
	case domain.AlertLens:
		suggestions = evaluateLens(p, cfg, LensStock(orders))
	case domain.AlertSimple:
		suggestions = evaluateSimple(cfg, TotalStock(orders))
	default:
		return nil
	}

	if len(suggestions) == 0 {
		return nil
	}
	return &domain.AlertItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Kind:        cfg.Kind,
		Suggestions: suggestions,
	}
}

func evaluateLens(p *domain.Product, cfg *domain.AlertConfig, byDegree map[string]int) []domain.Suggestion {
	inRange := grid.NewRangeSet(p.PowerRange...)

	var suggestions []domain.Suggestion
	for cellKey, threshold := range cfg.Thresholds {
		// Thresholds for degrees removed from the power range stay in
		// storage but never fire.
		if !inRange.Contains(cellKey) {
			continue
		}
		degree := grid.KeyToDegree(cellKey)
		current := byDegree[degree]
		if current < threshold {
			suggestions = append(suggestions, domain.Suggestion{
				Degree:    degree,
				Stock:     current,
				Threshold: threshold,
				Quantity:  threshold - current,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		si, ci := grid.DegreeParts(suggestions[i].Degree)
		sj, cj := grid.DegreeParts(suggestions[j].Degree)
		if ci != cj {
			return ci < cj
		}
		return si < sj
	})
	return suggestions
}

func evaluateSimple(cfg *domain.AlertConfig, current int) []domain.Suggestion {
	if current >= cfg.Threshold {
		return nil
	}
	qty := cfg.Threshold - current
	if qty < 1 {
		qty = 1
	}
	return []domain.Suggestion{{
		Stock:     current,
		Threshold: cfg.Threshold,
		Quantity:  qty,
	}}
}

// PrunePurchased drops product IDs from the purchased set that are no
// longer in alert. Runs after every recomputation, not only on explicit
// user action, so the purchased list never refers to recovered products.
func PrunePurchased(purchased map[int64]struct{}, inAlert map[int64]struct{}) []int64 {
	var removed []int64
	for id := range purchased {
		if _, ok := inAlert[id]; !ok {
			removed = append(removed, id)
			delete(purchased, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}
