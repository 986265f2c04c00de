// backend-go/internal/stock/aggregate.go
package stock

import (
	"strings"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
)

// Current stock is never persisted: it is a fold over the product's
// purchase orders, counting only active orders that have been received
// into stock. Recomputed whenever the order list changes.

func counts(o *domain.PurchaseOrder) bool {
	return o.Status == domain.OrderActive && o.StockedIn()
}

// LensStock sums stocked-in quantities per degree for a lens product.
// Rows with a blank degree are skipped; they come from legacy orders
// recorded before the degree grid existed.
func LensStock(orders []*domain.PurchaseOrder) map[string]int {
	totals := make(map[string]int)
	for _, o := range orders {
		if !counts(o) {
			continue
		}
		for _, row := range o.Rows {
			degree := strings.TrimSpace(row.Degree)
			if degree == "" {
				continue
			}
			totals[degree] += row.Quantity
		}
	}
	return totals
}

// TotalStock sums stocked-in quantities across all rows for a non-lens
// product.
func TotalStock(orders []*domain.PurchaseOrder) int {
	total := 0
	for _, o := range orders {
		if !counts(o) {
			continue
		}
		for _, row := range o.Rows {
			total += row.Quantity
		}
	}
	return total
}
