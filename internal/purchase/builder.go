// backend-go/internal/purchase/builder.go
package purchase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/grid"
)

// BuildLensRows turns per-cell quantities (cell key -> quantity) into
// normalized purchase rows for a lens product. Zero and negative
// quantities are dropped; every row gets the default unit price, which is
// the product's configured purchase price or 0 when unset.
func BuildLensRows(quantities map[string]int, unitPrice float64) []domain.PurchaseRow {
	rows := make([]domain.PurchaseRow, 0, len(quantities))
	for cellKey, qty := range quantities {
		if qty <= 0 {
			continue
		}
		rows = append(rows, domain.PurchaseRow{
			Degree:    grid.KeyToDegree(cellKey),
			Quantity:  qty,
			UnitPrice: unitPrice,
		})
	}
	SortRows(rows)
	return rows
}

// BuildSimpleRow builds the single row used for non-lens products.
func BuildSimpleRow(quantity int, unitPrice float64) []domain.PurchaseRow {
	return []domain.PurchaseRow{{Quantity: quantity, UnitPrice: unitPrice}}
}

// SortRows orders rows for display: cylinder ascending, then sphere
// ascending, both parsed back out of the degree string. Components that
// fail to parse sort as 0, so malformed legacy degrees still land in a
// stable spot instead of breaking the listing.
func SortRows(rows []domain.PurchaseRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, ci := grid.DegreeParts(rows[i].Degree)
		sj, cj := grid.DegreeParts(rows[j].Degree)
		if ci != cj {
			return ci < cj
		}
		return si < sj
	})
}

// NextOrderNo allocates the order number for a new order:
// {prefix}{YYYYMMDD}{NN}. The sequence is the highest existing sequence
// for that prefix and date plus one. Cancelled orders stay in the scan;
// excluding them would reuse their numbers.
func NextOrderNo(existing []*domain.PurchaseOrder, prefix string, now time.Time) string {
	datePart := now.Format("20060102")
	head := prefix + datePart
	maxSeq := 0
	for _, o := range existing {
		if !strings.HasPrefix(o.OrderNo, head) {
			continue
		}
		seq, err := strconv.Atoi(o.OrderNo[len(head):])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%02d", head, maxSeq+1)
}

// NormalizeEdit validates an edited row list before saving: negative
// quantities are rejected, zero-quantity rows are dropped, and an edit
// that leaves no rows at all is refused.
func NormalizeEdit(rows []domain.PurchaseRow) ([]domain.PurchaseRow, error) {
	kept := make([]domain.PurchaseRow, 0, len(rows))
	for _, row := range rows {
		if row.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if row.Quantity == 0 {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return nil, domain.ErrNoRows
	}
	SortRows(kept)
	return kept, nil
}
