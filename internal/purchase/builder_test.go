package purchase

import (
	"testing"
	"time"

	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLensRows(t *testing.T) {
	rows := BuildLensRows(map[string]int{
		"68_0.00":  2, // -3.00/+0.00
		"80_-0.50": 5, // +0.00/-0.50
		"70_0.00":  0, // dropped
	}, 12.5)

	require.Len(t, rows, 2)
	// Cylinder ascending: the -0.50 row sorts before the 0.00 row.
	assert.Equal(t, domain.PurchaseRow{Degree: "+0.00/-0.50", Quantity: 5, UnitPrice: 12.5}, rows[0])
	assert.Equal(t, domain.PurchaseRow{Degree: "-3.00/+0.00", Quantity: 2, UnitPrice: 12.5}, rows[1])
}

func TestSortRowsToleratesMalformedDegrees(t *testing.T) {
	rows := []domain.PurchaseRow{
		{Degree: "+1.00/+0.00", Quantity: 1},
		{Degree: "junk", Quantity: 1},
		{Degree: "-2.00/-0.25", Quantity: 1},
	}
	SortRows(rows)

	// "junk" parses as 0/0 and lands between the -0.25 row and the
	// sphere +1.00 row.
	assert.Equal(t, "-2.00/-0.25", rows[0].Degree)
	assert.Equal(t, "junk", rows[1].Degree)
	assert.Equal(t, "+1.00/+0.00", rows[2].Degree)
}

func TestNextOrderNo(t *testing.T) {
	date := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	existing := []*domain.PurchaseOrder{
		{OrderNo: "CG2024010100", Status: domain.OrderActive},
		{OrderNo: "CG2024010101", Status: domain.OrderActive},
		{OrderNo: "CG2024010102", Status: domain.OrderActive},
		{OrderNo: "CG2024010103", Status: domain.OrderCancelled},
	}

	// The cancelled order still holds its sequence number.
	assert.Equal(t, "CG2024010104", NextOrderNo(existing, domain.OrderPrefixNormal, date))
}

func TestNextOrderNoIsolatesPrefixAndDate(t *testing.T) {
	date := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	existing := []*domain.PurchaseOrder{
		{OrderNo: "CG2024010109"}, // previous day
		{OrderNo: "YJ2024010205"}, // other prefix, same day
	}

	assert.Equal(t, "CG2024010201", NextOrderNo(existing, domain.OrderPrefixNormal, date))
	assert.Equal(t, "YJ2024010206", NextOrderNo(existing, domain.OrderPrefixAlert, date))
}

func TestNextOrderNoEmpty(t *testing.T) {
	date := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "YJ2024031501", NextOrderNo(nil, domain.OrderPrefixAlert, date))
}

func TestNormalizeEditDropsZeroRows(t *testing.T) {
	rows, err := NormalizeEdit([]domain.PurchaseRow{
		{Degree: "-3.00/+0.00", Quantity: 0},
		{Degree: "-2.00/+0.00", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "-2.00/+0.00", rows[0].Degree)
}

func TestNormalizeEditRejectsEmptyResult(t *testing.T) {
	_, err := NormalizeEdit([]domain.PurchaseRow{{Degree: "-3.00/+0.00", Quantity: 0}})
	assert.ErrorIs(t, err, domain.ErrNoRows)

	_, err = NormalizeEdit(nil)
	assert.ErrorIs(t, err, domain.ErrNoRows)
}

func TestNormalizeEditRejectsNegativeQuantity(t *testing.T) {
	_, err := NormalizeEdit([]domain.PurchaseRow{{Degree: "-3.00/+0.00", Quantity: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
