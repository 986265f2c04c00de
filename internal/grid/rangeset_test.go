package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeSetBasics(t *testing.T) {
	s := NewRangeSet("68_-0.50", "69_-0.50")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("68_-0.50"))

	s.Add("70_0.00")
	s.Remove("68_-0.50")
	assert.False(t, s.Contains("68_-0.50"))
	assert.Equal(t, 2, s.Len())

	c := s.Clone()
	c.Remove("70_0.00")
	assert.True(t, s.Contains("70_0.00"))
}

func TestRangeSetOrdering(t *testing.T) {
	// Cells: sphere indexes 68 (-3.00) and 80 (+0.00), cylinders 0.00 and -0.50.
	s := NewRangeSet("80_-0.50", "68_0.00", "80_0.00", "68_-0.50")

	// Grid order: cylinder descending (0.00 row first), sphere ascending.
	assert.Equal(t,
		[]string{"68_0.00", "80_0.00", "68_-0.50", "80_-0.50"},
		s.GridOrder())

	// Flat order: cylinder ascending, sphere ascending.
	assert.Equal(t,
		[]string{"68_-0.50", "80_-0.50", "68_0.00", "80_0.00"},
		s.FlatOrder())
}

func TestRangeSetDegrees(t *testing.T) {
	s := NewRangeSet("68_-0.50", "80_0.00")
	assert.Equal(t, []string{"-3.00/-0.50", "+0.00/+0.00"}, s.Degrees())
}

func TestRangeSetUnparseableKeysSortLast(t *testing.T) {
	s := NewRangeSet("80_0.00", "legacy", "68_0.00")
	order := s.FlatOrder()
	assert.Equal(t, []string{"68_0.00", "80_0.00", "legacy"}, order)
}
