// backend-go/internal/grid/rangeset.go
package grid

import "sort"

// RangeSet is the set of cell keys a product supports. Membership only;
// ordering is imposed at enumeration time.
type RangeSet map[string]struct{}

// NewRangeSet builds a set from a list of cell keys.
func NewRangeSet(keys ...string) RangeSet {
	s := make(RangeSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s RangeSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s RangeSet) Add(key string)    { s[key] = struct{}{} }
func (s RangeSet) Remove(key string) { delete(s, key) }
func (s RangeSet) Len() int          { return len(s) }

// Keys returns the cell keys in unspecified order.
func (s RangeSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns an independent copy.
func (s RangeSet) Clone() RangeSet {
	c := make(RangeSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// GridOrder returns the keys ordered for grid rendering: cylinder
// descending (axis row order), sphere ascending within a row. Keys that
// fail to parse sort to the end.
func (s RangeSet) GridOrder() []string {
	return s.sorted(func(a, b cellPos) bool {
		if a.cylinder != b.cylinder {
			return a.cylinder > b.cylinder
		}
		return a.sphereIdx < b.sphereIdx
	})
}

// FlatOrder returns the keys in purchase-row display order: cylinder
// ascending, sphere ascending.
func (s RangeSet) FlatOrder() []string {
	return s.sorted(func(a, b cellPos) bool {
		if a.cylinder != b.cylinder {
			return a.cylinder < b.cylinder
		}
		return a.sphereIdx < b.sphereIdx
	})
}

// Degrees renders the set as degree strings in flat order.
func (s RangeSet) Degrees() []string {
	keys := s.FlatOrder()
	degrees := make([]string, len(keys))
	for i, k := range keys {
		degrees[i] = KeyToDegree(k)
	}
	return degrees
}

type cellPos struct {
	key       string
	sphereIdx int
	cylinder  float64
	bad       bool
}

func (s RangeSet) sorted(less func(a, b cellPos) bool) []string {
	cells := make([]cellPos, 0, len(s))
	for k := range s {
		idx, cyl, ok := ParseKey(k)
		cells = append(cells, cellPos{key: k, sphereIdx: idx, cylinder: cyl, bad: !ok})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].bad != cells[j].bad {
			return cells[j].bad
		}
		if cells[i].bad {
			return cells[i].key < cells[j].key
		}
		return less(cells[i], cells[j])
	})
	keys := make([]string, len(cells))
	for i, c := range cells {
		keys[i] = c.key
	}
	return keys
}
