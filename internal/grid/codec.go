// backend-go/internal/grid/codec.go
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// A cell key addresses one grid cell as "{sphereIndex}_{cylinderValue}",
// e.g. "68_-0.50". A degree is the human-readable power, both components
// signed and formatted to two decimals, e.g. "-3.00/-0.50".

// Key builds the cell key for a sphere index and cylinder axis index.
func Key(sphereIdx, cylinderIdx int) string {
	return fmt.Sprintf("%d_%.2f", sphereIdx, CylinderValue(cylinderIdx))
}

// ParseKey splits a cell key into its sphere index and cylinder value.
// It does not range-check the sphere index; ValidKey does.
func ParseKey(key string) (sphereIdx int, cylinder float64, ok bool) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	cyl, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return idx, cyl, true
}

// ValidKey reports whether key addresses a cell inside the fixed grid.
func ValidKey(key string) bool {
	idx, cyl, ok := ParseKey(key)
	if !ok {
		return false
	}
	return idx >= 0 && idx < SphereLen && CylinderIndex(cyl) >= 0
}

// Coords resolves a cell key to its (sphereIdx, cylinderIdx) axis
// coordinates. Fails for keys outside the grid.
func Coords(key string) (sphereIdx, cylinderIdx int, ok bool) {
	idx, cyl, ok := ParseKey(key)
	if !ok || idx < 0 || idx >= SphereLen {
		return 0, 0, false
	}
	ci := CylinderIndex(cyl)
	if ci < 0 {
		return 0, 0, false
	}
	return idx, ci, true
}

// KeyToDegree renders a cell key as a degree string. An out-of-range or
// unparseable sphere index falls back to sphere 0.00 rather than failing;
// callers rendering stale data rely on that.
func KeyToDegree(key string) string {
	idx, cyl, ok := ParseKey(key)
	if !ok {
		return formatDegree(0, 0)
	}
	return formatDegree(SphereValue(idx), cyl)
}

// DegreeToKey resolves a degree string back to its cell key. Returns
// ok=false for malformed strings and for powers that match no axis value;
// callers fall back to a synthetic key or skip the row.
func DegreeToKey(degree string) (string, bool) {
	parts := strings.Split(degree, "/")
	if len(parts) != 2 {
		return "", false
	}
	sphere, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", false
	}
	cyl, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", false
	}
	si := SphereIndex(sphere)
	ci := CylinderIndex(cyl)
	if si < 0 || ci < 0 {
		return "", false
	}
	return Key(si, ci), true
}

// DegreeParts parses a degree into its numeric components, tolerating
// malformed input: an unparseable component defaults to 0. Used for
// display ordering of purchase rows, where legacy degrees must still
// sort somewhere stable.
func DegreeParts(degree string) (sphere, cylinder float64) {
	parts := strings.Split(degree, "/")
	if len(parts) > 0 {
		if v, err := strconv.ParseFloat(parts[0], 64); err == nil {
			sphere = v
		}
	}
	if len(parts) > 1 {
		if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
			cylinder = v
		}
	}
	return sphere, cylinder
}

func formatDegree(sphere, cylinder float64) string {
	// %+.2f would print "-0.00" for a negative zero; normalize first so
	// +0.00 is the only rendering of zero.
	if sphere == 0 {
		sphere = 0
	}
	if cylinder == 0 {
		cylinder = 0
	}
	return fmt.Sprintf("%+.2f/%+.2f", sphere, cylinder)
}
