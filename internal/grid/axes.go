// backend-go/internal/grid/axes.go
package grid

// The power grid is fixed process-wide: every lens product selects its
// manufacturable range out of the same sphere x cylinder matrix.
//
// Sphere runs -20.00 .. +20.00 in 0.25 steps (161 columns, addressed by
// index). Cylinder runs 0.00 down to -6.00 in -0.25 steps (25 rows, kept
// in descending order and addressed by value).

const (
	SphereMin  = -20.0
	SphereStep = 0.25
	SphereLen  = 161

	CylinderStep = -0.25
	CylinderLen  = 25

	// Tolerance for matching a parsed value back onto an axis.
	axisTolerance = 0.01
)

var (
	sphereAxis   [SphereLen]float64
	cylinderAxis [CylinderLen]float64
)

func init() {
	for i := 0; i < SphereLen; i++ {
		sphereAxis[i] = SphereMin + SphereStep*float64(i)
	}
	for i := 0; i < CylinderLen; i++ {
		cylinderAxis[i] = CylinderStep * float64(i)
	}
}

// SphereValue returns the sphere value at index i, or 0 when the index is
// outside the axis. The zero fallback is load-bearing: legacy cell keys
// with out-of-range indexes still render as a 0.00 sphere.
func SphereValue(i int) float64 {
	if i < 0 || i >= SphereLen {
		return 0
	}
	return sphereAxis[i]
}

// CylinderValue returns the cylinder value at axis index i, or 0 when the
// index is outside the axis.
func CylinderValue(i int) float64 {
	if i < 0 || i >= CylinderLen {
		return 0
	}
	return cylinderAxis[i]
}

// SphereIndex finds the axis index for a sphere value, matching within
// tolerance. Returns -1 when no axis value matches.
func SphereIndex(v float64) int {
	return axisIndex(sphereAxis[:], v)
}

// CylinderIndex finds the axis index for a cylinder value, matching within
// tolerance. Returns -1 when no axis value matches.
func CylinderIndex(v float64) int {
	return axisIndex(cylinderAxis[:], v)
}

func axisIndex(axis []float64, v float64) int {
	for i, av := range axis {
		d := v - av
		if d < 0 {
			d = -d
		}
		if d < axisTolerance {
			return i
		}
	}
	return -1
}
