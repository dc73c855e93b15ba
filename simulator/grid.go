package simulator

import (
	"fmt"
	"math"
)

// Grid holds the sample coordinates relative to the moving arc, in metres.
// X runs along the travel direction (the arc moves toward +x), Y across the weld and
// Z is the depth below the top surface.
type Grid struct {
	X []float64
	Y []float64
	Z []float64
}

// GridSpec describes a regular grid by its extents, in metres.
type GridSpec struct {
	XMin  float64
	XMax  float64
	YHalf float64
	ZMax  float64
	Step  float64
}

// NewGrid samples x in [XMin, XMax], y in [-YHalf, YHalf] and z in [0, ZMax] on multiples of
// Step, so the arc position (0, 0, 0) is always an exact sample when it lies inside.
func NewGrid(spec GridSpec) (Grid, error) {
	if !(spec.Step > 0) {
		return Grid{}, fmt.Errorf("%w: step must be positive, got %g", ErrInvalidGrid, spec.Step)
	}
	return NewGridFromAxes(
		axis(spec.XMin, spec.XMax, spec.Step),
		axis(-spec.YHalf, spec.YHalf, spec.Step),
		axis(0, spec.ZMax, spec.Step),
	)
}

// NewGridFromAxes builds a grid from explicit coordinates.
func NewGridFromAxes(x, y, z []float64) (Grid, error) {
	g := Grid{X: x, Y: y, Z: z}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

func axis(lo, hi, step float64) []float64 {
	first := math.Ceil(lo/step - 1e-9)
	last := math.Floor(hi/step + 1e-9)
	if last < first {
		return nil
	}
	out := make([]float64, 0, int(last-first)+1)
	for k := first; k <= last; k++ {
		out = append(out, k*step)
	}
	return out
}

func (g Grid) Validate() error {
	for _, a := range []struct {
		name   string
		values []float64
	}{{"x", g.X}, {"y", g.Y}, {"z", g.Z}} {
		if len(a.values) == 0 {
			return fmt.Errorf("%w: %s axis is empty", ErrInvalidGrid, a.name)
		}
		for i, v := range a.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidGrid, a.name, i)
			}
			if i > 0 && v <= a.values[i-1] {
				return fmt.Errorf("%w: %s axis must be strictly increasing", ErrInvalidGrid, a.name)
			}
		}
	}
	return nil
}

// Dims returns the number of samples along x, y and z.
func (g Grid) Dims() (nx, ny, nz int) {
	return len(g.X), len(g.Y), len(g.Z)
}

// DepthExtent is the z span of the grid, m.
func (g Grid) DepthExtent() float64 {
	if len(g.Z) == 0 {
		return 0
	}
	return g.Z[len(g.Z)-1] - g.Z[0]
}

func (g Grid) Size() int {
	return len(g.X) * len(g.Y) * len(g.Z)
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// RangeSize is the number of samples Range(start, stop, step) yields. It is computed without
// allocating and may be +Inf or NaN for degenerate arguments.
func RangeSize(start, stop, step float64) float64 {
	if !(step > 0) || !(stop > start) {
		return 0
	}
	return math.Ceil((stop-start)/step - 1e-9)
}

// maxRange bounds what Range allocates; callers limit sweeps well below it.
const maxRange = 1 << 24

// Range returns start, start+step, ... up to but excluding stop. It returns nil when the
// range is empty, not finite or larger than maxRange samples.
func Range(start, stop, step float64) []float64 {
	size := RangeSize(start, stop, step)
	if !(size > 0 && size <= maxRange) {
		return nil
	}
	out := make([]float64, int(size))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func nearest(values []float64, target float64) int {
	best := 0
	for i, v := range values {
		if math.Abs(v-target) < math.Abs(values[best]-target) {
			best = i
		}
	}
	return best
}
