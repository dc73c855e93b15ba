package simulator

import (
	"fmt"
	"math"
)

// Options tune how a temperature field is evaluated.
type Options struct {
	Ambient float64 // K, plate temperature far from the arc
	// SourceRadius is the smallest distance from the arc used in the evaluation, m. Samples
	// closer than this are evaluated at this radius. Zero disables the clamp, and a sample
	// exactly on the arc then fails with ErrSingularEvaluation.
	SourceRadius float64
	// MaxTemperature caps the stored values for display, K. Zero keeps the raw solution.
	MaxTemperature float64
}

func DefaultOptions() Options {
	return Options{
		Ambient:      298,
		SourceRadius: 1e-4,
	}
}

// Field is a sampled temperature field around the arc.
type Field struct {
	Grid           Grid
	Mode           Mode
	Ambient        float64
	PlateThickness float64
	// Values are indexed [iz][iy][ix], flattened; use At.
	Values []float64
	Peak   float64
	Min    float64
}

func (f *Field) index(ix, iy, iz int) int {
	return (iz*len(f.Grid.Y)+iy)*len(f.Grid.X) + ix
}

// At returns the temperature at sample (ix, iy, iz), K.
func (f *Field) At(ix, iy, iz int) float64 {
	return f.Values[f.index(ix, iy, iz)]
}

// SurfaceIndex is the z index closest to the top surface.
func (f *Field) SurfaceIndex() int {
	return nearest(f.Grid.Z, 0)
}

// CenterlineIndex is the y index closest to the weld centreline.
func (f *Field) CenterlineIndex() int {
	return nearest(f.Grid.Y, 0)
}

// TemperatureField evaluates Rosenthal's moving heat source solution on every grid sample.
//
// Point source (semi-infinite plate):
//
//	T - T0 = Q/(2πk) · exp(-v(x+R)/(2α)) / R,  R = sqrt(x²+y²+z²)
//
// Thin plate of thickness d, uniform through the thickness:
//
//	T - T0 = Q/(2πkd) · exp(-vx/(2α)) · K0(vr/(2α)),  r = sqrt(x²+y²)
func TemperatureField(p Parameters, g Grid, opts Options) (*Field, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	// 1e-9 absorbs the rounding of the z axis values.
	if d := p.PlateThickness(); p.Mode() == ThinPlate && d > g.DepthExtent()+1e-9 {
		return nil, &ParameterError{
			Field:  "plate_thickness",
			Value:  d,
			Reason: fmt.Sprintf("exceeds the grid depth of %g m", g.DepthExtent()),
		}
	}
	rec := p.Material()
	k := rec.ThermalConductivity
	c := p.TravelSpeed() / (2 * rec.Diffusivity())
	q := HeatInput(p)

	f := &Field{
		Grid:           g,
		Mode:           p.Mode(),
		Ambient:        opts.Ambient,
		PlateThickness: p.PlateThickness(),
		Values:         make([]float64, g.Size()),
		Peak:           math.Inf(-1),
		Min:            math.Inf(1),
	}

	var rise func(x, y, z float64) (float64, error)
	switch p.Mode() {
	case ThinPlate:
		scale := q / (2 * math.Pi * k * p.PlateThickness())
		rise = func(x, y, _ float64) (float64, error) {
			r, err := clampRadius(math.Hypot(x, y), opts.SourceRadius, x, y, 0)
			if err != nil {
				return 0, err
			}
			// exp(-c·x)·K0(c·r) rewritten with the scaled K0 so neither factor overflows.
			return scale * math.Exp(-c*(x+r)) * BesselK0Scaled(c*r), nil
		}
	default:
		scale := q / (2 * math.Pi * k)
		rise = func(x, y, z float64) (float64, error) {
			r, err := clampRadius(math.Sqrt(x*x+y*y+z*z), opts.SourceRadius, x, y, z)
			if err != nil {
				return 0, err
			}
			return scale * math.Exp(-c*(x+r)) / r, nil
		}
	}

	i := 0
	for _, z := range g.Z {
		for _, y := range g.Y {
			for _, x := range g.X {
				dt, err := rise(x, y, z)
				if err != nil {
					return nil, err
				}
				t := opts.Ambient + dt
				if opts.MaxTemperature > 0 && t > opts.MaxTemperature {
					t = opts.MaxTemperature
				}
				f.Values[i] = t
				f.Peak = max(f.Peak, t)
				f.Min = min(f.Min, t)
				i++
			}
		}
	}
	return f, nil
}

func clampRadius(r, floor float64, x, y, z float64) (float64, error) {
	if r >= floor && r > 0 {
		return r, nil
	}
	if floor > 0 {
		return floor, nil
	}
	return 0, fmt.Errorf("%w: sample (%g, %g, %g) m", ErrSingularEvaluation, x, y, z)
}

// Mean is the average sampled temperature, K.
func (f *Field) Mean() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range f.Values {
		sum += v
	}
	return sum / float64(len(f.Values))
}
