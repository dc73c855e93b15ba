package simulator

import (
	"math"

	"weldsim/material"
)

// Geometry is the weld pool bounded by the melting isotherm, in metres.
// A zero Geometry means no sample reached the melting temperature.
type Geometry struct {
	Width           float64 `json:"width"`
	Depth           float64 `json:"depth"`
	Length          float64 `json:"length"`
	AspectRatio     float64 `json:"aspect_ratio"` // length / width
	Volume          float64 `json:"volume"`       // m³, half ellipsoid
	Fused           bool    `json:"fused"`
	PeakTemperature float64 `json:"peak_temperature"`
}

type bounds struct {
	lo, hi float64
	set    bool
}

func (b *bounds) add(v float64) {
	if !b.set {
		b.lo, b.hi, b.set = v, v, true
		return
	}
	b.lo = min(b.lo, v)
	b.hi = max(b.hi, v)
}

func (b bounds) extent() float64 {
	if !b.set {
		return 0
	}
	return b.hi - b.lo
}

// crossing interpolates where the isotherm at level lies between a melted sample (cp, tp)
// and an unmelted neighbour (cn, tn).
func crossing(cp, tp, cn, tn, level float64) float64 {
	if tp == tn {
		return cp
	}
	return cp + (tp-level)/(tp-tn)*(cn-cp)
}

// PoolGeometry measures the melting isotherm of a field. Width (y) and length (x) are taken
// on the top surface, depth (z) over the whole field. Extents run from the outermost melted
// samples to the interpolated isotherm crossing toward their unmelted neighbours, so they
// never exceed the grid. In thin-plate mode a fused pool penetrates the full plate thickness.
func PoolGeometry(f *Field, rec material.Record) Geometry {
	level := rec.MeltingTemperature
	g := f.Grid
	nx, ny, nz := g.Dims()
	surface := f.SurfaceIndex()

	var xb, yb bounds
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			t := f.At(ix, iy, surface)
			if t < level {
				continue
			}
			xb.add(g.X[ix])
			yb.add(g.Y[iy])
			for _, d := range [2]int{-1, 1} {
				if n := ix + d; n >= 0 && n < nx {
					if tn := f.At(n, iy, surface); tn < level {
						xb.add(crossing(g.X[ix], t, g.X[n], tn, level))
					}
				}
				if n := iy + d; n >= 0 && n < ny {
					if tn := f.At(ix, n, surface); tn < level {
						yb.add(crossing(g.Y[iy], t, g.Y[n], tn, level))
					}
				}
			}
		}
	}

	depth := 0.0
	fused := xb.set
	z0 := g.Z[surface]
	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				t := f.At(ix, iy, iz)
				if t < level {
					continue
				}
				fused = true
				depth = max(depth, math.Abs(g.Z[iz]-z0))
				for _, d := range [2]int{-1, 1} {
					n := iz + d
					if n < 0 || n >= nz {
						continue
					}
					if tn := f.At(ix, iy, n); tn < level {
						depth = max(depth, math.Abs(crossing(g.Z[iz], t, g.Z[n], tn, level)-z0))
					}
				}
			}
		}
	}
	if !fused {
		return Geometry{}
	}
	if f.Mode == ThinPlate {
		depth = min(f.PlateThickness, f.Grid.DepthExtent())
	}

	geom := Geometry{
		Width:           yb.extent(),
		Depth:           depth,
		Length:          xb.extent(),
		Fused:           true,
		PeakTemperature: f.Peak,
	}
	if geom.Width > 0 {
		geom.AspectRatio = geom.Length / geom.Width
	}
	geom.Volume = math.Pi / 6 * geom.Width * geom.Length * geom.Depth
	return geom
}
