package simulator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weldsim/material"
)

func steel(t testing.TB) material.Record {
	t.Helper()
	rec, err := material.Lookup("Steel")
	require.NoError(t, err)
	return rec
}

// steelInput is 150 A, 20 V, 5 mm/s GTAW at 75 % efficiency: Q = 2250 W.
func steelInput(t testing.TB) ParameterInput {
	return ParameterInput{
		Current:       150,
		Voltage:       20,
		TravelSpeed:   0.005,
		ArcEfficiency: 0.75,
		Process:       GTAW,
		Material:      steel(t),
	}
}

func steelParams(t testing.TB) Parameters {
	p, err := NewParameters(steelInput(t))
	require.NoError(t, err)
	return p
}

func defaultGrid(t testing.TB) Grid {
	g, err := NewGrid(GridSpec{XMin: -0.04, XMax: 0.01, YHalf: 0.015, ZMax: 0.01, Step: 0.0005})
	require.NoError(t, err)
	return g
}

func newSimulator(t testing.TB) *Simulator {
	s, err := New(defaultGrid(t), DefaultOptions(), 4)
	require.NoError(t, err)
	return s
}

func TestHeatInput(t *testing.T) {
	p := steelParams(t)
	assert.InDelta(t, 2250.0, HeatInput(p), 1e-9)
	assert.InDelta(t, 450.0, HeatInputPerLength(p), 1e-9)

	doubled, err := p.With(ParamCurrent, 300)
	require.NoError(t, err)
	assert.InDelta(t, 2*HeatInput(p), HeatInput(doubled), 1e-9)

	in := steelInput(t)
	in.Voltage = 40
	in.ArcEfficiency = 0.375
	other, err := NewParameters(in)
	require.NoError(t, err)
	assert.InDelta(t, HeatInput(p), HeatInput(other), 1e-9)

	for _, eff := range []float64{0.25, 0.5, 1} {
		scaled, err := p.With(ParamArcEfficiency, eff)
		require.NoError(t, err)
		assert.InDelta(t, eff*150*20, HeatInput(scaled), 1e-9, "efficiency %g", eff)
		assert.InDelta(t, eff/0.75*HeatInput(p), HeatInput(scaled), 1e-9, "efficiency %g", eff)
		assert.InDelta(t, HeatInput(scaled)/5, HeatInputPerLength(scaled), 1e-9, "efficiency %g", eff)
	}
}

func TestNewParametersRejects(t *testing.T) {
	cases := map[string]func(in *ParameterInput){
		"zero efficiency":      func(in *ParameterInput) { in.ArcEfficiency = 0 },
		"efficiency above one": func(in *ParameterInput) { in.ArcEfficiency = 1.2 },
		"negative current":     func(in *ParameterInput) { in.Current = -10 },
		"zero voltage":         func(in *ParameterInput) { in.Voltage = 0 },
		"zero travel speed":    func(in *ParameterInput) { in.TravelSpeed = 0 },
		"unknown process":      func(in *ParameterInput) { in.Process = "SMAW" },
		"empty material":       func(in *ParameterInput) { in.Material = material.Record{Name: "void"} },
		"thin plate no gauge":  func(in *ParameterInput) { in.Mode = ThinPlate },
		"infinite current":     func(in *ParameterInput) { in.Current = math.Inf(1) },
		"NaN voltage":          func(in *ParameterInput) { in.Voltage = math.NaN() },
		"infinite speed":       func(in *ParameterInput) { in.TravelSpeed = math.Inf(1) },
		"heat input overflows": func(in *ParameterInput) { in.Current, in.Voltage = 1e200, 1e200 },
		"unknown mode":         func(in *ParameterInput) { in.Mode = "line" },
		"infinite thickness":   func(in *ParameterInput) { in.Mode, in.PlateThickness = ThinPlate, math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := steelInput(t)
			mutate(&in)
			_, err := NewParameters(in)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestParameterErrorNamesField(t *testing.T) {
	in := steelInput(t)
	in.ArcEfficiency = 0
	_, err := NewParameters(in)

	var perr *ParameterError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "arc_efficiency", perr.Field)
	assert.Equal(t, 0.0, perr.Value)
}

func TestEfficiencyOfOneIsAccepted(t *testing.T) {
	in := steelInput(t)
	in.ArcEfficiency = 1
	_, err := NewParameters(in)
	assert.NoError(t, err)
}

func TestParse(t *testing.T) {
	proc, err := ParseProcess(" gmaw ")
	require.NoError(t, err)
	assert.Equal(t, GMAW, proc)
	_, err = ParseProcess("laser")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, PointSource, mode)
	mode, err = ParseMode("Thin-Plate")
	require.NoError(t, err)
	assert.Equal(t, ThinPlate, mode)

	param, err := ParseParam("travel_speed")
	require.NoError(t, err)
	assert.Equal(t, ParamTravelSpeed, param)
	_, err = ParseParam("wire_feed")
	assert.ErrorIs(t, err, ErrInvalidParameter)

	rec := steel(t)
	assert.Equal(t, rec.EfficiencyGMAW, GMAW.DefaultEfficiency(rec))
	assert.Equal(t, rec.EfficiencyGTAW, GTAW.DefaultEfficiency(rec))
}

func TestGrid(t *testing.T) {
	g := defaultGrid(t)
	nx, ny, nz := g.Dims()
	assert.Equal(t, 101, nx)
	assert.Equal(t, 61, ny)
	assert.Equal(t, 21, nz)
	assert.Equal(t, nx*ny*nz, g.Size())
	assert.Equal(t, 0.0, g.X[nearest(g.X, 0)])
	assert.Equal(t, 0.0, g.Y[30])

	_, err := NewGrid(GridSpec{XMin: -1, XMax: 1, YHalf: 1, ZMax: 1})
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = NewGridFromAxes([]float64{0, 1}, []float64{1, 0}, []float64{0})
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = NewGridFromAxes([]float64{0}, nil, []float64{0})
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestLinspaceAndRange(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
	assert.Nil(t, Linspace(0, 1, 0))

	assert.Equal(t, []float64{100, 125, 150}, Range(100, 175, 25))
	assert.Len(t, Range(100, 351, 25), 11)
	assert.Nil(t, Range(1, 0, 1))

	assert.Equal(t, 11.0, RangeSize(100, 351, 25))
	assert.Greater(t, RangeSize(1, 1e18, 1), float64(maxRange))
	assert.Zero(t, RangeSize(0, 1, math.NaN()))
	assert.Nil(t, Range(1, 1e18, 1))
	assert.Nil(t, Range(0, math.Inf(1), 1))
}

func TestBesselK0(t *testing.T) {
	assert.InEpsilon(t, 2.4270690247, BesselK0(0.1), 1e-6)
	assert.InEpsilon(t, 0.4210244382, BesselK0(1), 1e-6)
	assert.InEpsilon(t, 0.1138938727, BesselK0(2), 1e-6)
	assert.InEpsilon(t, 0.0036910983, BesselK0(5), 1e-6)
	assert.InEpsilon(t, BesselK0(5)*1.4841315910257660e2, BesselK0Scaled(5), 1e-9)
	assert.InEpsilon(t, BesselK0(1)*2.718281828459045, BesselK0Scaled(1), 1e-9)
	assert.True(t, math.IsNaN(BesselK0(-1)))
	assert.True(t, math.IsInf(BesselK0(0), 1))
}

func TestFieldMeltsNearSource(t *testing.T) {
	p := steelParams(t)
	g := defaultGrid(t)
	f, err := TemperatureField(p, g, DefaultOptions())
	require.NoError(t, err)

	ix := nearest(g.X, 0)
	assert.Greater(t, f.At(ix, f.CenterlineIndex(), f.SurfaceIndex()), p.Material().MeltingTemperature)
	assert.Equal(t, f.Peak, f.At(ix, f.CenterlineIndex(), f.SurfaceIndex()))
	assert.GreaterOrEqual(t, f.Min, DefaultOptions().Ambient)
}

func TestFieldFarBehindIsBelowMelting(t *testing.T) {
	p := steelParams(t)
	g, err := NewGridFromAxes([]float64{-0.05}, []float64{0}, []float64{0})
	require.NoError(t, err)
	f, err := TemperatureField(p, g, DefaultOptions())
	require.NoError(t, err)

	assert.Less(t, f.At(0, 0, 0), p.Material().MeltingTemperature)
	assert.InDelta(t, 441.2, f.At(0, 0, 0), 0.5)
}

func TestFieldDecaysAlongRays(t *testing.T) {
	thin := steelInput(t)
	thin.Mode = ThinPlate
	thin.PlateThickness = 0.003

	for name, in := range map[string]ParameterInput{"point": steelInput(t), "thin plate": thin} {
		t.Run(name, func(t *testing.T) {
			p, err := NewParameters(in)
			require.NoError(t, err)
			g := defaultGrid(t)
			f, err := TemperatureField(p, g, DefaultOptions())
			require.NoError(t, err)

			ox, oy, oz := nearest(g.X, 0), f.CenterlineIndex(), f.SurfaceIndex()
			nx, ny, _ := g.Dims()
			for ix := ox + 1; ix < nx; ix++ {
				assert.Less(t, f.At(ix, oy, oz), f.At(ix-1, oy, oz), "ahead of the arc at x=%g", g.X[ix])
			}
			for ix := ox - 1; ix >= 0; ix-- {
				assert.Less(t, f.At(ix, oy, oz), f.At(ix+1, oy, oz), "behind the arc at x=%g", g.X[ix])
			}
			for iy := oy + 1; iy < ny; iy++ {
				assert.Less(t, f.At(ox, iy, oz), f.At(ox, iy-1, oz), "across the weld at y=%g", g.Y[iy])
			}
		})
	}
}

func TestFieldCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTemperature = 3500
	f, err := TemperatureField(steelParams(t), defaultGrid(t), opts)
	require.NoError(t, err)
	assert.Equal(t, 3500.0, f.Peak)
}

func TestFieldAtSourceWithoutRadiusIsSingular(t *testing.T) {
	opts := DefaultOptions()
	opts.SourceRadius = 0
	_, err := TemperatureField(steelParams(t), defaultGrid(t), opts)
	assert.ErrorIs(t, err, ErrSingularEvaluation)

	off, err := NewGridFromAxes([]float64{-0.001, 0.001}, []float64{0.0005}, []float64{0})
	require.NoError(t, err)
	_, err = TemperatureField(steelParams(t), off, opts)
	assert.NoError(t, err)
}

func TestPoolGeometry(t *testing.T) {
	res, err := newSimulator(t).Simulate(steelParams(t))
	require.NoError(t, err)
	geom := res.Geometry

	require.True(t, geom.Fused)
	assert.InDelta(t, 5.96e-3, geom.Width, 0.1e-3)
	assert.InDelta(t, 6.89e-3, geom.Length, 0.1e-3)
	assert.InDelta(t, geom.Width/2, geom.Depth, 0.05e-3)
	assert.Greater(t, geom.Length, geom.Width)
	assert.InDelta(t, geom.Length/geom.Width, geom.AspectRatio, 1e-12)
	assert.Greater(t, geom.Volume, 0.0)
	assert.Equal(t, res.Field.Peak, geom.PeakTemperature)
}

func TestPoolGeometryStaysInsideGrid(t *testing.T) {
	in := steelInput(t)
	in.Current = 600
	in.Voltage = 40
	in.TravelSpeed = 0.001
	p, err := NewParameters(in)
	require.NoError(t, err)

	res, err := newSimulator(t).Simulate(p)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Geometry.Width, 0.030+1e-12)
	assert.LessOrEqual(t, res.Geometry.Length, 0.050+1e-12)
	assert.LessOrEqual(t, res.Geometry.Depth, 0.010+1e-12)

	in.Mode, in.PlateThickness = ThinPlate, 0.010
	p, err = NewParameters(in)
	require.NoError(t, err)
	res, err = newSimulator(t).Simulate(p)
	require.NoError(t, err)
	require.True(t, res.Geometry.Fused)
	assert.LessOrEqual(t, res.Geometry.Depth, 0.010+1e-12)
}

func TestThinPlateThickerThanGridIsRejected(t *testing.T) {
	in := steelInput(t)
	in.Mode = ThinPlate
	in.PlateThickness = 0.012
	p, err := NewParameters(in)
	require.NoError(t, err)

	_, err = newSimulator(t).Simulate(p)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	var perr *ParameterError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "plate_thickness", perr.Field)

	_, err = newSimulator(t).Sweep(context.Background(), p, ParamCurrent, []float64{100, 200})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestThinPlateDepthIsClampedToGrid(t *testing.T) {
	in := steelInput(t)
	in.Mode = ThinPlate
	in.PlateThickness = 0.005
	p, err := NewParameters(in)
	require.NoError(t, err)

	g := defaultGrid(t)
	shallow, err := NewGridFromAxes(g.X, g.Y, []float64{0, 0.0025, 0.005})
	require.NoError(t, err)
	f, err := TemperatureField(p, shallow, DefaultOptions())
	require.NoError(t, err)

	f.PlateThickness = 0.012
	geom := PoolGeometry(f, p.Material())
	require.True(t, geom.Fused)
	assert.Equal(t, 0.005, geom.Depth)
}

func TestNoFusionIsZeroGeometry(t *testing.T) {
	in := steelInput(t)
	in.Current = 1
	in.Voltage = 1
	in.ArcEfficiency = 0.1
	in.TravelSpeed = 0.01
	p, err := NewParameters(in)
	require.NoError(t, err)

	res, err := newSimulator(t).Simulate(p)
	require.NoError(t, err)
	assert.Equal(t, Geometry{}, res.Geometry)
}

func TestThinPlateDepthIsThickness(t *testing.T) {
	in := steelInput(t)
	in.Mode = ThinPlate
	in.PlateThickness = 0.003
	p, err := NewParameters(in)
	require.NoError(t, err)

	res, err := newSimulator(t).Simulate(p)
	require.NoError(t, err)
	require.True(t, res.Geometry.Fused)
	assert.Equal(t, 0.003, res.Geometry.Depth)
}

func TestSweepKeepsOrder(t *testing.T) {
	s := newSimulator(t)
	values := []float64{250, 100, 200, 150}
	points, err := s.Sweep(context.Background(), steelParams(t), ParamCurrent, values)
	require.NoError(t, err)
	require.Len(t, points, len(values))

	byValue := map[float64]float64{}
	for i, pt := range points {
		assert.Equal(t, values[i], pt.Value)
		assert.InDelta(t, 0.75*values[i]*20, pt.HeatInput, 1e-9)
		byValue[pt.Value] = pt.Geometry.Width
	}
	assert.Less(t, byValue[100], byValue[150])
	assert.Less(t, byValue[150], byValue[200])
	assert.Less(t, byValue[200], byValue[250])
}

func TestSweepValidatesEverySample(t *testing.T) {
	_, err := newSimulator(t).Sweep(context.Background(), steelParams(t), ParamArcEfficiency, []float64{0.5, 1.5})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSimulator(t).Sweep(ctx, steelParams(t), ParamVoltage, []float64{15, 20, 25})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSensitivity(t *testing.T) {
	rows, err := newSimulator(t).Sensitivity(context.Background(), steelParams(t), 0.1)
	require.NoError(t, err)
	require.Len(t, rows, len(SensitivityParams))

	byParam := map[Param]SensitivityRow{}
	for i, r := range rows {
		assert.Equal(t, SensitivityParams[i], r.Param)
		byParam[r.Param] = r
	}
	assert.Greater(t, byParam[ParamCurrent].Width, 0.0)
	assert.Greater(t, byParam[ParamCurrent].Depth, 0.0)
	assert.Less(t, byParam[ParamTravelSpeed].Width, 0.0)
	assert.InDelta(t, 0.825, byParam[ParamArcEfficiency].High, 1e-12)
}

func TestSensitivityCapsEfficiency(t *testing.T) {
	in := steelInput(t)
	in.ArcEfficiency = 0.95
	p, err := NewParameters(in)
	require.NoError(t, err)

	rows, err := newSimulator(t).Sensitivity(context.Background(), p, 0.1)
	require.NoError(t, err)
	eff := rows[len(rows)-1]
	assert.Equal(t, ParamArcEfficiency, eff.Param)
	assert.Equal(t, 1.0, eff.High)
	assert.Greater(t, eff.Width, 0.0)
}

func TestSensitivityWithoutFusionIsZero(t *testing.T) {
	in := steelInput(t)
	in.Current = 1
	in.Voltage = 1
	p, err := NewParameters(in)
	require.NoError(t, err)

	rows, err := newSimulator(t).Sensitivity(context.Background(), p, 0.1)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Zero(t, r.Width)
		assert.Zero(t, r.Depth)
		assert.Zero(t, r.Length)
	}
}

func TestSensitivityRejectsVariation(t *testing.T) {
	_, err := newSimulator(t).Sensitivity(context.Background(), steelParams(t), 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func BenchmarkTemperatureField(b *testing.B) {
	p := steelParams(b)
	g := defaultGrid(b)
	opts := DefaultOptions()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := TemperatureField(p, g, opts); err != nil {
			b.Fatal(err)
		}
	}
}
