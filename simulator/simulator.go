package simulator

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Simulator evaluates welding set-ups on a fixed grid. It holds no per-request state and is
// safe to share between sessions.
type Simulator struct {
	grid Grid
	opts Options
	e    *executor
}

func New(grid Grid, opts Options, workers int) (*Simulator, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		grid: grid,
		opts: opts,
		e:    newExecutor(workers),
	}, nil
}

func (s *Simulator) Grid() Grid       { return s.grid }
func (s *Simulator) Options() Options { return s.opts }

// Result is everything derived from one welding set-up.
type Result struct {
	Parameters         Parameters
	HeatInput          float64 // W
	HeatInputPerLength float64 // J/mm
	Field              *Field
	Geometry           Geometry
}

// Simulate computes heat input, temperature field and pool geometry for one set-up.
func (s *Simulator) Simulate(p Parameters) (*Result, error) {
	start := time.Now()
	field, err := TemperatureField(p, s.grid, s.opts)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Parameters:         p,
		HeatInput:          HeatInput(p),
		HeatInputPerLength: HeatInputPerLength(p),
		Field:              field,
		Geometry:           PoolGeometry(field, p.Material()),
	}
	log.WithFields(log.Fields{
		"material":  p.Material().Name,
		"mode":      p.Mode(),
		"heatInput": res.HeatInput,
		"width":     res.Geometry.Width,
		"depth":     res.Geometry.Depth,
		"length":    res.Geometry.Length,
		"cost":      time.Since(start),
	}).Debug("simulated")
	return res, nil
}

// SweepPoint is the outcome of one sample of a parameter sweep.
type SweepPoint struct {
	Value              float64  `json:"value"`
	HeatInput          float64  `json:"heat_input"`
	HeatInputPerLength float64  `json:"heat_input_per_length"`
	Geometry           Geometry `json:"geometry"`
}

// Sweep re-runs the simulation with one parameter set to each of values. Every sample is
// validated before any evaluation starts; results keep the order of values.
func (s *Simulator) Sweep(ctx context.Context, base Parameters, param Param, values []float64) ([]SweepPoint, error) {
	params := make([]Parameters, len(values))
	for i, v := range values {
		p, err := base.With(param, v)
		if err != nil {
			return nil, fmt.Errorf("sweep %s sample %d: %w", param, i, err)
		}
		params[i] = p
	}

	points := make([]SweepPoint, len(values))
	cost, err := s.e.dispatch(ctx, len(params), func(i int) error {
		res, err := s.Simulate(params[i])
		if err != nil {
			return err
		}
		points[i] = SweepPoint{
			Value:              values[i],
			HeatInput:          res.HeatInput,
			HeatInputPerLength: res.HeatInputPerLength,
			Geometry:           res.Geometry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"param":   param,
		"samples": len(values),
		"cost":    cost,
	}).Debug("sweep finished")
	return points, nil
}

// SensitivityRow holds normalised sensitivity coefficients (∂out/out)/(∂in/in) of the pool
// dimensions with respect to one input.
type SensitivityRow struct {
	Param  Param   `json:"parameter"`
	Base   float64 `json:"base_value"`
	Low    float64 `json:"low_value"`
	High   float64 `json:"high_value"`
	Width  float64 `json:"width_sensitivity"`
	Depth  float64 `json:"depth_sensitivity"`
	Length float64 `json:"length_sensitivity"`
}

// Sensitivity varies each input by ±variation around base and reports central-difference
// coefficients. The arc efficiency is never raised above 1. A dimension that is zero at the
// base point gets a zero coefficient.
func (s *Simulator) Sensitivity(ctx context.Context, base Parameters, variation float64) ([]SensitivityRow, error) {
	if !(variation > 0 && variation < 1) {
		return nil, fmt.Errorf("%w: variation must be in (0, 1), got %g", ErrInvalidParameter, variation)
	}

	// slot 0 is the base point, then a (low, high) pair per parameter
	params := []Parameters{base}
	rows := make([]SensitivityRow, len(SensitivityParams))
	for i, name := range SensitivityParams {
		b := base.Value(name)
		lo, hi := b*(1-variation), b*(1+variation)
		if name == ParamArcEfficiency {
			hi = min(hi, 1)
		}
		pLo, err := base.With(name, lo)
		if err != nil {
			return nil, err
		}
		pHi, err := base.With(name, hi)
		if err != nil {
			return nil, err
		}
		params = append(params, pLo, pHi)
		rows[i] = SensitivityRow{Param: name, Base: b, Low: lo, High: hi}
	}

	geoms := make([]Geometry, len(params))
	if _, err := s.e.dispatch(ctx, len(params), func(i int) error {
		res, err := s.Simulate(params[i])
		if err != nil {
			return err
		}
		geoms[i] = res.Geometry
		return nil
	}); err != nil {
		return nil, err
	}

	ref := geoms[0]
	for i := range rows {
		lo, hi := geoms[1+2*i], geoms[2+2*i]
		r := &rows[i]
		r.Width = coefficient(lo.Width, hi.Width, ref.Width, r.Low, r.High, r.Base)
		r.Depth = coefficient(lo.Depth, hi.Depth, ref.Depth, r.Low, r.High, r.Base)
		r.Length = coefficient(lo.Length, hi.Length, ref.Length, r.Low, r.High, r.Base)
	}
	return rows, nil
}

func coefficient(outLo, outHi, outBase, inLo, inHi, inBase float64) float64 {
	if outBase == 0 || inHi == inLo {
		return 0
	}
	return (outHi - outLo) / (inHi - inLo) * (inBase / outBase)
}
