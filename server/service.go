package server

import (
	"context"

	log "github.com/sirupsen/logrus"

	"weldsim/model"
	"weldsim/simulator"
	"weldsim/visualizer"
)

// analysis is one full interaction cycle: the simulation plus the default parameter sweeps
// and the sensitivity study around it.
type analysis struct {
	result      *simulator.Result
	sweeps      map[simulator.Param][]simulator.SweepPoint
	sensitivity []simulator.SensitivityRow
}

// parameters applies the configured defaults to req and validates it.
func (s *Server) parameters(req model.SimulateRequest) (simulator.Parameters, error) {
	sim := s.cfg.Simulation
	return req.WithDefaults(sim.DefaultMode, sim.PlateThicknessMM).ToParameters(s.table)
}

func (s *Server) run(req model.SimulateRequest) (*simulator.Result, error) {
	p, err := s.parameters(req)
	if err != nil {
		return nil, err
	}
	res, err := s.sim.Simulate(p)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"material":  p.Material().Name,
		"current":   p.Current(),
		"voltage":   p.Voltage(),
		"speed":     p.TravelSpeed(),
		"heatInput": res.HeatInput,
		"fused":     res.Geometry.Fused,
		"width":     res.Geometry.Width,
		"depth":     res.Geometry.Depth,
	}).Info("recomputed")
	return res, nil
}

// defaultRange fills an empty sweep request with the configured range of its parameter.
func (s *Server) defaultRange(req *model.SweepRequest) {
	if len(req.Values) > 0 || req.Step > 0 {
		return
	}
	sw := s.cfg.Sweep
	param, err := simulator.ParseParam(req.Parameter)
	if err != nil {
		return
	}
	switch param {
	case simulator.ParamCurrent:
		req.Start, req.Stop, req.Step = sw.CurrentStart, sw.CurrentStop, sw.CurrentStep
	case simulator.ParamVoltage:
		req.Start, req.Stop, req.Step = sw.VoltageStart, sw.VoltageStop, sw.VoltageStep
	}
}

func (s *Server) sweep(ctx context.Context, req model.SweepRequest) (simulator.Param, []simulator.SweepPoint, error) {
	s.defaultRange(&req)
	param, values, err := req.Resolve(s.cfg.Sweep.MaxSamples)
	if err != nil {
		return "", nil, err
	}
	base, err := s.parameters(req.Params)
	if err != nil {
		return "", nil, err
	}
	points, err := s.sim.Sweep(ctx, base, param, values)
	if err != nil {
		return "", nil, err
	}
	return param, points, nil
}

func (s *Server) sensitivity(ctx context.Context, req model.SensitivityRequest) ([]simulator.SensitivityRow, error) {
	base, err := s.parameters(req.Params)
	if err != nil {
		return nil, err
	}
	variation := req.Variation
	if variation == 0 {
		variation = s.cfg.Sweep.SensitivityVariation
	}
	return s.sim.Sensitivity(ctx, base, variation)
}

// analyse runs the simulation with the current and voltage sweeps and the sensitivity study.
func (s *Server) analyse(ctx context.Context, req model.SimulateRequest) (*analysis, error) {
	res, err := s.run(req)
	if err != nil {
		return nil, err
	}
	a := &analysis{result: res, sweeps: map[simulator.Param][]simulator.SweepPoint{}}
	for _, name := range []simulator.Param{simulator.ParamCurrent, simulator.ParamVoltage} {
		_, points, err := s.sweep(ctx, model.SweepRequest{Params: req, Parameter: string(name)})
		if err != nil {
			return nil, err
		}
		a.sweeps[name] = points
	}
	if a.sensitivity, err = s.sensitivity(ctx, model.SensitivityRequest{Params: req}); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Server) simulateResponse(res *simulator.Result, a *analysis) model.SimulateResponse {
	if a == nil {
		a = &analysis{result: res}
	}
	return model.SimulateResponse{
		Summary:   model.NewSummary(res),
		Dashboard: visualizer.NewDashboard(res, a.sweeps, a.sensitivity),
		Surface:   encodeSurface(res.Field),
	}
}

func sweepResponse(param simulator.Param, points []simulator.SweepPoint) model.SweepResponse {
	return model.SweepResponse{
		Parameter: string(param),
		Points:    points,
		Chart:     visualizer.ParameterEffects(param, points),
	}
}

func sensitivityResponse(rows []simulator.SensitivityRow) model.SensitivityResponse {
	return model.SensitivityResponse{
		Rows:    rows,
		Heatmap: visualizer.SensitivityHeatmap(rows),
		Tornado: visualizer.Tornado(rows),
	}
}
