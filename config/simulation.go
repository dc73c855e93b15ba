package config

import "weldsim/simulator"

const mmToM = 1e-3

func (g GridConfig) Spec() simulator.GridSpec {
	return simulator.GridSpec{
		XMin:  g.XMinMM * mmToM,
		XMax:  g.XMaxMM * mmToM,
		YHalf: g.YHalfMM * mmToM,
		ZMax:  g.ZMaxMM * mmToM,
		Step:  g.StepMM * mmToM,
	}
}

func (s SimulationConfig) Options() simulator.Options {
	return simulator.Options{
		Ambient:        s.AmbientTemperature,
		SourceRadius:   s.SourceRadiusMM * mmToM,
		MaxTemperature: s.MaxTemperature,
	}
}

// NewSimulator builds the shared simulator for the configured grid and options.
func (c *Config) NewSimulator() (*simulator.Simulator, error) {
	grid, err := simulator.NewGrid(c.Grid.Spec())
	if err != nil {
		return nil, err
	}
	return simulator.New(grid, c.Simulation.Options(), c.Simulation.Workers)
}
