package visualizer

import "weldsim/simulator"

// Dashboard is the full chart set shown for one set of welding parameters.
type Dashboard struct {
	CrossSection Chart   `json:"cross_section"`
	Pool3D       Chart   `json:"pool_3d"`
	Contour      Chart   `json:"contour"`
	Profile      Chart   `json:"profile"`
	Sections     []Chart `json:"sections"`
	Effects      []Chart `json:"effects,omitempty"`
	Sensitivity  *Chart  `json:"sensitivity,omitempty"`
	Tornado      *Chart  `json:"tornado,omitempty"`
}

// NewDashboard renders a result together with any sweeps and sensitivity rows computed for it.
// Sweeps are charted in the fixed parameter order.
func NewDashboard(res *simulator.Result, sweeps map[simulator.Param][]simulator.SweepPoint, sens []simulator.SensitivityRow) Dashboard {
	rec := res.Parameters.Material()
	d := Dashboard{
		CrossSection: CrossSection(res.Geometry),
		Pool3D:       Pool3D(res.Geometry),
		Contour:      TemperatureContour(res.Field, rec),
		Profile:      CenterlineProfile(res.Field, rec),
		Sections:     Sections(res.Field),
	}
	for _, p := range simulator.SensitivityParams {
		if points, ok := sweeps[p]; ok {
			d.Effects = append(d.Effects, ParameterEffects(p, points))
		}
	}
	if len(sens) > 0 {
		heat, tornado := SensitivityHeatmap(sens), Tornado(sens)
		d.Sensitivity, d.Tornado = &heat, &tornado
	}
	return d
}
