package model

import (
	"fmt"
	"strings"

	"weldsim/material"
	"weldsim/simulator"
	"weldsim/visualizer"
)

// Msg is the envelope of every websocket message. Content carries the JSON payload as text.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SimulateRequest is one welding set-up in UI units.
type SimulateRequest struct {
	Material       string   `json:"material"`
	Current        float64  `json:"current"`                   // A
	Voltage        float64  `json:"voltage"`                   // V
	TravelSpeed    float64  `json:"travel_speed"`              // mm/s
	ArcEfficiency  *float64 `json:"arc_efficiency,omitempty"`  // omitted: tabulated value for process and material
	Process        string   `json:"process,omitempty"`         // GTAW (default) or GMAW
	Mode           string   `json:"mode,omitempty"`            // point (default) or thin-plate
	PlateThickness float64  `json:"plate_thickness,omitempty"` // mm
}

// ToParameters resolves the material and converts the request to validated SI parameters.
func (r SimulateRequest) ToParameters(table *material.Table) (simulator.Parameters, error) {
	rec, err := table.Lookup(r.Material)
	if err != nil {
		return simulator.Parameters{}, err
	}
	process := simulator.GTAW
	if strings.TrimSpace(r.Process) != "" {
		if process, err = simulator.ParseProcess(r.Process); err != nil {
			return simulator.Parameters{}, err
		}
	}
	mode, err := simulator.ParseMode(r.Mode)
	if err != nil {
		return simulator.Parameters{}, err
	}
	eff := process.DefaultEfficiency(rec)
	if r.ArcEfficiency != nil {
		eff = *r.ArcEfficiency
	}
	return simulator.NewParameters(simulator.ParameterInput{
		Current:        r.Current,
		Voltage:        r.Voltage,
		TravelSpeed:    r.TravelSpeed / MillimetresPerMetre,
		ArcEfficiency:  eff,
		Process:        process,
		Material:       rec,
		Mode:           mode,
		PlateThickness: r.PlateThickness / MillimetresPerMetre,
	})
}

// WithDefaults fills an empty mode, and the thickness of a thin-plate set-up without one.
func (r SimulateRequest) WithDefaults(mode string, plateThicknessMM float64) SimulateRequest {
	if strings.TrimSpace(r.Mode) == "" {
		r.Mode = mode
	}
	if m, err := simulator.ParseMode(r.Mode); err == nil && m == simulator.ThinPlate && r.PlateThickness == 0 {
		r.PlateThickness = plateThicknessMM
	}
	return r
}

// SweepRequest varies one parameter of Params. Values are in UI units; when empty the
// half-open range [Start, Stop) with Step is used.
type SweepRequest struct {
	Params    SimulateRequest `json:"params"`
	Parameter string          `json:"parameter"`
	Values    []float64       `json:"values,omitempty"`
	Start     float64         `json:"start,omitempty"`
	Stop      float64         `json:"stop,omitempty"`
	Step      float64         `json:"step,omitempty"`
}

// Resolve returns the swept parameter and its samples in SI units. A sweep of more than
// maxSamples samples is rejected before anything is allocated.
func (r SweepRequest) Resolve(maxSamples int) (simulator.Param, []float64, error) {
	param, err := simulator.ParseParam(r.Parameter)
	if err != nil {
		return "", nil, err
	}
	values := r.Values
	if len(values) == 0 {
		size := simulator.RangeSize(r.Start, r.Stop, r.Step)
		if !(size <= float64(maxSamples)) {
			return "", nil, fmt.Errorf("%w: sweep of %s from %g to %g step %g exceeds %d samples",
				simulator.ErrInvalidParameter, param, r.Start, r.Stop, r.Step, maxSamples)
		}
		values = simulator.Range(r.Start, r.Stop, r.Step)
	} else if len(values) > maxSamples {
		return "", nil, fmt.Errorf("%w: sweep of %s has %d values, more than %d samples",
			simulator.ErrInvalidParameter, param, len(values), maxSamples)
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: sweep of %s has no samples", simulator.ErrInvalidParameter, param)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v
		if param == simulator.ParamTravelSpeed {
			out[i] = v / MillimetresPerMetre
		}
	}
	return param, out, nil
}

type SensitivityRequest struct {
	Params    SimulateRequest `json:"params"`
	Variation float64         `json:"variation,omitempty"` // fraction, server default when zero
}

// ExportRequest selects what goes into a downloadable report.
type ExportRequest struct {
	Params      SimulateRequest `json:"params"`
	Sweeps      []SweepRequest  `json:"sweeps,omitempty"`
	Sensitivity bool            `json:"sensitivity,omitempty"`
}

// Summary is the headline result of one simulation in UI units.
type Summary struct {
	Material           string  `json:"material"`
	Process            string  `json:"process"`
	Mode               string  `json:"mode"`
	HeatInput          float64 `json:"heat_input"`            // W
	HeatInputPerLength float64 `json:"heat_input_per_length"` // J/mm
	Fused              bool    `json:"fused"`
	Width              float64 `json:"width"`  // mm
	Depth              float64 `json:"depth"`  // mm
	Length             float64 `json:"length"` // mm
	AspectRatio        float64 `json:"aspect_ratio"`
	DilutionRatio      float64 `json:"dilution_ratio"`
	Volume             float64 `json:"volume"` // mm³
	PeakTemperature    float64 `json:"peak_temperature"`
	MeanTemperature    float64 `json:"mean_temperature"`
}

func NewSummary(res *simulator.Result) Summary {
	p, g := res.Parameters, res.Geometry
	depth := g.Depth * MillimetresPerMetre
	s := Summary{
		Material:           p.Material().Name,
		Process:            string(p.Process()),
		Mode:               string(p.Mode()),
		HeatInput:          res.HeatInput,
		HeatInputPerLength: res.HeatInputPerLength,
		Fused:              g.Fused,
		Width:              g.Width * MillimetresPerMetre,
		Depth:              depth,
		Length:             g.Length * MillimetresPerMetre,
		AspectRatio:        g.AspectRatio,
		Volume:             g.Volume * MillimetresPerMetre * MillimetresPerMetre * MillimetresPerMetre,
		PeakTemperature:    g.PeakTemperature,
	}
	if res.Field != nil {
		s.MeanTemperature = res.Field.Mean()
		s.PeakTemperature = res.Field.Peak
	}
	if depth > 0 {
		s.DilutionRatio = depth / (depth + CapHeight)
	}
	return s
}

// EncodedGrid is a temperature plane quantized to Step kelvin and run-length encoded
// row-major: level Levels[i] repeats Counts[i] times, value = Min + level·Step.
type EncodedGrid struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	X      []float64 `json:"x"` // mm
	Y      []float64 `json:"y"` // mm
	Min    float64   `json:"min"`
	Step   float64   `json:"step"`
	Levels []int     `json:"levels"`
	Counts []int     `json:"counts"`
}

type SimulateResponse struct {
	SessionID string               `json:"session_id,omitempty"`
	Summary   Summary              `json:"summary"`
	Dashboard visualizer.Dashboard `json:"dashboard"`
	Surface   *EncodedGrid         `json:"surface,omitempty"`
}

type SweepResponse struct {
	Parameter string                 `json:"parameter"`
	Points    []simulator.SweepPoint `json:"points"`
	Chart     visualizer.Chart       `json:"chart"`
}

type SensitivityResponse struct {
	Rows    []simulator.SensitivityRow `json:"rows"`
	Heatmap visualizer.Chart           `json:"heatmap"`
	Tornado visualizer.Chart           `json:"tornado"`
}

type MaterialsResponse struct {
	Names      []string                 `json:"names"`
	Comparison []material.ComparisonRow `json:"comparison"`
}

type MaterialResponse struct {
	Record     material.Record        `json:"record"`
	Comparison material.ComparisonRow `json:"comparison"`
}

type BatchResponse struct {
	Count   int        `json:"count"`
	Results []Summary  `json:"results"`
	Errors  []RowError `json:"errors,omitempty"`
}

// RowError reports a rejected row of an uploaded batch, 1-based as shown in a spreadsheet.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
