// Package report exports simulation results as JSON, PDF and XLSX documents and reads
// batches of welding set-ups from spreadsheets.
package report

import (
	"encoding/json"
	"io"
	"time"

	"weldsim/material"
	"weldsim/model"
	"weldsim/simulator"
)

// Parameters echoes the inputs in UI units.
type Parameters struct {
	Material       string  `json:"material"`
	Current        float64 `json:"current"`
	Voltage        float64 `json:"voltage"`
	TravelSpeed    float64 `json:"travel_speed"` // mm/s
	ArcEfficiency  float64 `json:"arc_efficiency"`
	Process        string  `json:"process"`
	Mode           string  `json:"mode"`
	PlateThickness float64 `json:"plate_thickness,omitempty"` // mm
}

type Sweep struct {
	Parameter simulator.Param        `json:"parameter"`
	Points    []simulator.SweepPoint `json:"points"`
}

// Document is everything exported for one simulation.
type Document struct {
	Title       string                     `json:"title"`
	Generated   time.Time                  `json:"generated"`
	Parameters  Parameters                 `json:"parameters"`
	Results     model.Summary              `json:"results"`
	Material    material.Record            `json:"material_properties"`
	Comparison  []material.ComparisonRow   `json:"comparison,omitempty"`
	Sweeps      []Sweep                    `json:"sweeps,omitempty"`
	Sensitivity []simulator.SensitivityRow `json:"sensitivity,omitempty"`

	result *simulator.Result
}

// New builds a document for res. The comparison table is taken from table when not nil.
func New(res *simulator.Result, table *material.Table) *Document {
	p := res.Parameters
	d := &Document{
		Title:     "Welding Simulation Report",
		Generated: time.Now(),
		Parameters: Parameters{
			Material:       p.Material().Name,
			Current:        p.Current(),
			Voltage:        p.Voltage(),
			TravelSpeed:    p.TravelSpeed() * model.MillimetresPerMetre,
			ArcEfficiency:  p.ArcEfficiency(),
			Process:        string(p.Process()),
			Mode:           string(p.Mode()),
			PlateThickness: p.PlateThickness() * model.MillimetresPerMetre,
		},
		Results:  model.NewSummary(res),
		Material: p.Material(),
		result:   res,
	}
	if table != nil {
		d.Comparison = table.Comparison()
	}
	return d
}

func (d *Document) AddSweep(param simulator.Param, points []simulator.SweepPoint) {
	d.Sweeps = append(d.Sweeps, Sweep{Parameter: param, Points: points})
}

func (d *Document) SetSensitivity(rows []simulator.SensitivityRow) {
	d.Sensitivity = rows
}

// FileName is the suggested download name for the given extension.
func (d *Document) FileName(ext string) string {
	return "welding_analysis_" + slug(d.Parameters.Material) + "." + ext
}

func slug(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
