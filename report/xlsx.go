package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"weldsim/model"
	"weldsim/simulator"
	"weldsim/visualizer"
)

const (
	sheetParameters  = "Parameters"
	sheetResults     = "Results"
	sheetComparison  = "Materials"
	sheetSurface     = "Surface"
	sheetSensitivity = "Sensitivity"
)

// WriteXLSX writes a workbook with the inputs, results, material comparison, the surface
// temperature grid and one sheet per sweep.
func (d *Document) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetParameters); err != nil {
		return err
	}
	p := d.Parameters
	if err := writeRows(f, sheetParameters, [][]any{
		{"Parameter", "Value", "Unit"},
		{"Material", p.Material, ""},
		{"Process", p.Process, ""},
		{"Solution", p.Mode, ""},
		{"Current", p.Current, "A"},
		{"Voltage", p.Voltage, "V"},
		{"Travel speed", p.TravelSpeed, "mm/s"},
		{"Arc efficiency", p.ArcEfficiency, ""},
		{"Plate thickness", p.PlateThickness, "mm"},
	}); err != nil {
		return err
	}

	r := d.Results
	if err := writeSheet(f, sheetResults, [][]any{
		{"Result", "Value", "Unit"},
		{"Heat input", r.HeatInput, "W"},
		{"Heat input per length", r.HeatInputPerLength, "J/mm"},
		{"Fused", r.Fused, ""},
		{"Pool width", r.Width, "mm"},
		{"Penetration", r.Depth, "mm"},
		{"Pool length", r.Length, "mm"},
		{"Aspect ratio", r.AspectRatio, ""},
		{"Dilution ratio", r.DilutionRatio, ""},
		{"Pool volume", r.Volume, "mm3"},
		{"Peak temperature", r.PeakTemperature, "K"},
		{"Mean temperature", r.MeanTemperature, "K"},
	}); err != nil {
		return err
	}

	if len(d.Comparison) > 0 {
		rows := [][]any{{"Material", "k (W/m K)", "k at melting (W/m K)", "Density (kg/m3)",
			"Melting point (C)", "Diffusivity (mm2/s)", "GTAW efficiency", "GMAW efficiency",
			"GMAW droplet efficiency", "Melting enthalpy (J/kg)", "Liquid specific heat (J/kg K)", "Surface tension (N/m)"}}
		for _, c := range d.Comparison {
			rows = append(rows, []any{c.Material, c.ThermalConductivity, c.ConductivityAtMelting, c.Density,
				c.MeltingPointC, c.DiffusivityMM2, c.EfficiencyGTAW, c.EfficiencyGMAW,
				c.DropletEfficiencyGMAW, c.MeltingEnthalpyPerKg, c.SpecificHeatLiquid, c.SurfaceTension})
		}
		if err := writeSheet(f, sheetComparison, rows); err != nil {
			return err
		}
	}

	if d.result != nil && d.result.Field != nil {
		if err := writeSheet(f, sheetSurface, surfaceRows(d)); err != nil {
			return err
		}
	}

	sheets := map[string]int{}
	for _, s := range d.Sweeps {
		rows := [][]any{{visualizer.ParamLabel(s.Parameter), "Heat input (W)", "Heat input (J/mm)",
			"Width (mm)", "Penetration (mm)", "Length (mm)"}}
		for _, pt := range s.Points {
			rows = append(rows, []any{visualizer.DisplayValue(s.Parameter, pt.Value), pt.HeatInput, pt.HeatInputPerLength,
				pt.Geometry.Width * model.MillimetresPerMetre, pt.Geometry.Depth * model.MillimetresPerMetre,
				pt.Geometry.Length * model.MillimetresPerMetre})
		}
		if err := writeSheet(f, sweepSheet(sheets, s.Parameter), rows); err != nil {
			return err
		}
	}

	if len(d.Sensitivity) > 0 {
		rows := [][]any{{"Parameter", "Base", "Low", "High", "Width", "Penetration", "Length"}}
		for _, s := range d.Sensitivity {
			rows = append(rows, []any{string(s.Param), s.Base, s.Low, s.High, s.Width, s.Depth, s.Length})
		}
		if err := writeSheet(f, sheetSensitivity, rows); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// sweepSheet names the sheet of a sweep, numbering repeated sweeps of one parameter.
func sweepSheet(seen map[string]int, param simulator.Param) string {
	name := "Sweep " + string(param)
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s (%d)", name, n)
	}
	return name
}

// surfaceRows lays out the top-surface temperatures with x (mm) across and y (mm) down.
func surfaceRows(d *Document) [][]any {
	plane := visualizer.SurfacePlane(d.result.Field)
	header := []any{"y \\ x (mm)"}
	for _, x := range plane.U {
		header = append(header, x*model.MillimetresPerMetre)
	}
	rows := [][]any{header}
	for i, y := range plane.V {
		row := []any{y * model.MillimetresPerMetre}
		for _, v := range plane.Values[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Batch columns: material, current (A), voltage (V), travel speed (mm/s), then optional arc
// efficiency, process, mode and plate thickness (mm). The first row is a header.
const batchRequiredColumns = 4

// BatchRow is one parsed set-up and its 1-based spreadsheet row.
type BatchRow struct {
	Row     int
	Request model.SimulateRequest
}

// ReadBatch reads welding set-ups from the first sheet of a workbook. Rows that cannot be
// parsed are reported and skipped; blank rows are ignored.
func ReadBatch(r io.Reader) ([]BatchRow, []model.RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}

	var reqs []BatchRow
	var rowErrs []model.RowError
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		req, err := parseBatchRow(row)
		if err != nil {
			rowErrs = append(rowErrs, model.RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		reqs = append(reqs, BatchRow{Row: i + 1, Request: req})
	}
	return reqs, rowErrs, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseBatchRow(row []string) (model.SimulateRequest, error) {
	if len(row) < batchRequiredColumns {
		return model.SimulateRequest{}, fmt.Errorf("expected at least %d columns, got %d", batchRequiredColumns, len(row))
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	req := model.SimulateRequest{
		Material: cell(0),
		Process:  cell(5),
		Mode:     cell(6),
	}
	var err error
	for _, c := range []struct {
		name string
		col  int
		dst  *float64
	}{
		{"current", 1, &req.Current},
		{"voltage", 2, &req.Voltage},
		{"travel speed", 3, &req.TravelSpeed},
	} {
		if *c.dst, err = strconv.ParseFloat(cell(c.col), 64); err != nil {
			return model.SimulateRequest{}, fmt.Errorf("%s: %q is not a number", c.name, cell(c.col))
		}
	}
	if s := cell(4); s != "" {
		eff, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.SimulateRequest{}, fmt.Errorf("arc efficiency: %q is not a number", s)
		}
		req.ArcEfficiency = &eff
	}
	if s := cell(7); s != "" {
		if req.PlateThickness, err = strconv.ParseFloat(s, 64); err != nil {
			return model.SimulateRequest{}, fmt.Errorf("plate thickness: %q is not a number", s)
		}
	}
	return req, nil
}
