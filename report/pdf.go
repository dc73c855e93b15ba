package report

import (
	"fmt"
	"io"
	"math"

	"github.com/phpdave11/gofpdf"

	"weldsim/visualizer"
)

const (
	pageMargin = 15.0
	plotWidth  = 180.0
	plotHeight = 60.0
)

// WritePDF renders a one-page analysis report: inputs, results, material properties, the
// pool cross-section and the centreline temperature profile.
func (d *Document) WritePDF(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, d.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", d.Generated.Format("2006-01-02 15:04")))
	pdf.Ln(8)

	p := d.Parameters
	table(pdf, "Welding Parameters", [][2]string{
		{"Material", p.Material},
		{"Process", p.Process},
		{"Solution", p.Mode},
		{"Current", fmt.Sprintf("%.0f A", p.Current)},
		{"Voltage", fmt.Sprintf("%.1f V", p.Voltage)},
		{"Travel speed", fmt.Sprintf("%.1f mm/s", p.TravelSpeed)},
		{"Arc efficiency", fmt.Sprintf("%.2f", p.ArcEfficiency)},
	})

	r := d.Results
	table(pdf, "Results", [][2]string{
		{"Heat input", fmt.Sprintf("%.0f W (%.1f J/mm)", r.HeatInput, r.HeatInputPerLength)},
		{"Pool width", fmt.Sprintf("%.2f mm", r.Width)},
		{"Penetration", fmt.Sprintf("%.2f mm", r.Depth)},
		{"Pool length", fmt.Sprintf("%.2f mm", r.Length)},
		{"Aspect ratio", fmt.Sprintf("%.2f", r.AspectRatio)},
		{"Dilution ratio", fmt.Sprintf("%.2f", r.DilutionRatio)},
		{"Peak temperature", fmt.Sprintf("%.0f K", r.PeakTemperature)},
	})

	m := d.Material
	table(pdf, "Material Properties", [][2]string{
		{"Thermal conductivity", fmt.Sprintf("%.1f W/m K", m.ThermalConductivity)},
		{"Density", fmt.Sprintf("%.0f kg/m3", m.Density)},
		{"Specific heat", fmt.Sprintf("%.0f J/kg K", m.SpecificHeat)},
		{"Solidus temperature", fmt.Sprintf("%.0f K", m.SolidusTemperature)},
		{"Melting temperature", fmt.Sprintf("%.0f K", m.MeltingTemperature)},
		{"Latent heat", fmt.Sprintf("%.2e J/kg", m.LatentHeat)},
	})

	if d.result != nil {
		plotSeries(pdf, visualizer.CrossSection(d.result.Geometry))
		if d.result.Field != nil {
			plotSeries(pdf, visualizer.CenterlineProfile(d.result.Field, d.Material))
		}
	}
	return pdf.Output(w)
}

func table(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		pdf.CellFormat(60, 5, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

// plotSeries draws the series of a chart into a framed box, filled series as polygons and
// the rest as polylines, with the chart's reference lines dashed.
func plotSeries(pdf *gofpdf.Fpdf, c visualizer.Chart) {
	if pdf.GetY()+plotHeight+12 > 297-pageMargin {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, c.Title)
	pdf.Ln(8)
	top := pdf.GetY()
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(pageMargin, top, plotWidth, plotHeight, "D")

	xmin, xmax, ymin, ymax := extent(c)
	if xmax <= xmin || ymax <= ymin {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Text(pageMargin+4, top+plotHeight/2, "No data")
		pdf.SetY(top + plotHeight + 4)
		return
	}
	px := func(x float64) float64 { return pageMargin + (x-xmin)/(xmax-xmin)*plotWidth }
	py := func(y float64) float64 { return top + plotHeight - (y-ymin)/(ymax-ymin)*plotHeight }

	for i, s := range c.Series {
		if s.Fill {
			pts := make([]gofpdf.PointType, len(s.X))
			for j := range s.X {
				pts[j] = gofpdf.PointType{X: px(s.X[j]), Y: py(s.Y[j])}
			}
			shade := 200 - 60*i
			pdf.SetFillColor(255, shade, shade/3)
			pdf.Polygon(pts, "DF")
			continue
		}
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.4)
		for j := 1; j < len(s.X); j++ {
			pdf.Line(px(s.X[j-1]), py(s.Y[j-1]), px(s.X[j]), py(s.Y[j]))
		}
	}

	pdf.SetLineWidth(0.2)
	pdf.SetDashPattern([]float64{1, 1}, 0)
	pdf.SetFont("Helvetica", "", 7)
	for _, ref := range c.RefLines {
		if ref.Value < ymin || ref.Value > ymax {
			continue
		}
		pdf.SetDrawColor(0, 0, 200)
		pdf.Line(pageMargin, py(ref.Value), pageMargin+plotWidth, py(ref.Value))
		pdf.Text(pageMargin+1, py(ref.Value)-1, ref.Label)
	}
	pdf.SetDashPattern([]float64{}, 0)

	pdf.SetFont("Helvetica", "", 7)
	pdf.Text(pageMargin, top+plotHeight+4, fmt.Sprintf("%s: %.1f .. %.1f", c.XLabel, xmin, xmax))
	pdf.Text(pageMargin+plotWidth/2, top+plotHeight+4, fmt.Sprintf("%s: %.1f .. %.1f", c.YLabel, ymin, ymax))
	pdf.SetY(top + plotHeight + 8)
}

func extent(c visualizer.Chart) (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range c.Series {
		for i := range s.X {
			xmin, xmax = min(xmin, s.X[i]), max(xmax, s.X[i])
			ymin, ymax = min(ymin, s.Y[i]), max(ymax, s.Y[i])
		}
	}
	for _, ref := range c.RefLines {
		ymin, ymax = min(ymin, ref.Value), max(ymax, ref.Value)
	}
	return xmin, xmax, ymin, ymax
}
