package server

import (
	"math"

	"weldsim/model"
	"weldsim/simulator"
	"weldsim/visualizer"
)

// surfaceStep is the quantization of the streamed surface plane, K.
const surfaceStep = 1.0

// encodeSurface quantizes the top surface of f and run-length encodes it row-major.
func encodeSurface(f *simulator.Field) *model.EncodedGrid {
	if f == nil {
		return nil
	}
	plane := visualizer.SurfacePlane(f)
	return encodePlane(plane, surfaceStep)
}

func encodePlane(p visualizer.Plane, step float64) *model.EncodedGrid {
	g := &model.EncodedGrid{
		Rows: len(p.V),
		Cols: len(p.U),
		X:    toMillimetres(p.U),
		Y:    toMillimetres(p.V),
		Step: step,
	}
	lo := math.Inf(1)
	for _, row := range p.Values {
		for _, v := range row {
			lo = math.Min(lo, v)
		}
	}
	if math.IsInf(lo, 1) {
		return g
	}
	g.Min = math.Floor(lo)

	level, count := -1, 0
	for _, row := range p.Values {
		for _, v := range row {
			l := int(math.Round((v - g.Min) / step))
			if l == level {
				count++
				continue
			}
			if count > 0 {
				g.Levels = append(g.Levels, level)
				g.Counts = append(g.Counts, count)
			}
			level, count = l, 1
		}
	}
	if count > 0 {
		g.Levels = append(g.Levels, level)
		g.Counts = append(g.Counts, count)
	}
	return g
}

// decodeGrid expands g back to Rows×Cols temperatures.
func decodeGrid(g *model.EncodedGrid) [][]float64 {
	out := make([][]float64, g.Rows)
	for i := range out {
		out[i] = make([]float64, 0, g.Cols)
	}
	row := 0
	for i, l := range g.Levels {
		v := g.Min + float64(l)*g.Step
		for n := 0; n < g.Counts[i]; n++ {
			for row < g.Rows && len(out[row]) == g.Cols {
				row++
			}
			if row == g.Rows {
				return out
			}
			out[row] = append(out[row], v)
		}
	}
	return out
}

func toMillimetres(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * model.MillimetresPerMetre
	}
	return out
}
