package visualizer

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Isoline is one contour level traced through a value grid.
type Isoline struct {
	Name     string    `json:"name"`
	Level    float64   `json:"level"`
	Color    string    `json:"color,omitempty"`
	Segments []Segment `json:"segments"`
}

// Isotherm traces the contour at level through values[iy][ix] by marching squares. Crossings
// are placed by linear interpolation along cell edges. Saddle cells are resolved with the cell
// average. A sample equal to level counts as inside the contour.
func Isotherm(xs, ys []float64, values [][]float64, level float64) []Segment {
	var out []Segment
	for iy := 0; iy+1 < len(ys) && iy+1 < len(values); iy++ {
		for ix := 0; ix+1 < len(xs); ix++ {
			c := cell{
				x0: xs[ix], x1: xs[ix+1], y0: ys[iy], y1: ys[iy+1],
				v00: values[iy][ix], v10: values[iy][ix+1],
				v01: values[iy+1][ix], v11: values[iy+1][ix+1],
			}
			out = c.march(level, out)
		}
	}
	return out
}

// cell corners: v00 at (x0, y0), v10 at (x1, y0), v11 at (x1, y1), v01 at (x0, y1).
type cell struct {
	x0, x1, y0, y1     float64
	v00, v10, v01, v11 float64
}

const (
	edgeBottom = iota
	edgeRight
	edgeTop
	edgeLeft
)

func lerp(a, b, va, vb, level float64) float64 {
	if va == vb {
		return (a + b) / 2
	}
	return a + (level-va)/(vb-va)*(b-a)
}

func (c cell) edge(e int, level float64) Point {
	switch e {
	case edgeBottom:
		return Point{lerp(c.x0, c.x1, c.v00, c.v10, level), c.y0}
	case edgeRight:
		return Point{c.x1, lerp(c.y0, c.y1, c.v10, c.v11, level)}
	case edgeTop:
		return Point{lerp(c.x0, c.x1, c.v01, c.v11, level), c.y1}
	default:
		return Point{c.x0, lerp(c.y0, c.y1, c.v00, c.v01, level)}
	}
}

// edges crossed by the contour for each corner configuration, as pairs
var marchTable = [16][]int{
	0:  nil,
	1:  {edgeLeft, edgeBottom},
	2:  {edgeBottom, edgeRight},
	3:  {edgeLeft, edgeRight},
	4:  {edgeRight, edgeTop},
	6:  {edgeBottom, edgeTop},
	7:  {edgeLeft, edgeTop},
	8:  {edgeTop, edgeLeft},
	9:  {edgeTop, edgeBottom},
	11: {edgeTop, edgeRight},
	12: {edgeRight, edgeLeft},
	13: {edgeRight, edgeBottom},
	14: {edgeBottom, edgeLeft},
	15: nil,
}

func (c cell) march(level float64, out []Segment) []Segment {
	idx := 0
	if c.v00 >= level {
		idx |= 1
	}
	if c.v10 >= level {
		idx |= 2
	}
	if c.v11 >= level {
		idx |= 4
	}
	if c.v01 >= level {
		idx |= 8
	}

	edges := marchTable[idx]
	switch idx {
	case 5, 10:
		centreIn := (c.v00+c.v10+c.v01+c.v11)/4 >= level
		// cut off the two corners that are not joined through the centre
		if (idx == 5) == centreIn {
			edges = []int{edgeBottom, edgeRight, edgeTop, edgeLeft}
		} else {
			edges = []int{edgeLeft, edgeBottom, edgeRight, edgeTop}
		}
	}
	for i := 0; i+1 < len(edges); i += 2 {
		out = append(out, Segment{A: c.edge(edges[i], level), B: c.edge(edges[i+1], level)})
	}
	return out
}
