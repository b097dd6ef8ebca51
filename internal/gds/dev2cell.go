package gds

import (
	"math"

	"prefab/internal/geom"
)

// rect is a half-open pixel rectangle [x0,x1) x [y0,y1).
type rect struct {
	x0, y0, x1, y1 int
}

type span struct {
	x0, x1 int
}

// rectsFromGrid decomposes the material pixels (>= 0.5) of a grid into
// rectangles: per-row runs, coalesced with the row above when the span
// matches exactly. Output order is row-major and deterministic.
func rectsFromGrid(g geom.Grid) []*rect {
	var rects []*rect
	prev := map[span]*rect{}
	for y := 0; y < g.H; y++ {
		cur := map[span]*rect{}
		x := 0
		for x < g.W {
			if g.At(x, y) < 0.5 {
				x++
				continue
			}
			x0 := x
			for x < g.W && g.At(x, y) >= 0.5 {
				x++
			}
			sp := span{x0: x0, x1: x}
			if r, ok := prev[sp]; ok && r.y1 == y {
				r.y1 = y + 1
				cur[sp] = r
			} else {
				nr := &rect{x0: x0, y0: y, x1: x, y1: y + 1}
				rects = append(rects, nr)
				cur[sp] = nr
			}
		}
		prev = cur
	}
	return rects
}

// AddGrid converts a (binarized) grid into boundary rectangles on the
// given layer. res is the pixel pitch in nanometers; the y axis is
// flipped so the layout matches the image orientation.
func (c *Cell) AddGrid(layer int16, g geom.Grid, res float64) {
	nm := func(px int) int32 { return int32(math.Round(float64(px) * res)) }
	for _, r := range rectsFromGrid(g) {
		yTop := nm(g.H - r.y0)
		yBot := nm(g.H - r.y1)
		c.Boundaries = append(c.Boundaries, Boundary{
			Layer: layer,
			XY: []int32{
				nm(r.x0), yBot,
				nm(r.x1), yBot,
				nm(r.x1), yTop,
				nm(r.x0), yTop,
			},
		})
	}
}

// DeviceCell builds a cell holding the grid's geometry on a single layer.
func DeviceCell(name string, layer int16, g geom.Grid, res float64) *Cell {
	c := &Cell{Name: name}
	c.AddGrid(layer, g, res)
	return c
}
