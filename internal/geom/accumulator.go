package geom

// Accumulator collects overlapping tile outputs into per-pixel running
// sums. Each worker owns its accumulator; Merge combines them afterwards,
// so accumulation is commutative and needs no locks. Sums are kept in
// float64 so the final average does not depend on tile order.
type Accumulator struct {
	w, h   int
	sum    []float64
	weight []float64
}

// NewAccumulator returns an empty accumulator for a w x h output grid.
func NewAccumulator(w, h int) *Accumulator {
	return &Accumulator{w: w, h: h, sum: make([]float64, w*h), weight: make([]float64, w*h)}
}

// AddTile adds a tile x tile output placed at origin (x0, y0). Pixels that
// fall outside the grid (padded tiles at the edge) are discarded.
func (a *Accumulator) AddTile(x0, y0 int, vals []float32, tile int) {
	for ty := 0; ty < tile; ty++ {
		y := y0 + ty
		if y < 0 || y >= a.h {
			continue
		}
		row := y * a.w
		for tx := 0; tx < tile; tx++ {
			x := x0 + tx
			if x < 0 || x >= a.w {
				continue
			}
			a.sum[row+x] += float64(vals[ty*tile+tx])
			a.weight[row+x]++
		}
	}
}

// Merge folds b into a. Both must cover the same dimensions.
func (a *Accumulator) Merge(b *Accumulator) {
	for i := range a.sum {
		a.sum[i] += b.sum[i]
		a.weight[i] += b.weight[i]
	}
}

// Grid divides sums by coverage and returns the averaged map.
// Pixels never covered by a tile stay zero.
func (a *Accumulator) Grid() Grid {
	out := New(a.w, a.h)
	for i := range a.sum {
		if a.weight[i] > 0 {
			out.Pix[i] = float32(a.sum[i] / a.weight[i])
		}
	}
	return out
}
