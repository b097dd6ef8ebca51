package predictor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"prefab/internal/geom"
)

// tileOrigins returns the tile origin offsets along one axis: every step
// pixels, plus a final origin clamped so the last tile ends flush with
// the edge. A dimension smaller than one tile yields a single padded
// tile at origin 0.
func tileOrigins(dim, tile, step int) []int {
	if dim <= tile {
		return []int{0}
	}
	if step < 1 {
		step = 1
	}
	var out []int
	for o := 0; o < dim-tile; o += step {
		out = append(out, o)
	}
	return append(out, dim-tile)
}

// extractTile copies the tile at origin (x0, y0) into a fresh buffer,
// zero-padding any region outside the grid.
func extractTile(g geom.Grid, x0, y0, tile int) []float32 {
	out := make([]float32, tile*tile)
	for ty := 0; ty < tile; ty++ {
		y := y0 + ty
		if y < 0 || y >= g.H {
			continue
		}
		for tx := 0; tx < tile; tx++ {
			x := x0 + tx
			if x < 0 || x >= g.W {
				continue
			}
			out[ty*tile+tx] = g.At(x, y)
		}
	}
	return out
}

// stitchPredict runs every session over every tile and averages the
// overlapping outputs. One goroutine per ensemble member: a session is
// never shared, and each goroutine owns its accumulation buffers, merged
// only after all members finish.
func stitchPredict(ctx context.Context, device geom.Grid, sessions []Session, tile, step int) (geom.Grid, error) {
	xs := tileOrigins(device.W, tile, step)
	ys := tileOrigins(device.H, tile, step)

	accs := make([]*geom.Accumulator, len(sessions))
	g, ctx := errgroup.WithContext(ctx)
	for i := range sessions {
		i := i
		sess := sessions[i]
		g.Go(func() error {
			acc := geom.NewAccumulator(device.W, device.H)
			for _, y0 := range ys {
				for _, x0 := range xs {
					if err := ctx.Err(); err != nil {
						return err
					}
					out, err := sess.Run(extractTile(device, x0, y0, tile))
					if err != nil {
						return err
					}
					acc.AddTile(x0, y0, out, tile)
				}
			}
			accs[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return geom.Grid{}, err
	}

	total := accs[0]
	for _, acc := range accs[1:] {
		total.Merge(acc)
	}
	return total.Grid(), nil
}
