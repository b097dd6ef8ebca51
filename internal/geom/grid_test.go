package geom

import (
	"math"
	"testing"
)

func TestBinarizeIdempotent(t *testing.T) {
	g := New(4, 3)
	vals := []float32{0, 0.1, 0.49, 0.5, 0.51, 0.9, 1, 0.25, 0.75, 0.5, 0, 1}
	copy(g.Pix, vals)
	once := Binarize(g)
	twice := Binarize(once)
	for i := range once.Pix {
		if once.Pix[i] != twice.Pix[i] {
			t.Fatalf("pixel %d changed on second binarize: %v vs %v", i, once.Pix[i], twice.Pix[i])
		}
		if once.Pix[i] != 0 && once.Pix[i] != 1 {
			t.Fatalf("pixel %d not binary: %v", i, once.Pix[i])
		}
	}
	// threshold is inclusive at 0.5
	if once.Pix[3] != 1 {
		t.Fatalf("expected 0.5 to binarize to 1, got %v", once.Pix[3])
	}
	if once.Pix[2] != 0 {
		t.Fatalf("expected 0.49 to binarize to 0, got %v", once.Pix[2])
	}
}

func TestBinarizeDoesNotMutateInput(t *testing.T) {
	g := Uniform(2, 2, 0.7)
	_ = Binarize(g)
	if g.Pix[0] != 0.7 {
		t.Fatalf("input mutated: %v", g.Pix[0])
	}
}

func TestUncertaintyBounds(t *testing.T) {
	g := New(3, 2)
	copy(g.Pix, []float32{0, 1, 0.5, 0.25, 0.75, 0.1})
	u := Uncertainty(g)
	for i, v := range u.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("uncertainty out of range at %d: %v", i, v)
		}
	}
	if u.Pix[0] != 0 || u.Pix[1] != 0 {
		t.Fatalf("expected zero uncertainty at exact 0/1, got %v %v", u.Pix[0], u.Pix[1])
	}
	if u.Pix[2] != 1 {
		t.Fatalf("expected maximal uncertainty at 0.5, got %v", u.Pix[2])
	}
	if math.Abs(float64(u.Pix[3])-0.5) > 1e-6 {
		t.Fatalf("expected 0.5 at p=0.25, got %v", u.Pix[3])
	}
}

func TestAccumulatorAverages(t *testing.T) {
	a := NewAccumulator(4, 4)
	tile := make([]float32, 4)
	for i := range tile {
		tile[i] = 1
	}
	// two overlapping 2x2 tiles of ones
	a.AddTile(0, 0, tile, 2)
	a.AddTile(1, 0, tile, 2)
	g := a.Grid()
	if g.At(1, 0) != 1 {
		t.Fatalf("overlap pixel should average to 1, got %v", g.At(1, 0))
	}
	if g.At(3, 3) != 0 {
		t.Fatalf("uncovered pixel should stay 0, got %v", g.At(3, 3))
	}
}

func TestAccumulatorMergeOrderIndependent(t *testing.T) {
	mk := func() (*Accumulator, *Accumulator) {
		a := NewAccumulator(3, 3)
		b := NewAccumulator(3, 3)
		ta := []float32{0.25, 0.5, 0.75, 1}
		tb := []float32{0.1, 0.2, 0.3, 0.4}
		a.AddTile(0, 0, ta, 2)
		b.AddTile(1, 1, tb, 2)
		return a, b
	}
	a1, b1 := mk()
	a1.Merge(b1)
	g1 := a1.Grid()
	a2, b2 := mk()
	b2.Merge(a2)
	g2 := b2.Grid()
	for i := range g1.Pix {
		if g1.Pix[i] != g2.Pix[i] {
			t.Fatalf("merge order changed pixel %d: %v vs %v", i, g1.Pix[i], g2.Pix[i])
		}
	}
}

func TestAccumulatorClipsPaddedTiles(t *testing.T) {
	a := NewAccumulator(2, 2)
	tile := make([]float32, 16)
	for i := range tile {
		tile[i] = 1
	}
	// 4x4 tile over a 2x2 grid: out-of-bounds pixels must be dropped
	a.AddTile(0, 0, tile, 4)
	g := a.Grid()
	for i, v := range g.Pix {
		if v != 1 {
			t.Fatalf("pixel %d: expected 1, got %v", i, v)
		}
	}
}
