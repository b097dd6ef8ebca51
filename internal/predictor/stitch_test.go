package predictor

import (
	"context"
	"reflect"
	"testing"

	"prefab/internal/geom"
)

func TestTileOrigins(t *testing.T) {
	cases := []struct {
		dim, tile, step int
		want            []int
	}{
		{16, 8, 4, []int{0, 4, 8}},
		{16, 8, 8, []int{0, 8}},
		{17, 8, 8, []int{0, 8, 9}},
		{8, 8, 4, []int{0}},
		{5, 8, 4, []int{0}},
		{20, 8, 5, []int{0, 5, 10, 12}},
		// a step below 1 must advance anyway instead of looping forever
		{16, 1, 0, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
	}
	for _, c := range cases {
		got := tileOrigins(c.dim, c.tile, c.step)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("tileOrigins(%d,%d,%d) = %v, want %v", c.dim, c.tile, c.step, got, c.want)
		}
		// last tile must end flush with the edge when the image is
		// at least one tile wide
		if c.dim >= c.tile {
			last := got[len(got)-1]
			if last+c.tile != c.dim && c.dim != c.tile {
				t.Fatalf("tileOrigins(%d,%d,%d): last origin %d not flush", c.dim, c.tile, c.step, last)
			}
		}
	}
}

func TestExtractTilePads(t *testing.T) {
	g := geom.Uniform(3, 2, 1)
	tile := extractTile(g, 0, 0, 4)
	ones := 0
	for _, v := range tile {
		if v == 1 {
			ones++
		} else if v != 0 {
			t.Fatalf("padding must be zero, got %v", v)
		}
	}
	if ones != 6 {
		t.Fatalf("expected 6 in-bounds pixels, got %d", ones)
	}
}

func TestStitchCoversEveryPixel(t *testing.T) {
	device := geom.New(21, 10)
	for i := range device.Pix {
		device.Pix[i] = 0.5
	}
	sess, err := IdentityRuntime{Tile: 8}.Open("", 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	out, err := stitchPredict(context.Background(), device, []Session{sess}, 8, 3)
	if err != nil {
		t.Fatalf("stitch: %v", err)
	}
	for i, v := range out.Pix {
		if v != 0.5 {
			t.Fatalf("pixel %d not covered or mis-averaged: %v", i, v)
		}
	}
}
