package predictor

import "fmt"

// IdentityRuntime returns every tile unchanged. It stands in for the real
// backend in tests: predicting a layout through it reproduces the input,
// which makes stitching and averaging errors observable directly.
type IdentityRuntime struct {
	// Tile overrides the session tile size; 0 uses the caller default.
	Tile int
}

// Open implements Runtime.
func (r IdentityRuntime) Open(path string, defaultTile int) (Session, error) {
	t := r.Tile
	if t <= 0 {
		t = defaultTile
	}
	if t <= 0 {
		return nil, fmt.Errorf("identity runtime: no tile size")
	}
	return &identitySession{tile: t}, nil
}

type identitySession struct {
	tile   int
	closed bool
}

func (s *identitySession) TileSize() int { return s.tile }

func (s *identitySession) Run(tile []float32) ([]float32, error) {
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	if len(tile) != s.tile*s.tile {
		return nil, fmt.Errorf("tile has %d values, session expects %d", len(tile), s.tile*s.tile)
	}
	out := make([]float32, len(tile))
	copy(out, tile)
	return out, nil
}

func (s *identitySession) Close() error {
	s.closed = true
	return nil
}
