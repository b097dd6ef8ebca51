package predictor

import (
	"context"
	"log"
	"time"

	"prefab/internal/geom"
)

// Predict runs the ensemble (id, nums) over the device grid with a
// sliding window and returns the per-pixel probability-of-material map,
// the same shape as the input. stepLength is the stride between tile
// origins in pixels; 0 selects half the native tile size. When binary is
// true the map is thresholded at 0.5.
//
// Output is deterministic for a fixed model set and input: overlap and
// ensemble averaging are commutative, so neither member order nor tile
// order affects the result.
func (s *Service) Predict(ctx context.Context, id string, nums []int, device geom.Grid, stepLength int, binary bool) (geom.Grid, error) {
	if device.Empty() {
		return geom.Grid{}, ErrInvalidInput("empty device image")
	}
	if stepLength < 0 {
		return geom.Grid{}, ErrInvalidInput("step length must be non-negative")
	}
	if id == "" {
		id = s.defaultModel
		if id == "" {
			return geom.Grid{}, modelNotFoundError{id: "(unspecified)"}
		}
	}
	if err := s.EnsureEnsemble(ctx, id, nums); err != nil {
		return geom.Grid{}, err
	}
	key := ensembleKey(id, nums)
	// Admission: per-ensemble FIFO queue, single in-flight prediction
	release, err := s.beginPrediction(ctx, key)
	if err != nil {
		return geom.Grid{}, err
	}
	defer release()

	s.mu.RLock()
	inst := s.instances[key]
	if inst == nil || inst.State != StateReady {
		s.mu.RUnlock()
		return geom.Grid{}, modelNotFoundError{id: key}
	}
	sessions := inst.sessions
	tile := inst.TileSize
	s.mu.RUnlock()

	if stepLength == 0 {
		stepLength = s.stepLength
	}
	if stepLength == 0 {
		stepLength = tile / 2
	}
	if stepLength < 1 {
		// tile/2 underflows to 0 for 1px tiles; a zero stride never advances.
		stepLength = 1
	}
	if stepLength > tile {
		// Gaps between tiles would leave pixels unpredicted.
		return geom.Grid{}, ErrInvalidInput("step length must not exceed the tile size")
	}

	start := time.Now()
	out, err := stitchPredict(ctx, device, sessions, tile, stepLength)
	if err != nil {
		return geom.Grid{}, err
	}
	if binary {
		out = geom.Binarize(out)
	}
	log.Printf("predictor event=predict_done key=%q size=%dx%d step=%d binary=%v dur_ms=%d",
		key, device.W, device.H, stepLength, binary, time.Since(start)/time.Millisecond)
	return out, nil
}
