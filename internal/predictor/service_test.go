package predictor

import (
	"context"
	"testing"

	"prefab/pkg/types"
)

func TestNewServiceDefaults(t *testing.T) {
	s := NewService(ServiceConfig{})
	if s.maxQueueDepth != defaultMaxQueueDepth {
		t.Fatalf("expected default maxQueueDepth=%d got %d", defaultMaxQueueDepth, s.maxQueueDepth)
	}
	if s.maxWait != defaultMaxWait {
		t.Fatalf("expected default maxWait=%v got %v", defaultMaxWait, s.maxWait)
	}
	if s.tileSize != defaultTileSize {
		t.Fatalf("expected default tileSize=%d got %d", defaultTileSize, s.tileSize)
	}
	if _, ok := s.runtime.(*ONNXRuntime); !ok {
		t.Fatalf("expected onnx runtime by default, got %T", s.runtime)
	}
}

func TestModelsReturnsCopy(t *testing.T) {
	reg := []types.Model{{ID: "a"}, {ID: "b"}}
	s := newTestService(t, ServiceConfig{Registry: reg})
	out := s.Models()
	if len(out) != 2 {
		t.Fatalf("expected 2 got %d", len(out))
	}
	out[0].ID = "z"
	if s.Models()[0].ID != "a" {
		t.Fatalf("registry mutated via returned slice")
	}
}

func TestReadyReflectsEnsure(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, "p_Ante_NanoSOI_v5-d4", []int{0, 1}, 1)
	s := newTestService(t, ServiceConfig{Registry: reg, DefaultModel: "p_Ante_NanoSOI_v5-d4"})
	if s.Ready() {
		t.Fatalf("expected not ready initially")
	}
	if err := s.EnsureEnsemble(context.Background(), "p_Ante_NanoSOI_v5-d4", nil); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("expected ready after ensure")
	}
	st := s.Status()
	if len(st.Instances) != 1 || st.Instances[0].Members != 2 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.LoadsTotal != 1 {
		t.Fatalf("expected 1 load, got %d", st.LoadsTotal)
	}
}

func TestEnsureUnknownModel(t *testing.T) {
	s := newTestService(t, ServiceConfig{})
	err := s.EnsureEnsemble(context.Background(), "p_Nope_X_v1", nil)
	if !IsModelNotFound(err) {
		t.Fatalf("expected model not found, got %v", err)
	}
}

func TestEnsureUnknownMember(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, "p_Ante_NanoSOI_v5-d4", []int{0}, 1)
	s := newTestService(t, ServiceConfig{Registry: reg})
	err := s.EnsureEnsemble(context.Background(), "p_Ante_NanoSOI_v5-d4", []int{0, 7})
	if !IsModelNotFound(err) {
		t.Fatalf("expected model not found for missing member, got %v", err)
	}
}

func TestEnsembleKeyCanonical(t *testing.T) {
	a := ensembleKey("m", []int{2, 0, 1})
	b := ensembleKey("m", []int{0, 1, 2})
	if a != b {
		t.Fatalf("key not canonical over member order: %q vs %q", a, b)
	}
	if ensembleKey("m", nil) != "m" {
		t.Fatalf("empty nums should key on the id alone")
	}
}

func TestEnsureIdempotent(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, dir, "p_Ante_NanoSOI_v5-d4", []int{0}, 1)
	s := newTestService(t, ServiceConfig{Registry: reg})
	ctx := context.Background()
	if err := s.EnsureEnsemble(ctx, "p_Ante_NanoSOI_v5-d4", nil); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.EnsureEnsemble(ctx, "p_Ante_NanoSOI_v5-d4", nil); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if got := s.Status().LoadsTotal; got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}
