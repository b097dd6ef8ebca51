package predictor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"prefab/pkg/types"
)

// newTestRegistry creates fake weight files for the given member numbers
// and returns matching registry entries.
func newTestRegistry(t *testing.T, dir, id string, nums []int, sizeMB int) []types.Model {
	t.Helper()
	if sizeMB <= 0 {
		sizeMB = 1
	}
	block := make([]byte, 1024*1024)
	var out []types.Model
	for _, n := range nums {
		p := filepath.Join(dir, fmt.Sprintf("%s_%d.onnx", id, n))
		f, err := os.Create(p)
		if err != nil {
			t.Fatalf("create weight file: %v", err)
		}
		for i := 0; i < sizeMB; i++ {
			if _, err := f.Write(block); err != nil {
				t.Fatalf("write weight file: %v", err)
			}
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close weight file: %v", err)
		}
		out = append(out, types.Model{ID: id, Num: n, Path: p})
	}
	return out
}

// newTestService wires a Service over the identity runtime.
func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	if cfg.Runtime == nil {
		cfg.Runtime = IdentityRuntime{Tile: 8}
	}
	return NewService(cfg)
}
