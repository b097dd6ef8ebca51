package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirFiltersAndParses(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"p_Ante_NanoSOI_v5-d4_0.onnx",
		"p_Ante_NanoSOI_v5-d4_1.ONNX", // case-insensitive extension
		"c_Ante_NanoSOI_v5-d4_0.onnx",
		"readme.txt",
		"p_bad_name.onnx",          // wrong field count
		"p_Ante_NanoSOI_v5-d4_x.onnx", // non-numeric member
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	models, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d: %+v", len(models), models)
	}
	for _, m := range models {
		if m.Fab != "Ante" || m.Process != "NanoSOI" || m.Version != "v5-d4" {
			t.Fatalf("bad descriptor parse: %+v", m)
		}
		if m.Kind != "p" && m.Kind != "c" {
			t.Fatalf("bad kind: %+v", m)
		}
		if m.ID != m.Descriptor.ID() {
			t.Fatalf("id mismatch: %+v", m)
		}
		if m.Path == "" {
			t.Fatalf("path not set: %+v", m)
		}
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestParseWeightName(t *testing.T) {
	m, ok := parseWeightName("p_Ante_NanoSOI_v5-d4_2.onnx")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if m.Num != 2 || m.ID != "p_Ante_NanoSOI_v5-d4" {
		t.Fatalf("unexpected: %+v", m)
	}
	if _, ok := parseWeightName("pp_Ante_NanoSOI_v5-d4_2.onnx"); ok {
		t.Fatalf("kind must be a single character")
	}
	if _, ok := parseWeightName("p_Ante_NanoSOI_v5-d4_-1.onnx"); ok {
		t.Fatalf("member number must be non-negative")
	}
}
