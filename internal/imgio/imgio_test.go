package imgio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"prefab/internal/geom"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "device.png")
	g := geom.New(8, 4)
	for i := range g.Pix {
		g.Pix[i] = float32(i) / float32(len(g.Pix)-1)
	}
	if err := SaveGrayPNG(g, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	// width 8px at 10nm/px => 80nm device
	got, err := LoadDeviceImage(p, 80, 10)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.W != g.W || got.H != g.H {
		t.Fatalf("shape mismatch: got %dx%d want %dx%d", got.W, got.H, g.W, g.H)
	}
	for i := range got.Pix {
		if got.Pix[i] < 0 || got.Pix[i] > 1 {
			t.Fatalf("pixel %d out of range: %v", i, got.Pix[i])
		}
		// 8-bit quantization tolerance
		if math.Abs(float64(got.Pix[i]-g.Pix[i])) > 1.0/255+1e-6 {
			t.Fatalf("pixel %d drifted: got %v want %v", i, got.Pix[i], g.Pix[i])
		}
	}
}

func TestDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "device.png")
	if err := SaveGrayPNG(geom.Uniform(8, 8, 1), p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := LoadDeviceImage(p, 100, 10) // expects 10px, image is 8px
	if err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if !IsDimensionMismatch(err) {
		t.Fatalf("expected IsDimensionMismatch, got %v", err)
	}
}

func TestLoadRejectsBadInputs(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadDeviceImage(filepath.Join(dir, "missing.png"), 80, 10); err == nil {
		t.Fatalf("expected error for missing file")
	}
	p := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(p, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDeviceImage(p, 80, 10); err == nil {
		t.Fatalf("expected decode error for corrupt file")
	}
	good := filepath.Join(dir, "good.png")
	if err := SaveGrayPNG(geom.Uniform(4, 4, 0), good); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadDeviceImage(good, 40, 0); err == nil {
		t.Fatalf("expected error for zero resolution")
	}
	if _, err := LoadDeviceImage(good, 0, 10); err == nil {
		t.Fatalf("expected error for zero device length")
	}
}
