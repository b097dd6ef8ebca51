// Package registry discovers trained ensemble weights in the model store.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"prefab/pkg/types"
)

// LoadDir scans a directory for *.onnx weight files named
// <kind>_<fab>_<process>_<version>_<n>.onnx and builds a registry from the
// filenames. Files that do not follow the convention are skipped.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		mdl, ok := parseWeightName(e.Name())
		if !ok {
			continue
		}
		mdl.Path = filepath.Join(abs, e.Name())
		models = append(models, mdl)
	}
	return models, nil
}

// parseWeightName parses e.g. "p_Ante_NanoSOI_v5-d4_0.onnx" into a Model.
func parseWeightName(name string) (types.Model, bool) {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".onnx") {
		return types.Model{}, false
	}
	base := name[:len(name)-len(".onnx")]
	parts := strings.Split(base, "_")
	if len(parts) != 5 {
		return types.Model{}, false
	}
	num, err := strconv.Atoi(parts[4])
	if err != nil || num < 0 {
		return types.Model{}, false
	}
	d := types.Descriptor{Kind: parts[0], Fab: parts[1], Process: parts[2], Version: parts[3]}
	if len(d.Kind) != 1 || d.Fab == "" || d.Process == "" || d.Version == "" {
		return types.Model{}, false
	}
	return types.Model{ID: d.ID(), Descriptor: d, Num: num}, true
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/prefab
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
