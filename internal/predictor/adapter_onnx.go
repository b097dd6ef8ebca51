package predictor

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXRuntime loads ensemble members through onnxruntime. The shared
// library must be present at runtime; Open fails with a
// runtime-unavailable error when it is not.
type ONNXRuntime struct {
	// LibraryPath overrides the onnxruntime shared library location.
	// Empty uses the platform default lookup.
	LibraryPath string
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Open implements Runtime. The tile size is read from the model's input
// shape when it is static; defaultTile is used otherwise.
func (r *ONNXRuntime) Open(path string, defaultTile int) (Session, error) {
	ortInitOnce.Do(func() {
		if r.LibraryPath != "" {
			ort.SetSharedLibraryPath(r.LibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, ErrRuntimeUnavailable(fmt.Sprintf("onnxruntime unavailable: %v", ortInitErr))
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", path, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("model %s: expected 1 input and 1 output, got %d/%d", path, len(inputs), len(outputs))
	}
	tile := defaultTile
	if dims := inputs[0].Dimensions; len(dims) >= 2 {
		if d := dims[len(dims)-1]; d > 0 {
			tile = int(d)
		}
	}
	if tile <= 0 {
		return nil, fmt.Errorf("model %s: no usable tile size", path)
	}

	shape := ort.NewShape(1, 1, int64(tile), int64(tile))
	in, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	out, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		in.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	sess, err := ort.NewAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.ArbitraryTensor{in}, []ort.ArbitraryTensor{out},
		nil)
	if err != nil {
		in.Destroy()
		out.Destroy()
		return nil, fmt.Errorf("create session for %s: %w", path, err)
	}
	return &onnxSession{tile: tile, in: in, out: out, sess: sess}, nil
}

type onnxSession struct {
	tile int
	in   *ort.Tensor[float32]
	out  *ort.Tensor[float32]
	sess *ort.AdvancedSession
}

func (s *onnxSession) TileSize() int { return s.tile }

func (s *onnxSession) Run(tile []float32) ([]float32, error) {
	if len(tile) != s.tile*s.tile {
		return nil, fmt.Errorf("tile has %d values, session expects %d", len(tile), s.tile*s.tile)
	}
	copy(s.in.GetData(), tile)
	if err := s.sess.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	out := make([]float32, s.tile*s.tile)
	copy(out, s.out.GetData())
	return out, nil
}

func (s *onnxSession) Close() error {
	if s.sess != nil {
		s.sess.Destroy()
		s.sess = nil
	}
	if s.in != nil {
		s.in.Destroy()
		s.in = nil
	}
	if s.out != nil {
		s.out.Destroy()
		s.out = nil
	}
	return nil
}
