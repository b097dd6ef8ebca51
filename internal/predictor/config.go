package predictor

import (
	"time"

	"prefab/pkg/types"
)

// Defaults applied when corresponding ServiceConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 5 * time.Second
	defaultTileSize      = 128
)

// ServiceConfig encapsulates all tunables for Service construction.
type ServiceConfig struct {
	Registry      []types.Model
	BudgetMB      int
	MarginMB      int
	DefaultModel  string
	MaxQueueDepth int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
	// TileSize is the fallback native tile size for models with dynamic
	// input shapes.
	TileSize int
	// StepLength is the default sliding-window stride when a request
	// omits one. 0 selects half the native tile size at predict time.
	StepLength int
	// Runtime is the inference backend; nil selects onnxruntime.
	Runtime Runtime
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

// NewService constructs a Service from ServiceConfig, applying defaults
// for unset fields.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		state:        StateLoading,
		registry:     cfg.Registry,
		budgetMB:     cfg.BudgetMB,
		marginMB:     cfg.MarginMB,
		defaultModel: cfg.DefaultModel,
		instances:    make(map[string]*Instance),
		stepLength:   cfg.StepLength,
		runtime:      cfg.Runtime,
		publisher:    cfg.Publisher,
		startTime:    time.Now(),
	}
	if cfg.MaxQueueDepth <= 0 {
		s.maxQueueDepth = defaultMaxQueueDepth
	} else {
		s.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		s.maxWait = defaultMaxWait
	} else {
		s.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		s.drainTimeout = defaultDrainTimeout
	} else {
		s.drainTimeout = cfg.DrainTimeout
	}
	if cfg.TileSize <= 0 {
		s.tileSize = defaultTileSize
	} else {
		s.tileSize = cfg.TileSize
	}
	if s.runtime == nil {
		s.runtime = &ONNXRuntime{}
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	return s
}
