package predictor

import "time"

// State represents lifecycle state of the service/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Instance is a loaded ensemble: one session per member, plus queueing
// primitives for admission.
type Instance struct {
	Key      string
	ModelID  string
	Nums     []int
	State    State
	LastUsed time.Time
	EstMemMB int
	TileSize int
	// sessions is index-aligned with Nums; owned by the instance and
	// closed on eviction/unload.
	sessions []Session
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight prediction
	queueCh chan struct{} // buffered: queue slots
}
