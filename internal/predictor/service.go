package predictor

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"prefab/pkg/types"
)

// Service coordinates ensemble loading, eviction, admission, and
// prediction over the model registry.
type Service struct {
	mu           sync.RWMutex
	state        State
	err          string
	registry     []types.Model
	budgetMB     int
	marginMB     int
	defaultModel string
	instances    map[string]*Instance
	usedEstMB    int

	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration
	tileSize      int
	stepLength    int

	runtime   Runtime
	publisher EventPublisher

	startTime      time.Time
	evictionsTotal uint64
	loadsTotal     uint64
}

// Ready reports whether at least one ensemble is loaded and ready.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateError {
		return false
	}
	for _, inst := range s.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return false
}

// Models returns a copy of the registry.
func (s *Service) Models() []types.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Model, len(s.registry))
	copy(out, s.registry)
	return out
}

// Close unloads every ensemble. Used on daemon shutdown.
func (s *Service) Close() error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.instances))
	for k := range s.instances {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	var first error
	for _, k := range keys {
		if err := s.unloadKey(k); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// membersByID returns every registry entry for the given ensemble id,
// sorted by member number.
func (s *Service) membersByID(id string) []types.Model {
	var out []types.Model
	for _, m := range s.registry {
		if m.ID == id {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	return out
}

// resolveMembers maps (id, nums) to concrete weight files. Empty nums
// selects every member in the store.
func (s *Service) resolveMembers(id string, nums []int) ([]types.Model, error) {
	all := s.membersByID(id)
	if len(all) == 0 {
		return nil, ErrModelNotFound(id)
	}
	if len(nums) == 0 {
		return all, nil
	}
	byNum := make(map[int]types.Model, len(all))
	for _, m := range all {
		byNum[m.Num] = m
	}
	out := make([]types.Model, 0, len(nums))
	for _, n := range nums {
		m, ok := byNum[n]
		if !ok {
			return nil, ErrModelNotFound(fmt.Sprintf("%s_%d", id, n))
		}
		out = append(out, m)
	}
	return out, nil
}

// ensembleKey builds the instance key for (id, nums). Member order does
// not matter: the key is canonical over sorted numbers.
func ensembleKey(id string, nums []int) string {
	if len(nums) == 0 {
		return id
	}
	sorted := append([]int(nil), nums...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = strconv.Itoa(n)
	}
	return id + "#" + strings.Join(parts, ",")
}

// estimateMemMB estimates resident memory for a member from its weight
// file size. Unknown sizes count as 1MB so budget checks are not bypassed.
func estimateMemMB(m types.Model) int {
	fi, err := os.Stat(m.Path)
	if err != nil {
		return 1
	}
	mb := int(fi.Size() / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}
