package predictor

import (
	"context"
	"log"
	"time"
)

// EnsureEnsemble loads the ensemble (id, nums) if it is not already
// resident, evicting idle ensembles as needed to respect the memory
// budget. Empty nums selects every member in the store. Idempotent for a
// ready ensemble.
func (s *Service) EnsureEnsemble(ctx context.Context, id string, nums []int) error {
	startTs := time.Now()
	if id == "" {
		id = s.defaultModel
		if id == "" {
			return modelNotFoundError{id: "(unspecified)"}
		}
	}
	key := ensembleKey(id, nums)
	log.Printf("predictor event=ensure_start key=%q", key)
	s.publisher.Publish(Event{Name: "ensure_start", Key: key, Fields: map[string]any{}})

	s.mu.RLock()
	inst, ok := s.instances[key]
	ready := ok && inst != nil && inst.State == StateReady
	s.mu.RUnlock()
	if ready {
		// Upgrade to write lock to safely mutate LastUsed and re-check state
		s.mu.Lock()
		if inst2, ok2 := s.instances[key]; ok2 && inst2 != nil && inst2.State == StateReady {
			inst2.LastUsed = time.Now()
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		// If state changed in between, continue with ensure path
	}

	members, err := s.resolveMembers(id, nums)
	if err != nil {
		log.Printf("predictor event=ensure_model_not_found key=%q", key)
		s.publisher.Publish(Event{Name: "ensure_model_not_found", Key: key, Fields: map[string]any{}})
		return err
	}
	reqMB := 0
	memberNums := make([]int, len(members))
	for i, m := range members {
		reqMB += estimateMemMB(m)
		memberNums[i] = m.Num
	}

	if s.budgetMB > 0 {
		if err := s.evictUntilFits(reqMB); err != nil {
			log.Printf("predictor event=ensure_budget_fail key=%q err=%v", key, err)
			s.publisher.Publish(Event{Name: "ensure_budget_fail", Key: key, Fields: map[string]any{"error": err.Error()}})
			return err
		}
	}

	s.mu.Lock()
	s.state = StateLoading
	s.err = ""
	inst, existed := s.instances[key]
	addedNow := false
	if !existed || inst == nil {
		inst = &Instance{
			Key:      key,
			ModelID:  id,
			Nums:     memberNums,
			State:    StateLoading,
			LastUsed: time.Now(),
			EstMemMB: reqMB,
			genCh:    make(chan struct{}, 1),
			queueCh:  make(chan struct{}, s.maxQueueDepth),
		}
		s.instances[key] = inst
		addedNow = true
	} else {
		inst.State = StateLoading
		inst.EstMemMB = reqMB
		inst.LastUsed = time.Now()
	}
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.state = StateError
		s.err = err.Error()
		if addedNow {
			delete(s.instances, key)
		}
		s.mu.Unlock()
		log.Printf("predictor event=ensure_error key=%q err=%v", key, err)
		s.publisher.Publish(Event{Name: "ensure_error", Key: key, Fields: map[string]any{"error": err.Error()}})
		return err
	}

	// Open one session per member. The ensemble invariant is a shared
	// native tile size; refuse mixed ensembles.
	sessions := make([]Session, 0, len(members))
	closeAll := func() {
		for _, sess := range sessions {
			_ = sess.Close()
		}
	}
	tile := 0
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			closeAll()
			return fail(err)
		}
		sess, err := s.runtime.Open(m.Path, s.tileSize)
		if err != nil {
			closeAll()
			return fail(err)
		}
		if tile == 0 {
			tile = sess.TileSize()
		} else if sess.TileSize() != tile {
			_ = sess.Close()
			closeAll()
			return fail(ErrInvalidInput("ensemble members disagree on tile size"))
		}
		sessions = append(sessions, sess)
	}

	s.mu.Lock()
	if addedNow {
		s.usedEstMB += reqMB
	}
	inst.sessions = sessions
	inst.TileSize = tile
	inst.State = StateReady
	inst.LastUsed = time.Now()
	s.state = StateReady
	s.err = ""
	s.loadsTotal++
	s.mu.Unlock()
	log.Printf("predictor event=ensure_ready key=%q members=%d tile=%d dur_ms=%d",
		key, len(sessions), tile, time.Since(startTs)/time.Millisecond)
	s.publisher.Publish(Event{Name: "ensure_ready", Key: key, Fields: map[string]any{
		"members": len(sessions),
		"tile":    tile,
		"dur_ms":  int(time.Since(startTs) / time.Millisecond),
	}})
	return nil
}
