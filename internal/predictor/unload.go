package predictor

import "time"

// Unload initiates a graceful drain of the ensemble (id, nums) and
// removes it.
// - Sets the instance state to draining to reject new enqueues.
// - Waits up to drainTimeout for in-flight and queued predictions.
// - Closes member sessions and removes the instance entry.
func (s *Service) Unload(id string, nums []int) error {
	if id == "" {
		return ErrModelNotFound("(unspecified)")
	}
	return s.unloadKey(ensembleKey(id, nums))
}

func (s *Service) unloadKey(key string) error {
	s.mu.Lock()
	inst := s.instances[key]
	if inst == nil {
		s.mu.Unlock()
		return ErrModelNotFound(key)
	}
	inst.State = StateDraining
	s.mu.Unlock()
	s.publisher.Publish(Event{Name: "unload_start", Key: key, Fields: map[string]any{}})

	deadline := time.Now().Add(s.drainTimeout)
	for {
		s.mu.RLock()
		qlen := len(inst.queueCh)
		inflight := len(inst.genCh)
		s.mu.RUnlock()
		if inflight == 0 && qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			s.publisher.Publish(Event{Name: "unload_timeout", Key: key, Fields: map[string]any{"inflight": inflight, "queue": qlen}})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.mu.Lock()
	var sessions []Session
	if inst2 := s.instances[key]; inst2 != nil {
		s.usedEstMB -= inst2.EstMemMB
		if s.usedEstMB < 0 {
			s.usedEstMB = 0
		}
		sessions = inst2.sessions
		inst2.sessions = nil
	}
	delete(s.instances, key)
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}
	s.publisher.Publish(Event{Name: "unload_done", Key: key, Fields: map[string]any{}})
	return nil
}
