package predictor

import "time"

// Evict LRU idle ensembles until required MB fits budget + margin.
func (s *Service) evictUntilFits(requiredMB int) error {
	deadline := time.Now().Add(1 * time.Second)
	for {
		s.mu.Lock()
		fits := (s.usedEstMB + requiredMB + s.marginMB) <= s.budgetMB
		if fits {
			s.mu.Unlock()
			return nil
		}
		// Pick LRU idle ensemble (no in-flight and no queued predictions).
		// Loading instances are off-limits: a concurrent ensure still owns
		// their sessions and will commit them to the map. Draining ones are
		// already on their way out through unload.
		var lru *Instance
		for _, inst := range s.instances {
			if inst.State != StateReady {
				continue
			}
			if len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			// nothing to evict
			s.mu.Unlock()
			return nil
		}
		delete(s.instances, lru.Key)
		s.usedEstMB -= lru.EstMemMB
		if s.usedEstMB < 0 {
			s.usedEstMB = 0
		}
		s.evictionsTotal++
		sessions := lru.sessions
		lru.sessions = nil
		s.mu.Unlock()

		// Close sessions outside the lock; the instance is already
		// unreachable and had no in-flight work.
		for _, sess := range sessions {
			_ = sess.Close()
		}
		s.publisher.Publish(Event{Name: "evict", Key: lru.Key, Fields: map[string]any{"est_mem_mb": lru.EstMemMB}})

		if time.Now().After(deadline) {
			return nil
		}
		// loop to re-check
	}
}
