package predictor

import (
	"context"
	"time"
)

// beginPrediction reserves a queue slot and then the single in-flight slot
// for the ensemble. Returns a release func to be deferred.
func (s *Service) beginPrediction(ctx context.Context, key string) (func(), error) {
	s.mu.RLock()
	inst := s.instances[key]
	s.mu.RUnlock()
	if inst == nil {
		return func() {}, modelNotFoundError{id: key}
	}
	// If draining, reject new work to allow graceful shutdown/unload
	if inst.State == StateDraining {
		return func() {}, tooBusyError{key: key}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(s.maxWait)
	defer timer.Stop()
	select {
	case inst.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{key: key}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-inst.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(s.maxWait)
	defer timer2.Stop()
	select {
	case inst.genCh <- struct{}{}:
		acquired = true
		s.mu.Lock()
		inst.LastUsed = time.Now()
		s.mu.Unlock()
		return func() { <-inst.genCh; <-inst.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{key: key}
	}
}
