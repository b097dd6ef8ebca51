package predictor

import (
	"time"

	"prefab/pkg/types"
)

// Status builds a detailed status response for /status.
func (s *Service) Status() types.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := types.StatusResponse{
		BudgetMB:       s.budgetMB,
		UsedMB:         s.usedEstMB,
		MarginMB:       s.marginMB,
		Error:          s.err,
		State:          string(s.state),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		EvictionsTotal: s.evictionsTotal,
		LoadsTotal:     s.loadsTotal,
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(s.instances))
	warmups := 0
	draining := 0
	for _, inst := range s.instances {
		if inst.State == StateLoading {
			warmups++
		}
		if inst.State == StateDraining {
			draining++
		}
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			Key:           inst.Key,
			ModelID:       inst.ModelID,
			State:         string(inst.State),
			Members:       len(inst.Nums),
			TileSize:      inst.TileSize,
			LastUsed:      inst.LastUsed.Unix(),
			EstMemMB:      inst.EstMemMB,
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		})
	}
	resp.WarmupsInProgress = warmups
	resp.DrainingCount = draining
	return resp
}
