package ecs

import (
	"time"

	"go.uber.org/zap"
)

// OptimizationStep is one action of the world's optimization plan.
type OptimizationStep uint8

const (
	StepClearQueryCache OptimizationStep = iota
	StepCompactStorage
	StepReduceEntityPool
)

func (s OptimizationStep) String() string {
	switch s {
	case StepClearQueryCache:
		return "clear-query-cache"
	case StepCompactStorage:
		return "compact-storage"
	case StepReduceEntityPool:
		return "reduce-entity-pool"
	default:
		return "unknown"
	}
}

// OptimizationReport describes what a call to Optimize did.
type OptimizationReport struct {
	Steps           []OptimizationStep
	CacheEntries    int
	SlotsReclaimed  int
	StoresCompacted int
	IdsRetired      int
	Duration        time.Duration
}

// Optimize runs the fixed maintenance plan: drop the query cache, compact every
// store whose throttle allows it, and trim the entity recycle queue once it
// exceeds the recycle threshold. The frame context is only logged.
func (w *World) Optimize(fc FrameContext) OptimizationReport {
	start := w.now()
	report := OptimizationReport{
		Steps: []OptimizationStep{StepClearQueryCache, StepCompactStorage, StepReduceEntityPool},
	}

	report.CacheEntries = w.cache.Len()
	w.cache.InvalidateAll()

	for _, store := range w.stores.All() {
		if n := store.Compact(); n > 0 {
			report.SlotsReclaimed += n
			report.StoresCompacted++
		}
	}

	report.IdsRetired = w.registry.trimRecycled(w.recycleThreshold)

	report.Duration = w.now().Sub(start)
	w.logger.Debug("world optimized",
		zap.Stringer("tier", fc.PerformanceTier),
		zap.Int("cacheEntries", report.CacheEntries),
		zap.Int("slotsReclaimed", report.SlotsReclaimed),
		zap.Int("idsRetired", report.IdsRetired),
		zap.Duration("took", report.Duration))
	return report
}
