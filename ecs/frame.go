package ecs

import (
	"sync"
	"time"
)

// PerformanceTier is the host's coarse description of available compute.
type PerformanceTier uint8

const (
	TierHigh PerformanceTier = iota
	TierMedium
	TierLow
	TierBattery
)

func (t PerformanceTier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	case TierBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// ParsePerformanceTier maps a tier name back to its value.
func ParsePerformanceTier(s string) (PerformanceTier, bool) {
	for t := TierHigh; t <= TierBattery; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// FrameContext is supplied by the host once per frame.
type FrameContext struct {
	FrameTimeBudget      time.Duration
	SystemLoadFactor     float32
	PredictedEntityCount int
	PerformanceTier      PerformanceTier
	OptimizationHints    []string
}

// DefaultFrameContext targets 60 frames per second on a high tier machine.
func DefaultFrameContext() FrameContext {
	return FrameContext{
		FrameTimeBudget:      16670 * time.Microsecond,
		SystemLoadFactor:     0.5,
		PredictedEntityCount: 1000,
		PerformanceTier:      TierHigh,
	}
}

// UpdateFrame is handed to every system executed during one frame.
type UpdateFrame struct {
	DeltaTime float64
	World     *World
	Context   FrameContext
	Commands  *Commands

	mu *sync.Mutex
}

func newUpdateFrame(dt float64, world *World, fc FrameContext) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		World:     world,
		Context:   fc,
		Commands:  newCommands(),
		mu:        &sync.Mutex{},
	}
}

// Exclusive runs fn while holding the frame's world lock. Systems that run
// in dispatched parallel groups must wrap their World access in it.
func (f *UpdateFrame) Exclusive(fn func(w *World)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.World)
}
