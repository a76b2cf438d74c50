package ecs

import "time"

// Strategy is how a frame's systems are meant to be executed.
type Strategy uint8

const (
	StrategySequential Strategy = iota
	StrategyParallel
	StrategyAdaptive
)

func (s Strategy) String() string {
	switch s {
	case StrategySequential:
		return "sequential"
	case StrategyParallel:
		return "parallel"
	case StrategyAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// DefaultShortThreshold is the average duration under which a system counts as short running.
const DefaultShortThreshold = 5 * time.Millisecond

// ExecutionPlan is the outcome of planning one frame.
// Order always lists every system in priority order. Groups partitions Order
// into consecutive runs whose members may execute concurrently; it is nil for
// a sequential plan.
type ExecutionPlan struct {
	Strategy Strategy
	Order    []int
	Groups   [][]int
}

// Names resolves the plan's order to system names.
func (p ExecutionPlan) Names(s *Scheduler) []string {
	names := make([]string, len(p.Order))
	for i, idx := range p.Order {
		names[i] = s.systems[idx].name
	}
	return names
}

// chooseStrategy picks parallel on high tier hardware, adaptive when more than
// half of the systems are short running, sequential otherwise.
func (s *Scheduler) chooseStrategy(fc FrameContext) Strategy {
	if fc.PerformanceTier == TierHigh {
		return StrategyParallel
	}

	short := 0
	for _, sys := range s.systems {
		if s.isShort(sys) {
			short++
		}
	}
	if short > len(s.systems)/2 {
		return StrategyAdaptive
	}
	return StrategySequential
}

// isShort compares the smoothed duration against the threshold. The average
// starts at zero, so a system that never ran counts as short.
func (s *Scheduler) isShort(sys *systemEntry) bool {
	return sys.stats.average() < s.shortThreshold
}

// Plan builds the execution plan for a frame without running anything.
func (s *Scheduler) Plan(fc FrameContext) ExecutionPlan {
	plan := ExecutionPlan{
		Strategy: s.chooseStrategy(fc),
		Order:    make([]int, len(s.systems)),
	}
	for i := range s.systems {
		plan.Order[i] = i
	}
	if plan.Strategy == StrategySequential {
		return plan
	}

	// systems are kept sorted by priority, so each tier is a contiguous run
	for start := 0; start < len(s.systems); {
		end := start
		for end < len(s.systems) && s.systems[end].priority == s.systems[start].priority {
			end++
		}
		plan.Groups = append(plan.Groups, s.groupTier(plan.Strategy, start, end)...)
		start = end
	}
	return plan
}

// groupTier greedily packs the systems in [start, end) into conflict free groups.
// A group is contiguous in Order, so a system that cannot join the open group
// closes it.
func (s *Scheduler) groupTier(strategy Strategy, start, end int) [][]int {
	var groups [][]int
	var open []int

	flush := func() {
		if len(open) > 0 {
			groups = append(groups, open)
			open = nil
		}
	}

	for i := start; i < end; i++ {
		sys := s.systems[i]
		eligible := sys.parallel
		if strategy == StrategyAdaptive {
			eligible = eligible && s.isShort(sys)
		}
		if !eligible {
			flush()
			groups = append(groups, []int{i})
			continue
		}

		for _, member := range open {
			if s.conflicting(sys, s.systems[member]) {
				flush()
				break
			}
		}
		open = append(open, i)
	}
	flush()
	return groups
}

func (s *Scheduler) conflicting(a, b *systemEntry) bool {
	_, ok := a.conflicts[b.id]
	return ok
}
