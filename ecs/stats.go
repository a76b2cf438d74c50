package ecs

import "time"

// DefaultSmoothing is the weight of the newest sample in the rolling averages.
const DefaultSmoothing = 0.1

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	EarlyStops      uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
// AvgDuration and SuccessRate are exponential moving averages.
type SystemStats struct {
	Name           string
	Priority       Priority
	Resources      ResourceHints
	Parallel       bool
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
	SuccessRate    float64
	LastExecuted   time.Time
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	avgDuration    float64
	totalDuration  time.Duration
	lastDuration   time.Duration
	successRate    float64
	lastExecuted   time.Time
}

func newSystemStats() *systemStatsInternal {
	return &systemStatsInternal{
		minDuration: time.Duration(1<<63 - 1),
		successRate: 1,
	}
}

func (s *systemStatsInternal) record(d time.Duration, success bool, at time.Time, alpha float64) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	s.lastExecuted = at
	s.avgDuration = alpha*float64(d) + (1-alpha)*s.avgDuration

	s.minDuration = min(s.minDuration, d)
	s.maxDuration = max(s.maxDuration, d)

	outcome := 0.0
	if success {
		outcome = 1
	}
	s.successRate = alpha*outcome + (1-alpha)*s.successRate
}

func (s *systemStatsInternal) average() time.Duration {
	return time.Duration(s.avgDuration)
}

// FrameMetrics describes one executed frame.
type FrameMetrics struct {
	Frame        uint64
	Strategy     Strategy
	Planned      int
	Executed     int
	StoppedEarly bool
	DeltaTime    float64
	Duration     time.Duration
	Budget       time.Duration
	Commands     int
	Timestamp    time.Time
}

// DefaultHistorySize bounds the frame metrics history.
const DefaultHistorySize = 1000
