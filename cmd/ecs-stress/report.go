package main

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/storm/ecs"
)

type Report struct {
	// Configuration
	Duration   time.Duration
	Entities   int
	Components int
	Systems    int
	Tier       string
	Budget     time.Duration

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	Strategies     map[string]int
	EarlyStops     int
	Commands       int
	Spawned        int
	Destroyed      int
	Optimizations  int
	SlotsReclaimed int
	IdsRetired     int
	World          ecs.WorldStats
	Scheduler      *ecs.SchedulerStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)
	s.P99 = sorted[(len(sorted)-1)*99/100]
}

func (r *Report) record(m ecs.FrameMetrics) {
	r.TotalUpdates++
	r.UpdateTime.Samples = append(r.UpdateTime.Samples, m.Duration)
	r.Strategies[m.Strategy.String()]++
	r.Commands += m.Commands
	if m.StoppedEarly {
		r.EarlyStops++
	}
}

// HitRate is the share of query cache lookups served from the cache.
func (r *Report) HitRate() float64 {
	total := r.World.Cache.Hits + r.World.Cache.Misses
	if total == 0 {
		return 0
	}
	return float64(r.World.Cache.Hits) / float64(total) * 100
}

// SlowestSystems returns up to n systems ordered by average duration.
func (r *Report) SlowestSystems(n int) []ecs.SystemStats {
	if r.Scheduler == nil {
		return nil
	}
	systems := slices.Clone(r.Scheduler.Systems)
	slices.SortFunc(systems, func(a, b ecs.SystemStats) int { return cmp.Compare(b.AvgDuration, a.AvgDuration) })
	return systems[:min(n, len(systems))]
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Generated Components:** {{.Components}}
- **Generated Systems:** {{.Systems}}
- **Performance Tier:** {{.Tier}} (budget {{.Budget}})

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}
  - **P99:** {{.UpdateTime.P99}}
- **Strategies:**{{range $name, $count := .Strategies}} {{$name}}={{$count}}{{end}}
- **Early Stops:** {{.EarlyStops}}
- **Commands Applied:** {{.Commands}}

## World
- **Live Entities:** {{.World.Entities}} ({{.World.Recycled}} recycled ids)
- **Spawned / Destroyed:** {{.Spawned}} / {{.Destroyed}}
- **Component Kinds:** {{.World.Kinds}}
- **Query Cache:** {{.World.Cache.Hits}} hits, {{.World.Cache.Misses}} misses ({{printf "%.1f" .HitRate}}%), {{.World.Cache.Invalidations}} invalidations
- **Optimizations:** {{.Optimizations}} runs, {{.SlotsReclaimed}} slots reclaimed, {{.IdsRetired}} ids retired

## Slowest Systems
{{range .SlowestSystems 5}}- {{.Name}} ({{.Priority}}, {{.Resources}}): avg {{.AvgDuration}}, max {{.MaxDuration}}, {{.ExecutionCount}} runs
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- Heap (MiB):     {{mb .MemStatsEnd.HeapAlloc}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
