package debugui

import (
	"fmt"
	"slices"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/AllenDang/cimgui-go/implot"
	"github.com/plus3/storm/ecs"
)

func NewPerformanceStatsComponent(historyFrames int) PerformanceStatsComponent {
	historyFrames = max(historyFrames, 1)
	return PerformanceStatsComponent{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		systemLatency: make(map[string][]float32),
	}
}

// RecordLatency appends each system's average duration, in milliseconds, to its series.
func (ps *PerformanceStatsComponent) RecordLatency(systems []ecs.SystemStats) {
	for _, sys := range systems {
		series, ok := ps.systemLatency[sys.Name]
		if !ok {
			series = make([]float32, ps.historyFrames)
			ps.systemLatency[sys.Name] = series
		}
		series[ps.latencyIndex] = float32(sys.AvgDuration.Microseconds()) / 1000.0
	}
	ps.latencyIndex = (ps.latencyIndex + 1) % ps.historyFrames
}

// LatencySeries returns the named system's samples, oldest first.
func (ps *PerformanceStatsComponent) LatencySeries(name string) []float32 {
	series, ok := ps.systemLatency[name]
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(series))
	out = append(out, series[ps.latencyIndex:]...)
	return append(out, series[:ps.latencyIndex]...)
}

// Record adds a frame time sample in milliseconds.
func (ps *PerformanceStatsComponent) Record(ms float32) {
	ps.frameHistory[ps.frameIndex] = ms
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// Average returns the mean of the sample window.
func (ps *PerformanceStatsComponent) Average() float32 {
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.historyFrames)
}

func (ps *PerformanceStatsComponent) Render(world *ecs.World, scheduler *ecs.Scheduler, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Record(deltaTime * 1000.0)

	worldStats := world.Stats()
	imgui.Text(fmt.Sprintf("World: %s", worldStats.ID))
	imgui.Text(fmt.Sprintf("Total Entities: %d", worldStats.Entities))
	imgui.Text(fmt.Sprintf("Component Kinds: %d", worldStats.Kinds))
	imgui.Text(fmt.Sprintf("Singletons: %d", worldStats.Singletons))

	avg := ps.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if scheduler == nil {
		imgui.End()
		return
	}

	stats := scheduler.GetStats()
	plan := scheduler.LastPlan()
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Frames: %d, early stops: %d", stats.Frames, stats.EarlyStops))
	imgui.Text(fmt.Sprintf("Strategy: %s (%d groups)", plan.Strategy, len(plan.Groups)))

	if history := scheduler.History(); len(history) > 0 {
		last := history[len(history)-1]
		imgui.Text(fmt.Sprintf("Last frame: %d/%d systems in %s of %s, %d commands",
			last.Executed, last.Planned, last.Duration, last.Budget, last.Commands))

		durations := make([]float32, len(history))
		for i, m := range history {
			durations[i] = float32(m.Duration) / float32(time.Millisecond)
		}
		imgui.PlotLinesFloatPtr("##schedulerframes", &durations[0], int32(len(durations)))
	}

	if imgui.TreeNodeStr("System Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemStatsTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Priority")
			imgui.TableSetupColumn("Resources")
			imgui.TableSetupColumn("Avg (ms)")
			imgui.TableSetupColumn("Max (ms)")
			imgui.TableSetupColumn("Success")
			imgui.TableHeadersRow()

			for _, sys := range stats.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(sys.Name)
				imgui.TableNextColumn()
				imgui.Text(sys.Priority.String())
				imgui.TableNextColumn()
				imgui.Text(sys.Resources.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.3f", float64(sys.AvgDuration.Microseconds())/1000.0))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.3f", float64(sys.MaxDuration.Microseconds())/1000.0))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.0f%%", sys.SuccessRate*100))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	ps.RecordLatency(stats.Systems)
	if imgui.TreeNodeStr("System Latency") {
		names := make([]string, 0, len(ps.systemLatency))
		for name := range ps.systemLatency {
			names = append(names, name)
		}
		slices.Sort(names)

		if implot.BeginPlotV("System Latency", imgui.NewVec2(-1, 250), 0) {
			implot.SetupAxesV("Frame", "Time (ms)", 0, implot.AxisFlagsAutoFit)
			for _, name := range names {
				samples := ps.LatencySeries(name)
				implot.PlotLineFloatPtrInt(name, &samples[0], int32(len(samples)))
			}
			implot.EndPlot()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for t := range world.Singletons() {
			imgui.BulletText(t.String())
		}
		imgui.TreePop()
	}

	imgui.End()
}

// FrameTimer measures wall time between calls to GetDeltaTime.
type FrameTimer struct {
	now           func() time.Time
	lastFrameTime time.Time
}

func NewFrameTimer(now func() time.Time) *FrameTimer {
	if now == nil {
		now = time.Now
	}
	return &FrameTimer{now: now, lastFrameTime: now()}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := ft.now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
