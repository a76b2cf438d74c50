package ecs

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultDeadlineRatio is the share of the remaining frame budget a low priority
// system may use before the rest of the frame is skipped.
const DefaultDeadlineRatio = 0.8

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

func WithSchedulerLogger(logger *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// WithSchedulerClock overrides the time source used to measure systems.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

func WithHistorySize(n int) SchedulerOption {
	return func(s *Scheduler) { s.history = newRing[FrameMetrics](n) }
}

func WithDeadlineRatio(r float64) SchedulerOption {
	return func(s *Scheduler) { s.deadlineRatio = r }
}

// WithSmoothing sets the weight of the newest sample in the rolling averages.
func WithSmoothing(alpha float64) SchedulerOption {
	return func(s *Scheduler) { s.alpha = alpha }
}

func WithShortThreshold(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.shortThreshold = d }
}

// WithDispatcher makes the scheduler run parallel groups through d.
// Without one, every plan is executed one system at a time.
func WithDispatcher(d Dispatcher) SchedulerOption {
	return func(s *Scheduler) { s.dispatcher = d }
}

type systemEntry struct {
	systemDescriptor
	id        int
	system    System
	stats     *systemStatsInternal
	conflicts map[int]struct{}
}

// Scheduler manages and executes systems in priority order.
type Scheduler struct {
	world      *World
	logger     *zap.Logger
	now        func() time.Time
	dispatcher Dispatcher

	systems []*systemEntry
	nextID  int

	history        *ring[FrameMetrics]
	lastPlan       ExecutionPlan
	earlyStops     uint64
	deadlineRatio  float64
	alpha          float64
	shortThreshold time.Duration
}

// NewScheduler creates a new scheduler for the given world.
func NewScheduler(world *World, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		world:          world,
		logger:         world.Logger(),
		now:            world.now,
		history:        newRing[FrameMetrics](DefaultHistorySize),
		deadlineRatio:  DefaultDeadlineRatio,
		alpha:          DefaultSmoothing,
		shortThreshold: DefaultShortThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) World() *World { return s.world }

// Register adds a system behind every registered system of the same or higher
// priority, binds its View and Singleton fields, and records resource conflicts
// with the systems already registered.
func (s *Scheduler) Register(system System, opts ...SystemOption) {
	if system == nil {
		panic("ecs: cannot register a nil system")
	}
	s.initializeFields(system)

	entry := &systemEntry{
		systemDescriptor: s.describe(system, opts),
		id:               s.nextID,
		system:           system,
		stats:            newSystemStats(),
		conflicts:        make(map[int]struct{}),
	}
	s.nextID++

	for _, other := range s.systems {
		if !entry.resources.Overlaps(other.resources) {
			continue
		}
		entry.conflicts[other.id] = struct{}{}
		other.conflicts[entry.id] = struct{}{}
		s.logger.Debug("resource conflict",
			zap.String("system", entry.name),
			zap.String("with", other.name),
			zap.Stringer("resources", entry.resources))
	}

	pos := len(s.systems)
	for i, other := range s.systems {
		if other.priority > entry.priority {
			pos = i
			break
		}
	}
	s.systems = slices.Insert(s.systems, pos, entry)
}

func (s *Scheduler) describe(system System, opts []SystemOption) systemDescriptor {
	desc := systemDescriptor{priority: PriorityNormal}
	if named, ok := system.(NamedSystem); ok {
		desc.name = named.Name()
	}
	if p, ok := system.(PrioritizedSystem); ok {
		desc.priority = p.Priority()
	}
	if h, ok := system.(ResourceHintedSystem); ok {
		desc.resources = h.ResourceHints()
	}
	if p, ok := system.(ParallelSystem); ok {
		desc.parallel = p.Parallel()
	}
	for _, opt := range opts {
		opt(&desc)
	}

	if desc.name == "" {
		systemType := reflect.TypeOf(system)
		if systemType.Kind() == reflect.Pointer {
			systemType = systemType.Elem()
		}
		desc.name = systemType.Name()
	}
	base := desc.name
	for n := 2; s.indexOf(desc.name) >= 0; n++ {
		desc.name = fmt.Sprintf("%s#%d", base, n)
	}
	return desc
}

func (s *Scheduler) initializeFields(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Pointer {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		typeName := field.Type().Name()
		if !strings.HasPrefix(typeName, "View[") && !strings.HasPrefix(typeName, "Singleton[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{reflect.ValueOf(s.world)})
	}
}

func (s *Scheduler) indexOf(name string) int {
	return slices.IndexFunc(s.systems, func(e *systemEntry) bool { return e.name == name })
}

// Systems returns the registered system names in execution order.
func (s *Scheduler) Systems() []string {
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = sys.name
	}
	return names
}

// Conflicts lists the systems that share a resource with the named one.
func (s *Scheduler) Conflicts(name string) []string {
	idx := s.indexOf(name)
	if idx < 0 {
		return nil
	}
	var names []string
	for _, other := range s.systems {
		if _, ok := s.systems[idx].conflicts[other.id]; ok {
			names = append(names, other.name)
		}
	}
	return names
}

// Once plans and executes a single frame, then applies the commands the
// systems queued.
func (s *Scheduler) Once(dt float64, fc FrameContext) FrameMetrics {
	plan := s.Plan(fc)
	s.lastPlan = plan

	frame := newUpdateFrame(dt, s.world, fc)
	start := s.now()

	var executed int
	var stopped bool
	if s.dispatcher != nil && plan.Groups != nil {
		executed, stopped = s.executeGroups(plan, frame, start)
	} else {
		executed, stopped = s.executeSequential(plan, frame, start)
	}
	if stopped {
		s.earlyStops++
	}

	commands := frame.Commands.Len()
	frame.Commands.Flush(s.world)

	metrics := FrameMetrics{
		Frame:        s.history.total + 1,
		Strategy:     plan.Strategy,
		Planned:      len(plan.Order),
		Executed:     executed,
		StoppedEarly: stopped,
		DeltaTime:    dt,
		Duration:     s.now().Sub(start),
		Budget:       fc.FrameTimeBudget,
		Commands:     commands,
		Timestamp:    start,
	}
	s.history.push(metrics)
	return metrics
}

func (s *Scheduler) executeSequential(plan ExecutionPlan, frame *UpdateFrame, start time.Time) (int, bool) {
	for n, idx := range plan.Order {
		sys := s.systems[idx]
		remaining := frame.Context.FrameTimeBudget - s.now().Sub(start)

		d, err := s.runSystem(sys, frame)
		sys.stats.record(d, err == nil, s.now(), s.alpha)
		if err != nil {
			s.logger.Error("system failed", zap.String("system", sys.name), zap.Error(err))
		}

		if s.overDeadline(sys, d, remaining, frame.Context) && n < len(plan.Order)-1 {
			s.logger.Debug("frame budget exhausted",
				zap.String("system", sys.name),
				zap.Duration("took", d),
				zap.Duration("remaining", remaining),
				zap.Int("skipped", len(plan.Order)-n-1))
			return n + 1, true
		}
	}
	return len(plan.Order), false
}

func (s *Scheduler) executeGroups(plan ExecutionPlan, frame *UpdateFrame, start time.Time) (int, bool) {
	executed := 0
	for g, group := range plan.Groups {
		remaining := frame.Context.FrameTimeBudget - s.now().Sub(start)

		durations := make([]time.Duration, len(group))
		failures := make([]error, len(group))
		tasks := make([]func() error, len(group))
		for i, idx := range group {
			tasks[i] = func() error {
				durations[i], failures[i] = s.runSystem(s.systems[idx], frame)
				return failures[i]
			}
		}
		if err := s.dispatcher.Dispatch(tasks); err != nil {
			s.logger.Error("parallel group failed", zap.Int("group", g), zap.Error(err))
		}

		stop := false
		for i, idx := range group {
			sys := s.systems[idx]
			sys.stats.record(durations[i], failures[i] == nil, s.now(), s.alpha)
			stop = stop || s.overDeadline(sys, durations[i], remaining, frame.Context)
		}
		executed += len(group)

		if stop && g < len(plan.Groups)-1 {
			s.logger.Debug("frame budget exhausted",
				zap.Int("group", g),
				zap.Duration("remaining", remaining),
				zap.Int("skipped", len(plan.Order)-executed))
			return executed, true
		}
	}
	return executed, false
}

// overDeadline reports whether a low urgency system used too much of what was
// left of the budget when it started. A non-positive budget never expires.
func (s *Scheduler) overDeadline(sys *systemEntry, d, remaining time.Duration, fc FrameContext) bool {
	if fc.FrameTimeBudget <= 0 || sys.priority < PriorityLow {
		return false
	}
	return float64(d) > s.deadlineRatio*float64(remaining)
}

// runSystem executes one system. A panicking system counts as a failed execution.
func (s *Scheduler) runSystem(sys *systemEntry, frame *UpdateFrame) (d time.Duration, err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("system %s panicked: %v", sys.name, r)
		}
		d = s.now().Sub(start)
	}()
	sys.system.Execute(frame)
	return 0, nil
}

// Run executes frames at the given interval until the context is cancelled.
// contextFn supplies the frame context of every frame; nil uses DefaultFrameContext.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, contextFn func() FrameContext) {
	if contextFn == nil {
		contextFn = DefaultFrameContext
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt, contextFn())
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.history.total,
		EarlyStops:  s.earlyStops,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, sys := range s.systems {
		internal := sys.stats
		minDuration := internal.minDuration
		if internal.executionCount == 0 {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Priority:       sys.priority,
			Resources:      sys.resources,
			Parallel:       sys.parallel,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    internal.average(),
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
			SuccessRate:    internal.successRate,
			LastExecuted:   internal.lastExecuted,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}

// History returns the recorded frame metrics, oldest first.
func (s *Scheduler) History() []FrameMetrics {
	return s.history.snapshot()
}

// LastPlan is the plan of the most recent frame.
func (s *Scheduler) LastPlan() ExecutionPlan {
	return s.lastPlan
}
