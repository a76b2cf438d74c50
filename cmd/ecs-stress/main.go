package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/plus3/storm/ecs"
	"github.com/plus3/storm/internal/config"
	"github.com/plus3/storm/internal/logging"
)

//go:generate go run ../ecs-stress-gen -components 8 -systems 6 -out generated.go

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML config file.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu or mem.")
	tier := flag.String("tier", "", "Override the performance tier: high, medium, low or battery.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "tier":
			cfg.Frame.Tier = *tier
		}
	})

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		log.Fatalf("Unknown profile mode %q", *profileMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	report, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("stress test failed", zap.Error(err))
	}
	report.GCPauseMetrics = *gcPauseMetrics

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// run populates a world from cfg and drives its scheduler until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Report, error) {
	fc, err := cfg.Frame.FrameContext()
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld(cfg.WorldOptions(ecs.WithLogger(logger))...)
	RegisterAllGeneratedComponents(world)
	scheduler := ecs.NewScheduler(world, cfg.SchedulerOptions(ecs.WithSchedulerLogger(logger))...)
	RegisterAllGeneratedSystems(scheduler)

	rng := rand.New(rand.NewSource(cfg.Stress.Seed))
	churn := &churnSystem{
		rng:            rng,
		spawnPerFrame:  cfg.Stress.SpawnPerFrame,
		churnPerSecond: float64(cfg.Stress.Entities) * cfg.Stress.ChurnPercent / 100,
	}
	scheduler.Register(churn, ecs.WithName("churn"), ecs.WithPriority(ecs.PriorityCritical))

	logger.Info("populating world", zap.Int("entities", cfg.Stress.Entities))
	for range cfg.Stress.Entities {
		churn.live = append(churn.live, SpawnRandomEntity(world, rng, rng.Intn(5)+1))
	}

	report := &Report{
		Duration:   cfg.Stress.Duration,
		Entities:   cfg.Stress.Entities,
		Components: componentCount,
		Systems:    systemCount,
		Tier:       fc.PerformanceTier.String(),
		Budget:     fc.FrameTimeBudget,
		Strategies: make(map[string]int),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", zap.Duration("duration", cfg.Stress.Duration), zap.Stringer("tier", fc.PerformanceTier))
	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			fc.PredictedEntityCount = world.EntityCount()
			metrics := scheduler.Once(deltaTime.Seconds(), fc)
			report.record(metrics)

			if cfg.Stress.OptimizeEvery > 0 && metrics.Frame%uint64(cfg.Stress.OptimizeEvery) == 0 {
				opt := world.Optimize(fc)
				report.Optimizations++
				report.SlotsReclaimed += opt.SlotsReclaimed
				report.IdsRetired += opt.IdsRetired
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Spawned = churn.spawned
	report.Destroyed = churn.destroyed
	report.World = world.Stats()
	report.Scheduler = scheduler.GetStats()
	logger.Info("simulation finished", zap.Int64("updates", report.TotalUpdates), zap.Int("entities", report.World.Entities))
	return report, nil
}

// churnSystem destroys random entities at a steady rate and spawns new ones
// through the frame's command buffer.
type churnSystem struct {
	rng            *rand.Rand
	live           []ecs.EntityId
	spawnPerFrame  int
	churnPerSecond float64
	carry          float64

	spawned   int
	destroyed int
}

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) {
	s.carry += s.churnPerSecond * frame.DeltaTime
	for ; s.carry >= 1 && len(s.live) > 0; s.carry-- {
		i := s.rng.Intn(len(s.live))
		frame.Commands.Delete(s.live[i])
		s.live[i] = s.live[len(s.live)-1]
		s.live = s.live[:len(s.live)-1]
		s.destroyed++
	}

	for range s.spawnPerFrame {
		components := RandomComponents(s.rng, s.rng.Intn(5)+1)
		frame.Commands.SpawnWith(func(w *ecs.World, entity ecs.EntityId) {
			for _, c := range components {
				w.AddAny(entity, c)
			}
			s.live = append(s.live, entity)
		})
		s.spawned++
	}
}
