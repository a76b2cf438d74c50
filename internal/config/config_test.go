package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/storm/ecs"
	"github.com/plus3/storm/internal/config"
)

const tomlConfig = `
[world]
query_ttl = "250ms"
event_capacity = 64

[scheduler]
deadline_ratio = 0.5
parallel = true
max_workers = 2

[frame]
budget = "33ms"
tier = "battery"
hints = ["compact"]

[logging]
level = "debug"
format = "json"
`

const yamlConfig = `
world:
  compact_interval: 2s
scheduler:
  history_size: 10
  short_threshold: 1ms
frame:
  tier: medium
  load_factor: 0.9
stress:
  entities: 500
  seed: 42
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("toml overlays defaults", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "storm.toml", tomlConfig))
		require.NoError(t, err)

		assert.Equal(t, 250*time.Millisecond, cfg.World.QueryTTL)
		assert.Equal(t, 64, cfg.World.EventCapacity)
		assert.Equal(t, ecs.DefaultCompactInterval, cfg.World.CompactInterval)
		assert.Equal(t, 0.5, cfg.Scheduler.DeadlineRatio)
		assert.Equal(t, ecs.DefaultSmoothing, cfg.Scheduler.Smoothing)
		assert.True(t, cfg.Scheduler.Parallel)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)

		fc, err := cfg.Frame.FrameContext()
		require.NoError(t, err)
		assert.Equal(t, 33*time.Millisecond, fc.FrameTimeBudget)
		assert.Equal(t, ecs.TierBattery, fc.PerformanceTier)
		assert.Equal(t, []string{"compact"}, fc.OptimizationHints)
		assert.Equal(t, ecs.DefaultFrameContext().PredictedEntityCount, fc.PredictedEntityCount)
	})

	t.Run("yaml overlays defaults", func(t *testing.T) {
		cfg, err := config.Load(writeFile(t, "storm.yml", yamlConfig))
		require.NoError(t, err)

		assert.Equal(t, 2*time.Second, cfg.World.CompactInterval)
		assert.Equal(t, 10, cfg.Scheduler.HistorySize)
		assert.Equal(t, time.Millisecond, cfg.Scheduler.ShortThreshold)
		assert.Equal(t, "medium", cfg.Frame.Tier)
		assert.InDelta(t, 0.9, cfg.Frame.LoadFactor, 1e-6)
		assert.Equal(t, 500, cfg.Stress.Entities)
		assert.Equal(t, int64(42), cfg.Stress.Seed)
		assert.Equal(t, config.Default().Stress.Duration, cfg.Stress.Duration)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "storm.ini", "x=1"))
		assert.True(t, eris.Is(err, config.ErrUnknownFormat))
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "storm.toml", "[world\n"))
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := config.Parse([]byte("[frame]\ntier = \"turbo\"\n"), ".toml")
		assert.True(t, eris.Is(err, config.ErrInvalidFrameContext))

		_, err = config.Parse([]byte("scheduler:\n  smoothing: 1.5\n"), ".yaml")
		assert.True(t, eris.Is(err, config.ErrInvalidScheduler))

		_, err = config.Parse([]byte("world:\n  event_capacity: 0\n"), ".yaml")
		assert.True(t, eris.Is(err, config.ErrInvalidWorld))
	})
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	fc, err := cfg.Frame.FrameContext()
	require.NoError(t, err)
	assert.Equal(t, ecs.DefaultFrameContext(), fc)
}

func TestFrameContext(t *testing.T) {
	tests := []struct {
		name  string
		frame config.FrameConfig
		ok    bool
	}{
		{"valid", config.FrameConfig{Budget: time.Millisecond, LoadFactor: 1, Tier: "low"}, true},
		{"zero budget disables deadline", config.FrameConfig{Tier: "high"}, true},
		{"unknown tier", config.FrameConfig{Tier: ""}, false},
		{"load above one", config.FrameConfig{LoadFactor: 1.1, Tier: "high"}, false},
		{"negative entities", config.FrameConfig{PredictedEntities: -1, Tier: "high"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.frame.FrameContext()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, eris.Is(err, config.ErrInvalidFrameContext))
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := config.Default()
	cfg.World.EventCapacity = 2
	cfg.Scheduler.HistorySize = 3
	cfg.Scheduler.Parallel = true

	world := ecs.NewWorld(cfg.WorldOptions()...)
	for range 5 {
		world.CreateEntity()
	}
	assert.Len(t, world.Events(), 2)

	scheduler := ecs.NewScheduler(world, cfg.SchedulerOptions()...)
	scheduler.Register(ecs.SystemFunc(func(*ecs.UpdateFrame) {}), ecs.WithName("noop"))
	for range 5 {
		scheduler.Once(0, ecs.DefaultFrameContext())
	}
	assert.Len(t, scheduler.History(), 3)
}
