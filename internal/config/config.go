package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/plus3/storm/ecs"
)

var (
	ErrUnknownFormat       = eris.New("unknown config format")
	ErrInvalidFrameContext = eris.New("invalid frame context")
	ErrInvalidScheduler    = eris.New("invalid scheduler config")
	ErrInvalidWorld        = eris.New("invalid world config")
)

type Config struct {
	World     WorldConfig     `toml:"world" yaml:"world"`
	Scheduler SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
	Frame     FrameConfig     `toml:"frame" yaml:"frame"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Stress    StressConfig    `toml:"stress" yaml:"stress"`
}

type WorldConfig struct {
	CompactInterval  time.Duration `toml:"compact_interval" yaml:"compact_interval"`
	QueryTTL         time.Duration `toml:"query_ttl" yaml:"query_ttl"`
	EventCapacity    int           `toml:"event_capacity" yaml:"event_capacity"`
	RecycleThreshold int           `toml:"recycle_threshold" yaml:"recycle_threshold"`
}

type SchedulerConfig struct {
	HistorySize    int           `toml:"history_size" yaml:"history_size"`
	DeadlineRatio  float64       `toml:"deadline_ratio" yaml:"deadline_ratio"`   // fraction of the remaining budget (0.0-1.0]
	Smoothing      float64       `toml:"smoothing" yaml:"smoothing"`             // EMA alpha (0.0-1.0]
	ShortThreshold time.Duration `toml:"short_threshold" yaml:"short_threshold"` // adaptive grouping cutoff
	Parallel       bool          `toml:"parallel" yaml:"parallel"`               // run parallel groups on goroutines
	MaxWorkers     int           `toml:"max_workers" yaml:"max_workers"`         // 0 = GOMAXPROCS
}

type FrameConfig struct {
	Budget            time.Duration `toml:"budget" yaml:"budget"`
	LoadFactor        float32       `toml:"load_factor" yaml:"load_factor"`
	PredictedEntities int           `toml:"predicted_entities" yaml:"predicted_entities"`
	Tier              string        `toml:"tier" yaml:"tier"` // "high", "medium", "low" or "battery"
	Hints             []string      `toml:"hints" yaml:"hints"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type StressConfig struct {
	Entities      int           `toml:"entities" yaml:"entities"`
	Duration      time.Duration `toml:"duration" yaml:"duration"`
	SpawnPerFrame int           `toml:"spawn_per_frame" yaml:"spawn_per_frame"`
	ChurnPercent  float64       `toml:"churn_percent" yaml:"churn_percent"` // share of entities destroyed per second
	OptimizeEvery int           `toml:"optimize_every" yaml:"optimize_every"`
	Seed          int64         `toml:"seed" yaml:"seed"`
}

// Load reads a TOML or YAML file, chosen by extension, on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or ".yml").
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrap(err, "toml")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrap(err, "yaml")
		}
	default:
		return nil, eris.Wrapf(ErrUnknownFormat, "extension %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	fc := ecs.DefaultFrameContext()
	return &Config{
		World: WorldConfig{
			CompactInterval:  ecs.DefaultCompactInterval,
			QueryTTL:         ecs.DefaultQueryTTL,
			EventCapacity:    ecs.DefaultEventCapacity,
			RecycleThreshold: ecs.DefaultRecycleThreshold,
		},
		Scheduler: SchedulerConfig{
			HistorySize:    ecs.DefaultHistorySize,
			DeadlineRatio:  ecs.DefaultDeadlineRatio,
			Smoothing:      ecs.DefaultSmoothing,
			ShortThreshold: ecs.DefaultShortThreshold,
		},
		Frame: FrameConfig{
			Budget:            fc.FrameTimeBudget,
			LoadFactor:        fc.SystemLoadFactor,
			PredictedEntities: fc.PredictedEntityCount,
			Tier:              fc.PerformanceTier.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Stress: StressConfig{
			Entities:      10000,
			Duration:      10 * time.Second,
			SpawnPerFrame: 50,
			ChurnPercent:  5,
			OptimizeEvery: 300,
			Seed:          1,
		},
	}
}

func (c *Config) Validate() error {
	if _, err := c.Frame.FrameContext(); err != nil {
		return err
	}
	if err := c.World.Validate(); err != nil {
		return err
	}
	return c.Scheduler.Validate()
}

func (w WorldConfig) Validate() error {
	switch {
	case w.EventCapacity <= 0:
		return eris.Wrapf(ErrInvalidWorld, "event_capacity %d must be positive", w.EventCapacity)
	case w.RecycleThreshold < 0:
		return eris.Wrapf(ErrInvalidWorld, "recycle_threshold %d is negative", w.RecycleThreshold)
	case w.CompactInterval < 0 || w.QueryTTL < 0:
		return eris.Wrap(ErrInvalidWorld, "intervals must not be negative")
	}
	return nil
}

func (s SchedulerConfig) Validate() error {
	switch {
	case s.HistorySize <= 0:
		return eris.Wrapf(ErrInvalidScheduler, "history_size %d must be positive", s.HistorySize)
	case s.DeadlineRatio <= 0 || s.DeadlineRatio > 1:
		return eris.Wrapf(ErrInvalidScheduler, "deadline_ratio %v outside (0, 1]", s.DeadlineRatio)
	case s.Smoothing <= 0 || s.Smoothing > 1:
		return eris.Wrapf(ErrInvalidScheduler, "smoothing %v outside (0, 1]", s.Smoothing)
	case s.MaxWorkers < 0:
		return eris.Wrapf(ErrInvalidScheduler, "max_workers %d is negative", s.MaxWorkers)
	}
	return nil
}

// FrameContext converts the section into an ecs.FrameContext.
func (f FrameConfig) FrameContext() (ecs.FrameContext, error) {
	tier, ok := ecs.ParsePerformanceTier(f.Tier)
	if !ok {
		return ecs.FrameContext{}, eris.Wrapf(ErrInvalidFrameContext, "unknown tier %q", f.Tier)
	}
	if f.LoadFactor < 0 || f.LoadFactor > 1 {
		return ecs.FrameContext{}, eris.Wrapf(ErrInvalidFrameContext, "load_factor %v outside [0, 1]", f.LoadFactor)
	}
	if f.PredictedEntities < 0 {
		return ecs.FrameContext{}, eris.Wrapf(ErrInvalidFrameContext, "predicted_entities %d is negative", f.PredictedEntities)
	}
	return ecs.FrameContext{
		FrameTimeBudget:      f.Budget,
		SystemLoadFactor:     f.LoadFactor,
		PredictedEntityCount: f.PredictedEntities,
		PerformanceTier:      tier,
		OptimizationHints:    f.Hints,
	}, nil
}

func (w WorldConfig) Options() []ecs.Option {
	return []ecs.Option{
		ecs.WithCompactInterval(w.CompactInterval),
		ecs.WithQueryTTL(w.QueryTTL),
		ecs.WithEventCapacity(w.EventCapacity),
		ecs.WithRecycleThreshold(w.RecycleThreshold),
	}
}

func (s SchedulerConfig) Options() []ecs.SchedulerOption {
	opts := []ecs.SchedulerOption{
		ecs.WithHistorySize(s.HistorySize),
		ecs.WithDeadlineRatio(s.DeadlineRatio),
		ecs.WithSmoothing(s.Smoothing),
		ecs.WithShortThreshold(s.ShortThreshold),
	}
	if s.Parallel {
		dispatcher := ecs.NewGroupDispatcher()
		if s.MaxWorkers > 0 {
			dispatcher.Limit = s.MaxWorkers
		}
		opts = append(opts, ecs.WithDispatcher(dispatcher))
	}
	return opts
}

// WorldOptions returns the world section as options, followed by extra.
func (c *Config) WorldOptions(extra ...ecs.Option) []ecs.Option {
	return append(c.World.Options(), extra...)
}

// SchedulerOptions returns the scheduler section as options, followed by extra.
func (c *Config) SchedulerOptions(extra ...ecs.SchedulerOption) []ecs.SchedulerOption {
	return append(c.Scheduler.Options(), extra...)
}
