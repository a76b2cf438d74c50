package ecs_test

import (
	"sync"
	"time"

	"github.com/plus3/storm/ecs"
)

// Common test component types
type Position struct {
	X, Y float32
}

func (Position) PriorityHint() uint8          { return 200 }
func (Position) UpdateFrequencyHint() float32 { return 60 }
func (Position) PredictionEnabled() bool      { return true }

type Velocity struct {
	DX, DY float32
}

func (Velocity) PriorityHint() uint8 { return 180 }

type Health struct {
	Current int
	Max     int
}

func (Health) PriorityHint() uint8          { return 120 }
func (Health) UpdateFrequencyHint() float32 { return 10 }

type Name struct {
	Value string
}

type Score int32

// fakeClock is a manually advanced time source shared by a world and its scheduler.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestWorld(opts ...ecs.Option) (*ecs.World, *fakeClock) {
	clock := newFakeClock()
	world := ecs.NewWorld(append([]ecs.Option{ecs.WithClock(clock.Now)}, opts...)...)
	ecs.RegisterComponent[Position](world)
	ecs.RegisterComponent[Velocity](world)
	ecs.RegisterComponent[Health](world)
	ecs.RegisterComponent[Name](world)
	return world, clock
}
