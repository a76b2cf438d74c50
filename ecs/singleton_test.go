package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/storm/ecs"
)

type GameClock struct {
	Ticks int
}

type ClockSystem struct {
	Clock ecs.Singleton[GameClock]
}

func (s *ClockSystem) Execute(frame *ecs.UpdateFrame) {
	if c := s.Clock.Get(); c != nil {
		c.Ticks++
	}
}

func TestSingleton(t *testing.T) {
	t.Run("new singleton creates the value once", func(t *testing.T) {
		world := ecs.NewWorld()

		first := ecs.NewSingleton(world, GameClock{Ticks: 5})
		second := ecs.NewSingleton(world, GameClock{Ticks: 99})

		require.True(t, first.Exists())
		assert.Equal(t, 5, second.Get().Ticks)
		assert.Same(t, first.Get(), second.Get())
		assert.Len(t, world.Singletons(), 1)
	})

	t.Run("set replaces in place", func(t *testing.T) {
		world := ecs.NewWorld()
		ptr := ecs.SetSingleton(world, GameClock{Ticks: 1})
		ecs.SetSingleton(world, GameClock{Ticks: 2})

		assert.Equal(t, 2, ptr.Ticks)
		assert.Same(t, ptr, ecs.GetSingleton[GameClock](world))
	})

	t.Run("scheduler binds singleton fields", func(t *testing.T) {
		world := ecs.NewWorld()
		scheduler := ecs.NewScheduler(world)
		system := &ClockSystem{}
		scheduler.Register(system)

		assert.False(t, system.Clock.Exists())
		scheduler.Once(0, ecs.DefaultFrameContext())

		ecs.SetSingleton(world, GameClock{})
		scheduler.Once(0, ecs.DefaultFrameContext())
		scheduler.Once(0, ecs.DefaultFrameContext())

		assert.Equal(t, 2, ecs.GetSingleton[GameClock](world).Ticks)
	})
}
