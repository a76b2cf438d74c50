package ecs_test

import (
	"fmt"

	"github.com/plus3/storm/ecs"
)

type CleanupSystem struct {
	Entities ecs.View[struct {
		Id ecs.EntityId
		*Position
		*Health
	}]
}

func (s *CleanupSystem) Execute(frame *ecs.UpdateFrame) {
	deadCount := 0
	for item := range s.Entities.Values() {
		if item.Health.Current <= 0 {
			frame.Commands.Delete(item.Id)
			deadCount++
		}
	}
	if deadCount > 0 {
		fmt.Printf("Queued %d dead entities for deletion\n", deadCount)
	}
}

// ExampleCommands demonstrates using command buffers to defer entity mutations.
// Commands are essential when modifying entities during iteration. The Scheduler
// flushes them once every system has run, so no system observes a half-applied frame.
func ExampleCommands() {
	world := ecs.NewWorld()
	ecs.RegisterComponent[Position](world)
	ecs.RegisterComponent[Health](world)

	world.Spawn(Position{X: 0, Y: 0}, Health{Current: 0, Max: 100})
	world.Spawn(Position{X: 10, Y: 10}, Health{Current: 50, Max: 100})
	world.Spawn(Position{X: 20, Y: 20}, Health{Current: 100, Max: 100})

	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&CleanupSystem{})

	metrics := scheduler.Once(1.0, ecs.DefaultFrameContext())

	fmt.Printf("Commands applied: %d\n", metrics.Commands)
	fmt.Printf("Remaining entities: %d\n", world.EntityCount())

	// Output:
	// Queued 1 dead entities for deletion
	// Commands applied: 1
	// Remaining entities: 2
}

type ShootTimer struct {
	TimeUntilShot float32
}

type ShootingSystem struct {
	Entities ecs.View[struct {
		*Position
		*Velocity
		*ShootTimer
	}]
}

func (s *ShootingSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		if item.ShootTimer.TimeUntilShot <= 0 {
			frame.Commands.Spawn(
				Position{X: item.Position.X, Y: item.Position.Y},
				Velocity{DX: item.Velocity.DX * 2, DY: item.Velocity.DY * 2},
			)
			fmt.Printf("Spawned projectile at (%.0f, %.0f)\n", item.Position.X, item.Position.Y)
			item.ShootTimer.TimeUntilShot = 10
		}
	}
}

// ExampleCommands_spawning shows using commands to spawn entities during iteration.
// Type-erased spawns need the component stores to exist, so the example registers them first.
func ExampleCommands_spawning() {
	world := ecs.NewWorld()
	ecs.RegisterComponent[Position](world)
	ecs.RegisterComponent[Velocity](world)
	ecs.RegisterComponent[ShootTimer](world)

	world.Spawn(
		Position{X: 10, Y: 10},
		Velocity{DX: 1, DY: 0},
		ShootTimer{TimeUntilShot: 0},
	)
	world.Spawn(
		Position{X: 20, Y: 20},
		Velocity{DX: 0, DY: 1},
		ShootTimer{TimeUntilShot: 5},
	)

	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&ShootingSystem{})

	scheduler.Once(1.0, ecs.DefaultFrameContext())

	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](world)
	fmt.Printf("Total entities with velocity: %d\n", view.Query().Len())

	// Output:
	// Spawned projectile at (10, 10)
	// Total entities with velocity: 3
}
