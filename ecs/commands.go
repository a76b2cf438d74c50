package ecs

import (
	"reflect"
	"sync"
)

// Commands buffers structural changes requested by systems. The scheduler
// flushes them into the World after every system of the frame has run.
type Commands struct {
	mu      sync.Mutex
	spawns  []spawnCommand
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// NewCommands returns an empty buffer, for use outside a scheduler.
func NewCommands() *Commands {
	return newCommands()
}

type spawnCommand struct {
	components []any
	apply      func(w *World, entity EntityId)
}

type addComponentCommand struct {
	entity EntityId
	apply  func(w *World) bool
}

type removeComponentCommand struct {
	entity EntityId
	kind   ComponentKind
}

// Defer queues a function to run after all structural commands are applied.
func (c *Commands) Defer(fn func()) {
	c.mu.Lock()
	c.defers = append(c.defers, fn)
	c.mu.Unlock()
}

// Spawn queues an entity creation with the given components. Components
// whose type has no registered store are dropped.
func (c *Commands) Spawn(components ...any) {
	c.mu.Lock()
	c.spawns = append(c.spawns, spawnCommand{components: components})
	c.mu.Unlock()
}

// SpawnWith queues an entity creation and calls init with the new id once it exists.
func (c *Commands) SpawnWith(init func(w *World, entity EntityId)) {
	c.mu.Lock()
	c.spawns = append(c.spawns, spawnCommand{apply: init})
	c.mu.Unlock()
}

// Delete queues an entity destruction.
func (c *Commands) Delete(entity EntityId) {
	c.mu.Lock()
	c.deletes = append(c.deletes, entity)
	c.mu.Unlock()
}

// AddComponent queues adding a component whose store is already registered.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.mu.Lock()
	c.adds = append(c.adds, addComponentCommand{
		entity: entity,
		apply:  func(w *World) bool { return w.AddAny(entity, component) },
	})
	c.mu.Unlock()
}

// Add queues adding a T to entity, creating the store if needed.
func Add[T any](c *Commands, entity EntityId, value T) {
	c.mu.Lock()
	c.adds = append(c.adds, addComponentCommand{
		entity: entity,
		apply: func(w *World) bool {
			_, _ = AddComponent(w, entity, value)
			return HasComponent[T](w, entity)
		},
	})
	c.mu.Unlock()
}

// RemoveComponent queues removing the entity's component of the given type.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.mu.Lock()
	c.removes = append(c.removes, removeComponentCommand{
		entity: entity,
		kind:   kindOfType(compType),
	})
	c.mu.Unlock()
}

// Remove queues removing the entity's T.
func Remove[T any](c *Commands, entity EntityId) {
	c.RemoveComponent(entity, reflect.TypeFor[T]())
}

// Len is the number of queued commands.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued command to world and resets the buffer.
// Deletes run first, then removes, adds, spawns and finally deferred functions.
// Removes and adds aimed at an entity deleted in the same flush are skipped.
func (c *Commands) Flush(world *World) {
	c.mu.Lock()
	spawns, deletes, adds, removes, defers := c.spawns, c.deletes, c.adds, c.removes, c.defers
	c.spawns, c.deletes, c.adds, c.removes, c.defers = nil, nil, nil, nil, nil
	c.mu.Unlock()

	deletedEntities := make(map[EntityId]bool, len(deletes))
	for _, entity := range deletes {
		world.DestroyEntity(entity)
		deletedEntities[entity] = true
	}

	for _, cmd := range removes {
		if !deletedEntities[cmd.entity] {
			world.RemoveKind(cmd.entity, cmd.kind)
		}
	}

	for _, cmd := range adds {
		if !deletedEntities[cmd.entity] {
			cmd.apply(world)
		}
	}

	for _, cmd := range spawns {
		entity := world.Spawn(cmd.components...)
		if cmd.apply != nil {
			cmd.apply(world, entity)
		}
	}

	for _, fn := range defers {
		fn()
	}
}
