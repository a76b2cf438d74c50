package ecs

import "time"

// DefaultEventCapacity bounds the lifecycle event ring of a World.
const DefaultEventCapacity = 1024

// LifecycleEventType says what happened to an entity.
type LifecycleEventType uint8

const (
	EntityCreated LifecycleEventType = iota
	EntityDestroyed
)

func (t LifecycleEventType) String() string {
	switch t {
	case EntityCreated:
		return "created"
	case EntityDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// LifecycleEvent records a create or destroy. Events are kept for inspection only.
type LifecycleEvent struct {
	Entity    EntityId
	Type      LifecycleEventType
	Timestamp time.Time
}
