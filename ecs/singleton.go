package ecs

import (
	"maps"
	"reflect"
)

// Singleton provides access to a single value of type T owned by the World
// rather than by any entity. Use it for global simulation state or settings.
type Singleton[T any] struct {
	world *World
	ptr   *T
}

// NewSingleton returns an accessor for the world's T. If the world holds no T
// yet it is created from initializer, or the zero value.
// This guarantees the value exists after the call.
func NewSingleton[T any](world *World, initializer ...T) *Singleton[T] {
	var value T
	if len(initializer) > 0 {
		value = initializer[0]
	}
	return &Singleton[T]{world: world, ptr: singletonOf(world, value)}
}

// Init binds the Singleton to a world.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(world *World) {
	s.world = world
	s.ptr = nil
	s.updateCache()
}

// Get returns a pointer to the world's T, or nil if it was never set.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.updateCache()
	}
	return s.ptr
}

// Exists reports whether the world holds a T.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	if v, ok := s.world.singletons[reflect.TypeFor[T]()]; ok {
		s.ptr = v.(*T)
	}
}

// SetSingleton stores value as the world's T, replacing any previous one in place.
func SetSingleton[T any](world *World, value T) *T {
	if v, ok := world.singletons[reflect.TypeFor[T]()]; ok {
		ptr := v.(*T)
		*ptr = value
		return ptr
	}
	ptr := &value
	world.singletons[reflect.TypeFor[T]()] = ptr
	return ptr
}

// GetSingleton returns the world's T, or nil.
func GetSingleton[T any](world *World) *T {
	if v, ok := world.singletons[reflect.TypeFor[T]()]; ok {
		return v.(*T)
	}
	return nil
}

func singletonOf[T any](world *World, value T) *T {
	if ptr := GetSingleton[T](world); ptr != nil {
		return ptr
	}
	return SetSingleton(world, value)
}

// Singletons returns pointers to every singleton value, keyed by type.
func (w *World) Singletons() map[reflect.Type]any {
	return maps.Clone(w.singletons)
}
