package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// iface mirrors the runtime layout of an interface value.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// View represents a query for entities with a specific combination of components.
// The type T should be a struct with embedded pointer fields for each component type.
// Named fields can be marked as optional using the `ecs:"optional"` struct tag.
// A field of type EntityId is filled with the entity being visited.
type View[T any] struct {
	world       *World
	types       []reflect.Type
	kinds       []ComponentKind
	optional    []bool
	fieldOffset []uintptr

	required    []ComponentKind
	entityField int
}

// NewView creates a new view for the given struct type.
func NewView[T any](world *World) *View[T] {
	v := &View[T]{world: world}
	v.parse()
	return v
}

// Init binds the View to a world.
// This is called automatically by the Scheduler during system registration.
func (v *View[T]) Init(world *World) {
	v.world = world
	if v.types == nil {
		v.parse()
	}
}

func (v *View[T]) parse() {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v.entityField = -1
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == reflect.TypeFor[EntityId]() {
			v.entityField = int(field.Offset)
			continue
		}
		if fieldType.Kind() != reflect.Pointer {
			panic("View struct fields must be pointer types")
		}

		// Embedded fields are always required
		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}

		componentType := fieldType.Elem()
		kind := kindOfType(componentType)
		v.types = append(v.types, componentType)
		v.kinds = append(v.kinds, kind)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required = append(v.required, kind)
		}
	}
}

// Kinds returns the kinds an entity must own to match the view.
func (v *View[T]) Kinds() []ComponentKind {
	return v.required
}

// Fill populates the provided struct pointer with component data for the given entity.
// Returns false if the entity is dead or missing any required component.
// Optional components are set to nil if not present.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.world.registry.alive(id) {
		return false
	}

	structPtr := unsafe.Pointer(ptr)
	for i, kind := range v.kinds {
		fieldPtr := unsafe.Add(structPtr, v.fieldOffset[i])

		var component any
		if store, ok := v.world.stores.Get(kind); ok {
			component, _ = store.getAny(id)
		}
		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}
		// getAny hands out a *T, so the interface data word is the component address
		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	if v.entityField >= 0 {
		*(*EntityId)(unsafe.Add(structPtr, v.entityField)) = id
	}
	return true
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// Query returns the entities owning every required kind. The result is cached
// under the combined key of those kinds and invalidated by a change to any of them.
func (v *View[T]) Query() QueryResult {
	w := v.world
	if len(v.required) == 0 {
		return NewQueryResult(w.Entities(), w.now())
	}

	key := KeyOf(v.required...)
	if result, ok := w.cache.Get(key); ok {
		return result
	}

	// drive the scan from the smallest required store
	var smallest iComponentStore
	for _, kind := range v.required {
		store, ok := w.stores.Get(kind)
		if !ok {
			result := NewQueryResult(nil, w.now(), v.required...)
			w.cache.Store(result)
			return result
		}
		if smallest == nil || store.Len() < smallest.Len() {
			smallest = store
		}
	}

	candidates := smallest.EntityIDs()
	matched := candidates[:0]
	for _, entity := range candidates {
		if v.matches(entity) {
			matched = append(matched, entity)
		}
	}

	result := NewQueryResult(matched, w.now(), v.required...)
	w.cache.Store(result)
	return result
}

func (v *View[T]) matches(entity EntityId) bool {
	for _, kind := range v.required {
		store, ok := v.world.stores.Get(kind)
		if !ok || !store.Has(entity) {
			return false
		}
	}
	return true
}

// Iter returns an iterator over all entities that have all the required components.
// Optional components are set to nil if not present.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		result := v.Query()
		var item T
		for _, entity := range result.entities {
			if !v.Fill(entity, &item) {
				continue
			}
			if !yield(entity, item) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity with components copied out of the view struct.
// The components' stores must exist, see RegisterComponent.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, componentType := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(componentType, componentPtr).Elem().Interface())
	}

	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}
	return v.world.Spawn(components...)
}
