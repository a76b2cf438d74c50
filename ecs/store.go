package ecs

import (
	"iter"
	"reflect"
	"slices"
	"time"

	"github.com/kamstrup/intmap"
)

// DefaultCompactInterval is the minimum time between two compaction passes of one store.
const DefaultCompactInterval = 5 * time.Second

// iComponentStore is the type-erased view of a Store used by the World.
type iComponentStore interface {
	Kind() ComponentKind
	Type() reflect.Type
	Has(entity EntityId) bool
	Len() int
	EntityIDs() []EntityId
	Compact() int
	Stats() StoreStats

	removeEntity(entity EntityId) bool
	getAny(entity EntityId) (any, bool)
	insertAny(entity EntityId, value any) bool
}

// StoreStats describes the occupancy of a single component store.
type StoreStats struct {
	Kind        ComponentKind
	Name        string
	Len         int
	Slots       int
	FreeSlots   int
	HighWater   int
	// Compactions counts the passes that reclaimed at least one slot.
	Compactions int
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	compactInterval time.Duration
	now             func() time.Time
}

// WithStoreCompactInterval sets how often Compact may actually run.
func WithStoreCompactInterval(d time.Duration) StoreOption {
	return func(c *storeConfig) { c.compactInterval = d }
}

// WithStoreClock overrides the time source used for compaction throttling.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) { c.now = now }
}

// Store keeps every component of type T in a dense slot array with an
// entity -> slot index. Removed slots are recycled before the array grows.
type Store[T any] struct {
	kind ComponentKind
	typ  reflect.Type

	slots     []T
	filled    []bool
	versions  []uint64
	freeSlots []int
	index     *intmap.Map[EntityId, int]
	highWater int

	compactInterval time.Duration
	lastCompact     time.Time
	compactions     int
	now             func() time.Time
}

// NewStore creates an empty store for components of type T.
func NewStore[T any](opts ...StoreOption) *Store[T] {
	cfg := storeConfig{
		compactInterval: DefaultCompactInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := reflect.TypeFor[T]()
	return &Store[T]{
		kind:            kindOfType(t),
		typ:             t,
		index:           intmap.New[EntityId, int](256),
		compactInterval: cfg.compactInterval,
		lastCompact:     cfg.now(),
		now:             cfg.now,
	}
}

func (s *Store[T]) Kind() ComponentKind { return s.kind }
func (s *Store[T]) Type() reflect.Type  { return s.typ }

// Insert stores value for entity. If the entity already owned a component of
// this type it is overwritten in place and the previous value is returned.
func (s *Store[T]) Insert(entity EntityId, value T) (T, bool) {
	if idx, ok := s.index.Get(entity); ok {
		prev := s.slots[idx]
		s.slots[idx] = value
		s.versions[idx]++
		return prev, true
	}

	var idx int
	if n := len(s.freeSlots); n > 0 {
		idx = s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
		s.slots[idx] = value
		s.filled[idx] = true
		s.versions[idx]++
	} else {
		idx = len(s.slots)
		s.slots = append(s.slots, value)
		s.filled = append(s.filled, true)
		// versions survive compaction so a re-appended slot never repeats one
		if idx < len(s.versions) {
			s.versions[idx]++
		} else {
			s.versions = append(s.versions, 1)
		}
	}

	s.highWater = max(s.highWater, len(s.slots))
	s.index.Put(entity, idx)

	var zero T
	return zero, false
}

// Get returns a copy of the entity's component.
func (s *Store[T]) Get(entity EntityId) (T, bool) {
	idx, ok := s.index.Get(entity)
	if !ok {
		var zero T
		return zero, false
	}
	return s.slots[idx], true
}

// GetMut returns a pointer into the slot, or nil. The slot version is bumped
// because the caller is assumed to write through the pointer. The pointer is
// only valid until the next Insert into this store.
func (s *Store[T]) GetMut(entity EntityId) *T {
	idx, ok := s.index.Get(entity)
	if !ok {
		return nil
	}
	s.versions[idx]++
	return &s.slots[idx]
}

func (s *Store[T]) Has(entity EntityId) bool {
	return s.index.Has(entity)
}

// Version returns the write counter of the entity's slot.
func (s *Store[T]) Version(entity EntityId) (uint64, bool) {
	idx, ok := s.index.Get(entity)
	if !ok {
		return 0, false
	}
	return s.versions[idx], true
}

// Remove deletes the entity's component and frees its slot for reuse.
// The dense array is not shrunk.
func (s *Store[T]) Remove(entity EntityId) (T, bool) {
	var zero T

	idx, ok := s.index.Get(entity)
	if !ok {
		return zero, false
	}
	s.index.Del(entity)

	prev := s.slots[idx]
	s.slots[idx] = zero
	s.filled[idx] = false
	s.freeSlots = append(s.freeSlots, idx)
	return prev, true
}

// EntityIDs lists the entities owning a component in this store.
// The order is unspecified and changes as entities come and go.
func (s *Store[T]) EntityIDs() []EntityId {
	return slices.Collect(s.index.Keys())
}

// All iterates over entities and pointers to their components.
func (s *Store[T]) All() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for entity, idx := range s.index.All() {
			if !yield(entity, &s.slots[idx]) {
				return
			}
		}
	}
}

// Len is the number of live components.
func (s *Store[T]) Len() int {
	return s.index.Len()
}

// Slots is the length of the dense array, live and free slots included.
func (s *Store[T]) Slots() int {
	return len(s.slots)
}

// FreeSlots is the number of slots waiting to be reused.
func (s *Store[T]) FreeSlots() int {
	return len(s.freeSlots)
}

// HighWater is the largest dense length this store ever reached.
func (s *Store[T]) HighWater() int {
	return s.highWater
}

// Compact shrinks the dense array by dropping free slots at its tail.
// Live slots never move, free slots in the middle stay available for reuse.
// Calls closer together than the compaction interval do nothing.
// Returns the number of slots reclaimed.
func (s *Store[T]) Compact() int {
	now := s.now()
	if now.Sub(s.lastCompact) < s.compactInterval {
		return 0
	}
	s.lastCompact = now

	if len(s.freeSlots) == 0 {
		return 0
	}

	end := len(s.slots)
	for end > 0 && !s.filled[end-1] {
		end--
	}
	reclaimed := len(s.slots) - end
	if reclaimed == 0 {
		return 0
	}

	s.compactions++
	clear(s.slots[end:])
	s.slots = s.slots[:end]
	s.filled = s.filled[:end]
	s.freeSlots = slices.DeleteFunc(s.freeSlots, func(idx int) bool { return idx >= end })
	return reclaimed
}

func (s *Store[T]) Stats() StoreStats {
	return StoreStats{
		Kind:        s.kind,
		Name:        s.typ.String(),
		Len:         s.Len(),
		Slots:       len(s.slots),
		FreeSlots:   len(s.freeSlots),
		HighWater:   s.highWater,
		Compactions: s.compactions,
	}
}

func (s *Store[T]) removeEntity(entity EntityId) bool {
	_, ok := s.Remove(entity)
	return ok
}

func (s *Store[T]) getAny(entity EntityId) (any, bool) {
	idx, ok := s.index.Get(entity)
	if !ok {
		return nil, false
	}
	return &s.slots[idx], true
}

func (s *Store[T]) insertAny(entity EntityId, value any) bool {
	v, ok := value.(T)
	if !ok {
		return false
	}
	s.Insert(entity, v)
	return true
}
