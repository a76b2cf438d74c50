package ecs

import (
	"math"
	"slices"
	"sync/atomic"

	"github.com/kamstrup/intmap"
)

// entityRecord is the registry's view of one raw index.
type entityRecord struct {
	generation uint32
	alive      bool
	kinds      []ComponentKind
}

// entityRegistry allocates and recycles entity ids.
// Recycled indices are reused oldest-freed-first.
type entityRegistry struct {
	next     atomic.Uint64
	records  *intmap.Map[uint32, *entityRecord]
	recycled []uint32
	live     int
}

func newEntityRegistry() *entityRegistry {
	r := &entityRegistry{
		records:  intmap.New[uint32, *entityRecord](1024),
		recycled: make([]uint32, 0, 256),
	}
	r.next.Store(1)
	return r
}

// create returns a fresh id, reusing the oldest recycled index when one is available.
func (r *entityRegistry) create() EntityId {
	if len(r.recycled) > 0 {
		idx := r.recycled[0]
		r.recycled = r.recycled[1:]

		rec, _ := r.records.Get(idx)
		rec.generation++
		rec.alive = true
		rec.kinds = rec.kinds[:0]
		r.live++
		return NewEntityId(idx, rec.generation)
	}

	n := r.next.Add(1) - 1
	if n > math.MaxUint32 {
		panic("ecs: entity index space exhausted")
	}
	idx := uint32(n)
	r.records.Put(idx, &entityRecord{alive: true, kinds: make([]ComponentKind, 0, 4)})
	r.live++
	return NewEntityId(idx, 0)
}

func (r *entityRegistry) record(id EntityId) *entityRecord {
	if id.IsZero() {
		return nil
	}
	rec, ok := r.records.Get(id.Index())
	if !ok || !rec.alive || rec.generation != id.Generation() {
		return nil
	}
	return rec
}

// alive reports whether id refers to a live entity of the current generation.
func (r *entityRegistry) alive(id EntityId) bool {
	return r.record(id) != nil
}

// release marks id dead and queues its index for reuse.
// It returns the kinds the entity owned so the caller can clear their stores.
func (r *entityRegistry) release(id EntityId) ([]ComponentKind, bool) {
	rec := r.record(id)
	if rec == nil {
		return nil, false
	}

	kinds := slices.Clone(rec.kinds)
	rec.alive = false
	rec.kinds = rec.kinds[:0]
	r.recycled = append(r.recycled, id.Index())
	r.live--
	return kinds, true
}

func (r *entityRegistry) kinds(id EntityId) []ComponentKind {
	rec := r.record(id)
	if rec == nil {
		return nil
	}
	return rec.kinds
}

func (r *entityRegistry) hasKind(id EntityId, kind ComponentKind) bool {
	return slices.Contains(r.kinds(id), kind)
}

func (r *entityRegistry) addKind(id EntityId, kind ComponentKind) {
	rec := r.record(id)
	if rec == nil || slices.Contains(rec.kinds, kind) {
		return
	}
	rec.kinds = append(rec.kinds, kind)
}

func (r *entityRegistry) removeKind(id EntityId, kind ComponentKind) {
	rec := r.record(id)
	if rec == nil {
		return
	}
	rec.kinds = slices.DeleteFunc(rec.kinds, func(k ComponentKind) bool { return k == kind })
}

// trimRecycled drops the oldest half of the recycle queue once it grows past threshold.
// Dropped indices are retired for good. Returns how many were dropped.
func (r *entityRegistry) trimRecycled(threshold int) int {
	if len(r.recycled) <= threshold {
		return 0
	}

	drop := len(r.recycled) / 2
	r.recycled = slices.Clone(r.recycled[drop:])
	return drop
}

// each visits every live entity id.
func (r *entityRegistry) each(fn func(EntityId, []ComponentKind) bool) {
	for idx, rec := range r.records.All() {
		if !rec.alive {
			continue
		}
		if !fn(NewEntityId(idx, rec.generation), rec.kinds) {
			return
		}
	}
}

func (r *entityRegistry) len() int {
	return r.live
}

func (r *entityRegistry) recycledLen() int {
	return len(r.recycled)
}
