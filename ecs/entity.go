package ecs

import "fmt"

// EntityId encodes the raw entity index (lower 32 bits) and its generation (upper 32 bits).
// Index 0 is never issued, so the zero EntityId is always invalid.
type EntityId uint64

// NewEntityId creates an EntityId from a raw index and a generation
func NewEntityId(index uint32, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index extracts the raw, reusable index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation from the entity ID.
// It is incremented every time the index is reused.
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// IsZero reports whether the id is the reserved invalid id
func (e EntityId) IsZero() bool {
	return e.Index() == 0
}

func (e EntityId) String() string {
	return fmt.Sprintf("%d#%d", e.Index(), e.Generation())
}
