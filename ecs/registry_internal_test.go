package ecs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIndexSpace(t *testing.T) {
	t.Run("index zero is never issued", func(t *testing.T) {
		r := newEntityRegistry()
		id := r.create()
		assert.Equal(t, uint32(1), id.Index())
		assert.False(t, id.IsZero())
	})

	t.Run("the last index is issued once", func(t *testing.T) {
		r := newEntityRegistry()
		r.next.Store(math.MaxUint32)

		last := r.create()
		require.Equal(t, uint32(math.MaxUint32), last.Index())
		assert.False(t, last.IsZero())

		assert.PanicsWithValue(t, "ecs: entity index space exhausted", func() { r.create() })
		assert.Panics(t, func() { r.create() }, "the counter does not wrap back to zero")

		_, ok := r.release(last)
		require.True(t, ok)
		reused := r.create()
		assert.Equal(t, last.Index(), reused.Index(), "recycled indices are still available")
		assert.Equal(t, uint32(1), reused.Generation())
	})
}
