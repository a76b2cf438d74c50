package ecs_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/storm/ecs"
)

func TestKeyOf(t *testing.T) {
	pos, vel, hp := ecs.KindOf[Position](), ecs.KindOf[Velocity](), ecs.KindOf[Health]()

	assert.Equal(t, ecs.QueryKey(pos), ecs.KeyOf(pos))
	assert.Equal(t, ecs.KeyOf(pos, vel), ecs.KeyOf(vel, pos))
	assert.Equal(t, ecs.KeyOf(pos, vel, hp), ecs.KeyOf(hp, pos, vel))
	assert.NotEqual(t, ecs.KeyOf(pos, vel), ecs.KeyOf(pos, hp))
}

func TestQueryCache(t *testing.T) {
	pos, vel := ecs.KindOf[Position](), ecs.KindOf[Velocity]()
	a, b := ecs.NewEntityId(1, 0), ecs.NewEntityId(2, 0)

	t.Run("serves fresh results only", func(t *testing.T) {
		clock := newFakeClock()
		cache := ecs.NewQueryCache(time.Second, clock.Now)
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a, b}, clock.Now(), pos))

		result, ok := cache.Get(ecs.KeyOf(pos))
		require.True(t, ok)
		assert.Equal(t, []ecs.EntityId{a, b}, result.Entities())
		assert.Equal(t, pos, result.Kind())

		clock.Advance(999 * time.Millisecond)
		_, ok = cache.Get(ecs.KeyOf(pos))
		assert.True(t, ok)

		clock.Advance(time.Millisecond)
		_, ok = cache.Get(ecs.KeyOf(pos))
		assert.False(t, ok, "expired results are never served")
		assert.Equal(t, 0, cache.Len())

		stats := cache.Stats()
		assert.Equal(t, int64(2), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
	})

	t.Run("invalidate kind drops linked entries", func(t *testing.T) {
		clock := newFakeClock()
		cache := ecs.NewQueryCache(time.Second, clock.Now)
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a}, clock.Now(), pos))
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{b}, clock.Now(), vel))
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a}, clock.Now(), pos, vel))
		require.Equal(t, 3, cache.Len())

		cache.InvalidateKind(vel)

		_, ok := cache.Get(ecs.KeyOf(pos))
		assert.True(t, ok)
		_, ok = cache.Get(ecs.KeyOf(vel))
		assert.False(t, ok)
		_, ok = cache.Get(ecs.KeyOf(pos, vel))
		assert.False(t, ok, "joined result is linked from every kind")
		assert.Equal(t, int64(2), cache.Stats().Invalidations)
	})

	t.Run("store overwrites and links once", func(t *testing.T) {
		clock := newFakeClock()
		cache := ecs.NewQueryCache(time.Second, clock.Now)
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a}, clock.Now(), pos))
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a, b}, clock.Now(), pos))

		result, ok := cache.Get(ecs.KeyOf(pos))
		require.True(t, ok)
		assert.Equal(t, 2, result.Len())

		cache.InvalidateKind(pos)
		assert.Equal(t, int64(1), cache.Stats().Invalidations)
	})

	t.Run("invalidate all", func(t *testing.T) {
		clock := newFakeClock()
		cache := ecs.NewQueryCache(time.Second, clock.Now)
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{a}, clock.Now(), pos))
		cache.Store(ecs.NewQueryResult([]ecs.EntityId{b}, clock.Now(), vel))

		cache.InvalidateAll()
		assert.Equal(t, 0, cache.Len())
		assert.Empty(t, cache.Results())
	})

	t.Run("results are snapshots", func(t *testing.T) {
		entities := []ecs.EntityId{a, b}
		result := ecs.NewQueryResult(entities, time.Now(), pos)

		copied := result.Entities()
		copied[0] = 0
		assert.True(t, result.Contains(a))
		assert.False(t, result.Contains(0))
	})

	t.Run("concurrent use", func(t *testing.T) {
		clock := newFakeClock()
		cache := ecs.NewQueryCache(time.Second, clock.Now)

		const workers, rounds = 8, 200
		var wg sync.WaitGroup
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range rounds {
					kind := pos
					if (w+i)%2 == 0 {
						kind = vel
					}
					if _, ok := cache.Get(ecs.KeyOf(kind)); !ok {
						cache.Store(ecs.NewQueryResult([]ecs.EntityId{a}, clock.Now(), kind))
					}
					if i%50 == 0 {
						cache.InvalidateKind(kind)
					}
					_ = cache.Stats()
				}
			}()
		}
		wg.Wait()

		stats := cache.Stats()
		assert.Equal(t, int64(workers*rounds), stats.Hits+stats.Misses)
		assert.LessOrEqual(t, stats.Entries, 2)
	})
}
