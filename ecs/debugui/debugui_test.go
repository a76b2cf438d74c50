package debugui_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/storm/ecs"
	"github.com/plus3/storm/ecs/debugui"
)

type Position struct {
	X, Y float32
}

type Health struct {
	Current uint16
	Max     int8
	Label   string
	Alive   bool
	hidden  int
	Parent  *Position
}

func newWorld() (*ecs.World, []ecs.EntityId) {
	world := ecs.NewWorld()
	ecs.RegisterComponent[Position](world)
	ecs.RegisterComponent[Health](world)

	ids := []ecs.EntityId{
		world.Spawn(Position{X: 1}),
		world.Spawn(Position{X: 2}, Health{Current: 10, Max: 20}),
		world.Spawn(Health{Current: 5, Max: 5}),
	}
	return world, ids
}

func TestEntityBrowser(t *testing.T) {
	t.Run("collects every live entity with component names", func(t *testing.T) {
		world, ids := newWorld()
		world.DestroyEntity(ids[0])

		infos := debugui.CollectEntities(world)
		require.Len(t, infos, 2)

		debugui.SortEntities(infos, 0, true)
		assert.Equal(t, ids[1], infos[0].ID)
		assert.Len(t, infos[0].ComponentNames, 2)
		assert.Contains(t, infos[0].ComponentNames[0], "Position")
	})

	t.Run("sorts by component count", func(t *testing.T) {
		world, ids := newWorld()
		infos := debugui.CollectEntities(world)

		debugui.SortEntities(infos, 3, false)
		assert.Equal(t, ids[1], infos[0].ID)

		debugui.SortEntities(infos, 0, false)
		assert.Equal(t, []ecs.EntityId{ids[2], ids[1], ids[0]},
			[]ecs.EntityId{infos[0].ID, infos[1].ID, infos[2].ID})
	})

	t.Run("filters by text and kind", func(t *testing.T) {
		world, ids := newWorld()
		infos := debugui.CollectEntities(world)

		assert.Len(t, debugui.FilterEntities(infos, "", nil), 3)
		assert.Len(t, debugui.FilterEntities(infos, "health", nil), 2)

		kind := ecs.KindOf[Position]()
		filtered := debugui.FilterEntities(infos, "health", &kind)
		require.Len(t, filtered, 1)
		assert.Equal(t, ids[1], filtered[0].ID)

		assert.Empty(t, debugui.FilterEntities(infos, "velocity", nil))
	})
}

func TestComponentInspector(t *testing.T) {
	t.Run("inspects components in name order", func(t *testing.T) {
		world, ids := newWorld()

		components := debugui.InspectEntity(world, ids[1])
		require.Len(t, components, 2)
		assert.Equal(t, ecs.KindOf[Health](), components[0].Kind)
		assert.Equal(t, ecs.KindOf[Position](), components[1].Kind)
		assert.Equal(t, ecs.DefaultPriorityHint, components[0].Hints.Priority)
	})

	t.Run("edits through the inspected pointer", func(t *testing.T) {
		world, ids := newWorld()
		components := debugui.InspectEntity(world, ids[1])

		health := reflect.ValueOf(components[0].Value).Elem()
		assert.True(t, debugui.SetField(health.FieldByName("Current"), uint64(42)))
		assert.True(t, debugui.SetField(health.FieldByName("Label"), "boss"))
		assert.True(t, debugui.SetField(health.FieldByName("Alive"), true))

		got, ok := ecs.GetComponent[Health](world, ids[1])
		require.True(t, ok)
		assert.Equal(t, uint16(42), got.Current)
		assert.Equal(t, "boss", got.Label)
		assert.True(t, got.Alive)
	})

	t.Run("rejects mismatched or overflowing values", func(t *testing.T) {
		h := &Health{}
		v := reflect.ValueOf(h).Elem()

		assert.False(t, debugui.SetField(v.FieldByName("Max"), int64(1000)))
		assert.False(t, debugui.SetField(v.FieldByName("Max"), "ten"))
		assert.False(t, debugui.SetField(v.FieldByName("hidden"), int64(1)))
		assert.False(t, debugui.SetField(reflect.ValueOf(Health{}).FieldByName("Max"), int64(1)))
		assert.True(t, debugui.SetField(v.FieldByName("Max"), int64(100)))
		assert.Equal(t, int8(100), h.Max)
	})

	t.Run("no components for dead entities", func(t *testing.T) {
		world, ids := newWorld()
		world.DestroyEntity(ids[1])
		assert.Empty(t, debugui.InspectEntity(world, ids[1]))
	})
}

func TestReflectionCache(t *testing.T) {
	cache := debugui.NewReflectionCache()

	fields := cache.Fields(reflect.TypeFor[*Health]())
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"Current", "Max", "Label", "Alive", "Parent"}, names)
	assert.True(t, fields[4].IsPointer)
	assert.Equal(t, reflect.Struct, fields[4].Kind)
	assert.False(t, fields[4].Editable())
	assert.True(t, fields[0].Editable())

	cache.Fields(reflect.TypeFor[Health]())
	assert.Equal(t, 1, cache.Len())
	assert.Empty(t, cache.Fields(reflect.TypeFor[int]()))
}

func TestMatchKinds(t *testing.T) {
	world, ids := newWorld()

	both := debugui.MatchKinds(world, ecs.KindOf[Position](), ecs.KindOf[Health]())
	assert.Equal(t, []ecs.EntityId{ids[1]}, both)
	assert.ElementsMatch(t, []ecs.EntityId{ids[0], ids[1]}, debugui.MatchKinds(world, ecs.KindOf[Position]()))
	assert.Nil(t, debugui.MatchKinds(world))

	assert.Equal(t, 2, world.Cache().Len())
	assert.Equal(t, int64(1), world.Cache().Stats().Hits)
}

func TestSortStores(t *testing.T) {
	world, ids := newWorld()
	ecs.RemoveComponent[Position](world, ids[0])
	ecs.AddComponent(world, ids[0], Health{})

	stores := world.Stats().Stores
	require.Len(t, stores, 2)

	debugui.SortStores(stores, 1, false)
	assert.Equal(t, ecs.KindOf[Health](), stores[0].Kind)
	assert.Equal(t, 3, stores[0].Len)

	debugui.SortStores(stores, 3, false)
	assert.Equal(t, ecs.KindOf[Position](), stores[0].Kind)
}

func TestPerformanceStats(t *testing.T) {
	stats := debugui.NewPerformanceStatsComponent(4)
	for _, ms := range []float32{10, 20, 30, 40, 50} {
		stats.Record(ms)
	}
	assert.InDelta(t, 35.0, stats.Average(), 1e-6)

	stats.RecordLatency([]ecs.SystemStats{{Name: "move", AvgDuration: 2 * time.Millisecond}})
	stats.RecordLatency([]ecs.SystemStats{{Name: "move", AvgDuration: 4 * time.Millisecond}})
	assert.Equal(t, []float32{0, 0, 2, 4}, stats.LatencySeries("move"))
	assert.Nil(t, stats.LatencySeries("render"))

	now := time.Unix(0, 0)
	timer := debugui.NewFrameTimer(func() time.Time { return now })
	now = now.Add(250 * time.Millisecond)
	assert.InDelta(t, 0.25, timer.GetDeltaTime(), 1e-6)
	assert.Zero(t, timer.GetDeltaTime())
}

func TestSpawnDebugUI(t *testing.T) {
	world := ecs.NewWorld()
	scheduler := ecs.NewScheduler(world)

	entity := debugui.SpawnDebugUI(world, scheduler)
	require.True(t, world.Alive(entity))
	assert.Len(t, world.KindsOf(entity), 7)
	assert.True(t, ecs.HasComponent[debugui.ImguiItem](world, entity))
	assert.NotNil(t, ecs.GetSingleton[debugui.Selection](world))

	view := ecs.NewView[struct{ *debugui.ImguiItem }](world)
	assert.Equal(t, 1, view.Query().Len())
}
