package debugui

import (
	"time"

	"github.com/plus3/storm/ecs"
)

// RegisterDebugUIComponents creates the stores used by the inspector windows.
func RegisterDebugUIComponents(world *ecs.World) {
	ecs.RegisterComponent[ImguiItem](world)
	ecs.RegisterComponent[EntityBrowserComponent](world)
	ecs.RegisterComponent[ComponentInspectorComponent](world)
	ecs.RegisterComponent[StoreViewerComponent](world)
	ecs.RegisterComponent[PerformanceStatsComponent](world)
	ecs.RegisterComponent[QueryDebuggerComponent](world)
	ecs.RegisterComponent[FrameTimer](world)
}

// SpawnDebugUI spawns one entity holding every inspector window and an
// ImguiItem that renders them. The scheduler may be nil, in which case the
// performance window only shows world statistics.
func SpawnDebugUI(world *ecs.World, scheduler *ecs.Scheduler) ecs.EntityId {
	RegisterDebugUIComponents(world)
	selection := ecs.NewSingleton[Selection](world)

	var entity ecs.EntityId
	entity = world.Spawn(
		NewEntityBrowserComponent(100),
		NewComponentInspectorComponent(),
		NewStoreViewerComponent(),
		NewPerformanceStatsComponent(120),
		NewQueryDebuggerComponent(),
		*NewFrameTimer(time.Now),
		ImguiItem{Render: func() { renderDebugUI(world, scheduler, entity, selection.Get()) }},
	)
	return entity
}

func renderDebugUI(world *ecs.World, scheduler *ecs.Scheduler, entity ecs.EntityId, selection *Selection) {
	browser := ecs.GetComponentMut[EntityBrowserComponent](world, entity)
	inspector := ecs.GetComponentMut[ComponentInspectorComponent](world, entity)
	stores := ecs.GetComponentMut[StoreViewerComponent](world, entity)
	perf := ecs.GetComponentMut[PerformanceStatsComponent](world, entity)
	queries := ecs.GetComponentMut[QueryDebuggerComponent](world, entity)
	timer := ecs.GetComponentMut[FrameTimer](world, entity)
	if browser == nil || inspector == nil || stores == nil || perf == nil || queries == nil || timer == nil {
		return
	}

	if kind := stores.Render(world); kind != nil {
		browser.FilterByKind(stores.SelectedKind())
	}
	browser.Render(world, selection)
	inspector.Render(world, selection)
	queries.Render(world)
	perf.Render(world, scheduler, timer.GetDeltaTime())
}
