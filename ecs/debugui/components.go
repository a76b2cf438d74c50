package debugui

import (
	"github.com/plus3/storm/ecs"
)

// Selection is the singleton shared by the entity browser and the component inspector.
type Selection struct {
	Entity ecs.EntityId
}

type EntityBrowserComponent struct {
	cache              *EntityBrowserCache
	filterText         string
	filterKind         *ecs.ComponentKind
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspectorComponent struct {
	selectedEntityId ecs.EntityId
}

type StoreViewerComponent struct {
	selectedKind  *ecs.ComponentKind
	sortColumn    int
	sortAscending bool
	lastReport    *ecs.OptimizationReport
}

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	systemLatency map[string][]float32
	latencyIndex  int
}

type QueryDebuggerComponent struct {
	selectedKinds map[ecs.ComponentKind]bool
}
