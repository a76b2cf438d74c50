package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/storm/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	Kinds          []ecs.ComponentKind
	ComponentNames []string
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	lastEvents    uint64
	lastEntities  int
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowserComponent(maxEntitiesPerPage int) EntityBrowserComponent {
	return EntityBrowserComponent{
		cache:              &EntityBrowserCache{sortAscending: true},
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

// CollectEntities snapshots every live entity with the names of its components.
func CollectEntities(world *ecs.World) []EntityInfo {
	names := kindNames(world)
	ids := world.Entities()
	out := make([]EntityInfo, 0, len(ids))
	for _, id := range ids {
		kinds := world.KindsOf(id)
		componentNames := make([]string, len(kinds))
		for i, kind := range kinds {
			componentNames[i] = names[kind]
		}
		out = append(out, EntityInfo{ID: id, Kinds: kinds, ComponentNames: componentNames})
	}
	return out
}

func kindNames(world *ecs.World) map[ecs.ComponentKind]string {
	infos := world.Kinds()
	names := make(map[ecs.ComponentKind]string, len(infos))
	for _, info := range infos {
		names[info.Kind] = info.Name
	}
	return names
}

// SortEntities orders entities by column: 0 id, 1 index, 2 components, 3 component count.
func SortEntities(entities []EntityInfo, column int, ascending bool) {
	slices.SortStableFunc(entities, func(a, b EntityInfo) int {
		var c int
		switch column {
		case 1:
			c = cmp.Compare(a.ID.Index(), b.ID.Index())
		case 2:
			c = strings.Compare(strings.Join(a.ComponentNames, ","), strings.Join(b.ComponentNames, ","))
		case 3:
			c = cmp.Compare(len(a.Kinds), len(b.Kinds))
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// FilterEntities keeps entities owning kind, when set, whose id or component names contain text.
func FilterEntities(entities []EntityInfo, text string, kind *ecs.ComponentKind) []EntityInfo {
	if text == "" && kind == nil {
		return entities
	}

	needle := strings.ToLower(text)
	filtered := make([]EntityInfo, 0, len(entities))
	for _, entity := range entities {
		if kind != nil && !slices.Contains(entity.Kinds, *kind) {
			continue
		}
		if needle != "" &&
			!strings.Contains(entity.ID.String(), needle) &&
			!strings.Contains(strings.ToLower(strings.Join(entity.ComponentNames, " ")), needle) {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

func (eb *EntityBrowserComponent) Render(world *ecs.World, selection *Selection) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(world)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterKind = nil
		eb.currentPage = 0
	}
	imgui.SameLine()
	if imgui.Button("Refresh") {
		eb.cache.entities = nil
	}

	filtered := FilterEntities(eb.cache.entities, eb.filterText, eb.filterKind)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Index")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			SortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		start := min(eb.currentPage*eb.maxEntitiesPerPage, len(filtered))
		end := min(start+eb.maxEntitiesPerPage, len(filtered))
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(entity.ID.String(), selection.Entity == entity.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				selection.Entity = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ID.Index()))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentNames, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.Kinds)))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// FilterByKind restricts the browser to entities owning kind. A nil kind clears the filter.
func (eb *EntityBrowserComponent) FilterByKind(kind *ecs.ComponentKind) {
	eb.filterKind = kind
	eb.currentPage = 0
}

func (eb *EntityBrowserComponent) rebuildCacheIfNeeded(world *ecs.World) {
	stats := world.Stats()
	if eb.cache.lastEvents != stats.Events || eb.cache.lastEntities != stats.Entities {
		eb.cache.entities = nil
		eb.cache.lastEvents = stats.Events
		eb.cache.lastEntities = stats.Entities
	}
	if eb.cache.entities == nil {
		eb.cache.entities = CollectEntities(world)
		SortEntities(eb.cache.entities, eb.cache.sortColumn, eb.cache.sortAscending)
	}
}
