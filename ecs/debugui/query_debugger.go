package debugui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/storm/ecs"
)

func NewQueryDebuggerComponent() QueryDebuggerComponent {
	return QueryDebuggerComponent{selectedKinds: make(map[ecs.ComponentKind]bool)}
}

// MatchKinds returns the live entities owning every kind, in the order of the
// smallest single-kind result. Each lookup goes through the world's query cache.
func MatchKinds(world *ecs.World, kinds ...ecs.ComponentKind) []ecs.EntityId {
	if len(kinds) == 0 {
		return nil
	}

	results := make([]ecs.QueryResult, len(kinds))
	for i, kind := range kinds {
		results[i] = world.QueryKind(kind)
	}
	slices.SortFunc(results, func(a, b ecs.QueryResult) int { return a.Len() - b.Len() })

	var out []ecs.EntityId
	for entity := range results[0].All() {
		ok := true
		for _, other := range results[1:] {
			if !other.Contains(entity) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, entity)
		}
	}
	return out
}

func (qd *QueryDebuggerComponent) selected() []ecs.ComponentKind {
	kinds := make([]ecs.ComponentKind, 0, len(qd.selectedKinds))
	for kind, on := range qd.selectedKinds {
		if on {
			kinds = append(kinds, kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}

func (qd *QueryDebuggerComponent) Render(world *ecs.World) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	cacheStats := world.Cache().Stats()
	imgui.Text(fmt.Sprintf("Cache: %d entries, %d hits, %d misses, %d invalidations",
		cacheStats.Entries, cacheStats.Hits, cacheStats.Misses, cacheStats.Invalidations))
	if imgui.Button("Clear Cache") {
		world.Cache().InvalidateAll()
	}
	imgui.Separator()

	imgui.Text("Select Component Types:")
	if imgui.Button("Clear All") {
		clear(qd.selectedKinds)
	}

	names := make(map[ecs.ComponentKind]string)
	for _, info := range world.Kinds() {
		names[info.Kind] = info.Name
		selected := qd.selectedKinds[info.Kind]
		if imgui.Checkbox(info.Name, &selected) {
			if selected {
				qd.selectedKinds[info.Kind] = true
			} else {
				delete(qd.selectedKinds, info.Kind)
			}
		}
	}
	imgui.Separator()

	if kinds := qd.selected(); len(kinds) == 0 {
		imgui.Text("No component types selected")
	} else {
		matches := MatchKinds(world, kinds...)
		imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))
		if imgui.TreeNodeStr("Entities") {
			for _, entity := range matches[:min(len(matches), 100)] {
				imgui.BulletText(entity.String())
			}
			if len(matches) > 100 {
				imgui.Text(fmt.Sprintf("... and %d more", len(matches)-100))
			}
			imgui.TreePop()
		}
	}

	if imgui.TreeNodeStr("Cached Results") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("CachedQueries", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Key")
			imgui.TableSetupColumn("Kinds")
			imgui.TableSetupColumn("Entities")
			imgui.TableSetupColumn("Age")
			imgui.TableHeadersRow()

			now := world.Stats().CollectedAt
			for _, result := range world.Cache().Results() {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("0x%016X", uint64(result.Key())))

				imgui.TableSetColumnIndex(1)
				kindNames := make([]string, 0, len(result.Kinds()))
				for _, kind := range result.Kinds() {
					kindNames = append(kindNames, names[kind])
				}
				imgui.Text(strings.Join(kindNames, ", "))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", result.Len()))

				imgui.TableSetColumnIndex(3)
				imgui.Text(now.Sub(result.CapturedAt()).String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
