package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/storm/ecs"
)

func NewStoreViewerComponent() StoreViewerComponent {
	return StoreViewerComponent{sortColumn: 1}
}

// SortStores orders store stats by column: 0 name, 1 live components, 2 slots,
// 3 free slots, 4 compactions.
func SortStores(stores []ecs.StoreStats, column int, ascending bool) {
	slices.SortStableFunc(stores, func(a, b ecs.StoreStats) int {
		var c int
		switch column {
		case 0:
			c = cmp.Compare(a.Name, b.Name)
		case 2:
			c = cmp.Compare(a.Slots, b.Slots)
		case 3:
			c = cmp.Compare(a.FreeSlots, b.FreeSlots)
		case 4:
			c = cmp.Compare(a.Compactions, b.Compactions)
		default:
			c = cmp.Compare(a.Len, b.Len)
		}
		if !ascending {
			return -c
		}
		return c
	})
}

// Render draws one row per component store and returns the kind that was
// clicked this frame, if any.
func (sv *StoreViewerComponent) Render(world *ecs.World) *ecs.ComponentKind {
	if !imgui.BeginV("Component Stores", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	stats := world.Stats()
	imgui.Text(fmt.Sprintf("Entities: %d (%d recycled ids)", stats.Entities, stats.Recycled))
	imgui.Text(fmt.Sprintf("Kinds: %d", stats.Kinds))
	if imgui.Button("Optimize") {
		report := world.Optimize(ecs.DefaultFrameContext())
		sv.lastReport = &report
	}
	if sv.lastReport != nil {
		imgui.SameLine()
		imgui.Text(fmt.Sprintf("reclaimed %d slots, retired %d ids in %s",
			sv.lastReport.SlotsReclaimed, sv.lastReport.IdsRetired, sv.lastReport.Duration))
	}
	imgui.Separator()

	stores := stats.Stores
	SortStores(stores, sv.sortColumn, sv.sortAscending)

	maxLen := 0
	for _, store := range stores {
		maxLen = max(maxLen, store.Len)
	}

	var clicked *ecs.ComponentKind
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("StoreTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Component")
		imgui.TableSetupColumn("Live")
		imgui.TableSetupColumn("Slots")
		imgui.TableSetupColumn("Free")
		imgui.TableSetupColumn("Compactions")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.sortColumn = int(spec.ColumnIndex())
			sv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			SortStores(stores, sv.sortColumn, sv.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, store := range stores {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			selected := sv.selectedKind != nil && *sv.selectedKind == store.Kind
			if imgui.SelectableBoolV(store.Name, selected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				kind := store.Kind
				if selected {
					sv.selectedKind = nil
				} else {
					sv.selectedKind = &kind
				}
				clicked = &kind
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.Len))
			if maxLen > 0 {
				barWidth := float32(store.Len) / float32(maxLen) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.Slots))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.FreeSlots))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", store.Compactions))
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

// SelectedKind returns the store currently highlighted, or nil.
func (sv *StoreViewerComponent) SelectedKind() *ecs.ComponentKind {
	return sv.selectedKind
}
