package debugui

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/storm/ecs"
)

func NewComponentInspectorComponent() ComponentInspectorComponent {
	return ComponentInspectorComponent{}
}

// InspectedComponent is one component of the inspected entity.
type InspectedComponent struct {
	Kind  ecs.ComponentKind
	Name  string
	Value any
	Hints ecs.ComponentHints
}

// InspectEntity returns the entity's components ordered by type name.
// Values are pointers into the stores, so edits through them are visible to systems.
func InspectEntity(world *ecs.World, entity ecs.EntityId) []InspectedComponent {
	names := kindNames(world)
	components := world.ComponentsOf(entity)
	out := make([]InspectedComponent, 0, len(components))
	for kind, value := range components {
		out = append(out, InspectedComponent{
			Kind:  kind,
			Name:  names[kind],
			Value: value,
			Hints: ecs.HintsOf(value),
		})
	}
	slices.SortFunc(out, func(a, b InspectedComponent) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (ci *ComponentInspectorComponent) Render(world *ecs.World, selection *Selection) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selection.Entity
	if ci.selectedEntityId.IsZero() {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}
	if !world.Alive(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %s is no longer alive", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selectedEntityId))
	imgui.Text(fmt.Sprintf("Index %d, generation %d", ci.selectedEntityId.Index(), ci.selectedEntityId.Generation()))
	if imgui.Button("Destroy") {
		world.DestroyEntity(ci.selectedEntityId)
		selection.Entity = 0
		imgui.End()
		return
	}
	imgui.Separator()

	for _, component := range InspectEntity(world, ci.selectedEntityId) {
		if imgui.TreeNodeStr(component.Name) {
			imgui.Text(fmt.Sprintf("priority %d, %.0f Hz, prediction %t",
				component.Hints.Priority, component.Hints.UpdateFrequency, component.Hints.Prediction))
			ci.renderComponent(component.Value)
			if imgui.Button(fmt.Sprintf("Remove##%d", component.Kind)) {
				world.RemoveKind(ci.selectedEntityId, component.Kind)
			}
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspectorComponent) renderComponent(component any) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		imgui.Text(fmt.Sprintf("%v", val.Interface()))
		return
	}

	for _, field := range globalReflectionCache.Fields(val.Type()) {
		ci.renderField(field.Name, val.Field(field.Index), field)
	}
}

func (ci *ComponentInspectorComponent) renderField(name string, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}
	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
			return
		}
		val = val.Elem()
	}

	label := fmt.Sprintf("##%s", name)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) {
			SetField(val, int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(label, &v) && v >= 0 {
			SetField(val, uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(label, &v) {
			SetField(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			SetField(val, v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(label, "", &v, imgui.InputTextFlagsNone, nil) {
			SetField(val, v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nested := range globalReflectionCache.Fields(val.Type()) {
				ci.renderField(nested.Name, val.Field(nested.Index), nested)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}

// SetField assigns value to an addressable field, converting between numeric widths.
// It reports whether the field was written.
func SetField(field reflect.Value, value any) bool {
	if !field.CanSet() {
		return false
	}

	switch v := value.(type) {
	case int64:
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if field.OverflowInt(v) {
				return false
			}
			field.SetInt(v)
			return true
		}
	case uint64:
		switch field.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if field.OverflowUint(v) {
				return false
			}
			field.SetUint(v)
			return true
		}
	case float64:
		switch field.Kind() {
		case reflect.Float32, reflect.Float64:
			field.SetFloat(v)
			return true
		}
	case bool:
		if field.Kind() == reflect.Bool {
			field.SetBool(v)
			return true
		}
	case string:
		if field.Kind() == reflect.String {
			field.SetString(v)
			return true
		}
	}
	return false
}
