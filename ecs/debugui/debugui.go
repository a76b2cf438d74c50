// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems,
// and ships a set of inspector windows for worlds and schedulers.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/storm/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions.
// It also updates the ImguiInputState singleton with current input capture state.
// It runs in the deferred tier so windows observe the state every other system produced.
type ImguiSystem struct {
	Items      ecs.View[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Name() string { return "imgui" }

func (i *ImguiSystem) Priority() ecs.Priority { return ecs.PriorityDeferred }

func (i *ImguiSystem) ResourceHints() ecs.ResourceHints {
	return ecs.ResourceHints{GPURequired: true}
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if !i.InputState.Exists() {
		ecs.SetSingleton(frame.World, ImguiInputState{})
	}
	if state := i.InputState.Get(); state != nil {
		state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
		state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}
