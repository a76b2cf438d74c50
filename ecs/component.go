package ecs

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// ComponentKind identifies a component type. It is derived from the type alone,
// so the same Go type maps to the same kind in every World.
type ComponentKind uint64

// KindOf returns the ComponentKind for T
func KindOf[T any]() ComponentKind {
	return kindOfType(reflect.TypeFor[T]())
}

func kindOfType(t reflect.Type) ComponentKind {
	return ComponentKind(xxhash.Sum64String(typeKey(t)))
}

// typeKey qualifies the type string with its package path so that two
// packages declaring the same type name produce different kinds.
func typeKey(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + ":" + t.String()
}

// PriorityHinter lets a component suggest how urgently it should be processed (0-255).
type PriorityHinter interface {
	PriorityHint() uint8
}

// UpdateFrequencyHinter lets a component suggest its desired update rate in Hz.
// Zero means "as needed".
type UpdateFrequencyHinter interface {
	UpdateFrequencyHint() float32
}

// PredictionHinter marks components whose values are worth extrapolating between updates.
type PredictionHinter interface {
	PredictionEnabled() bool
}

const (
	DefaultPriorityHint        uint8   = 128
	DefaultUpdateFrequencyHint float32 = 60
)

// ComponentHints collects the optional hints a component value exposes.
type ComponentHints struct {
	Priority        uint8
	UpdateFrequency float32
	Prediction      bool
}

// HintsOf reads the optional hint interfaces from a component value,
// falling back to the defaults for any the value does not implement.
// Pointer receivers are honoured when v is a pointer.
func HintsOf(v any) ComponentHints {
	hints := ComponentHints{
		Priority:        DefaultPriorityHint,
		UpdateFrequency: DefaultUpdateFrequencyHint,
	}
	if h, ok := v.(PriorityHinter); ok {
		hints.Priority = h.PriorityHint()
	}
	if h, ok := v.(UpdateFrequencyHinter); ok {
		hints.UpdateFrequency = h.UpdateFrequencyHint()
	}
	if h, ok := v.(PredictionHinter); ok {
		hints.Prediction = h.PredictionEnabled()
	}
	return hints
}
