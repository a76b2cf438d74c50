package ecs

import "strings"

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include View and
// Singleton fields, which the Scheduler binds to its World on registration,
// as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) { f(frame) }

// Priority orders systems within a frame. Lower values run first.
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityDeferred
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// ResourceHints declares what a system contends for. Two systems sharing any
// flag conflict and are never placed in the same parallel group.
type ResourceHints struct {
	CPUIntensive     bool
	MemoryIntensive  bool
	GPURequired      bool
	NetworkDependent bool
	DiskBound        bool
}

// Overlaps reports whether h and o share any resource.
func (h ResourceHints) Overlaps(o ResourceHints) bool {
	return (h.CPUIntensive && o.CPUIntensive) ||
		(h.MemoryIntensive && o.MemoryIntensive) ||
		(h.GPURequired && o.GPURequired) ||
		(h.NetworkDependent && o.NetworkDependent) ||
		(h.DiskBound && o.DiskBound)
}

func (h ResourceHints) String() string {
	var parts []string
	if h.CPUIntensive {
		parts = append(parts, "cpu")
	}
	if h.MemoryIntensive {
		parts = append(parts, "mem")
	}
	if h.GPURequired {
		parts = append(parts, "gpu")
	}
	if h.NetworkDependent {
		parts = append(parts, "net")
	}
	if h.DiskBound {
		parts = append(parts, "disk")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Systems may describe themselves through these optional interfaces.
// Registration options take precedence.
type (
	NamedSystem interface {
		Name() string
	}
	PrioritizedSystem interface {
		Priority() Priority
	}
	ResourceHintedSystem interface {
		ResourceHints() ResourceHints
	}
	ParallelSystem interface {
		Parallel() bool
	}
)

// SystemOption configures a system at registration.
type SystemOption func(*systemDescriptor)

// systemDescriptor is everything the scheduler knows about a system besides its stats.
type systemDescriptor struct {
	name      string
	priority  Priority
	resources ResourceHints
	parallel  bool
}

func WithName(name string) SystemOption {
	return func(d *systemDescriptor) { d.name = name }
}

func WithPriority(p Priority) SystemOption {
	return func(d *systemDescriptor) { d.priority = p }
}

func WithResources(h ResourceHints) SystemOption {
	return func(d *systemDescriptor) { d.resources = h }
}

// WithParallel marks the system as safe to run alongside others in its tier.
func WithParallel(parallel bool) SystemOption {
	return func(d *systemDescriptor) { d.parallel = parallel }
}
