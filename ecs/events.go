package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type EventType
	Data any
}

// EventType identifies an event.
type EventType string

const (
	// EventGeometryChanged is pushed whenever a brush gets a new collision shape.
	EventGeometryChanged EventType = "geometry-changed"

	EventBrushSpawned     EventType = "brush-spawned"
	EventBrushRemoved     EventType = "brush-removed"
	EventFillChanged      EventType = "fill-changed"
	EventStrokeChanged    EventType = "stroke-changed"
	EventFillImageChanged EventType = "fill-image-changed"
	EventShapeChanged     EventType = "shape-changed"
)

// Replicated reports whether events of this type leave the process.
func (t EventType) Replicated() bool {
	switch t {
	case EventBrushSpawned, EventBrushRemoved, EventFillChanged, EventStrokeChanged,
		EventFillImageChanged, EventShapeChanged:
		return true
	default:
		return false
	}
}

// BrushEvent is the payload of every brush mutation event. Value carries only
// the changed field: a #rrggbb color, an image reference or a shape kind.
type BrushEvent struct {
	Entity  Entity
	BrushID string
	Value   string
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
