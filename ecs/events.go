package ecs

// EventKind identifies world events.
type EventKind string

const (
	EventSpawned   EventKind = "spawned"
	EventDestroyed EventKind = "destroyed"
	EventHitHazard EventKind = "hazard"
	EventFellOut   EventKind = "fell_out"
	EventRespawned EventKind = "respawned"
)

// Event is a world event payload.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
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

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
