package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	// EventAnimation carries an AnimationEvent.
	EventAnimation = "animation_event"
	// EventStateChanged carries a StateChangedEvent.
	EventStateChanged = "animation_state_changed"
)

// AnimationEvent is queued for every animation event a scheduler executed.
type AnimationEvent struct {
	Entity Entity
	State  string
	Event  string
	Source string
	Time   float64
	Err    error
}

// StateChangedEvent is queued when an entity's animation state switches.
type StateChangedEvent struct {
	Entity Entity
	From   string
	To     string
}

// EventQueue is a simple FIFO queue, cleared at the end of each world update.
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

// Peek returns the queued events without clearing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
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

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
