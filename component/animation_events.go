package component

import (
	"errors"
	"fmt"
	"sort"
)

// TriggerKind selects which state lifecycle edge fires a LifecycleEvent.
type TriggerKind int

const (
	TriggerOnEnter TriggerKind = iota
	TriggerOnExit
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerOnEnter:
		return "on_enter"
	case TriggerOnExit:
		return "on_exit"
	default:
		return fmt.Sprintf("trigger(%d)", int(k))
	}
}

// ParseTriggerKind accepts the serialized names and numeric values.
func ParseTriggerKind(s string) (TriggerKind, error) {
	switch s {
	case "on_enter", "OnEnter", "enter", "0":
		return TriggerOnEnter, nil
	case "on_exit", "OnExit", "exit", "1":
		return TriggerOnExit, nil
	}
	return 0, fmt.Errorf("unknown trigger %q", s)
}

// TimelineEvent fires its payloads when playback crosses Time.
type TimelineEvent struct {
	Name     string
	Time     float64
	Payloads []Payload
}

// NewTimelineEvent creates an event with its time clamped to [0,1].
func NewTimelineEvent(name string, t float64, payloads ...Payload) TimelineEvent {
	return TimelineEvent{Name: name, Time: ClampTime(t), Payloads: payloads}
}

// Execute runs the payload chain. See runPayloads.
func (e *TimelineEvent) Execute(r *Receiver) error {
	if e == nil {
		return nil
	}
	return runPayloads(r, e.Payloads)
}

// LifecycleEvent fires its payloads on state enter or exit.
type LifecycleEvent struct {
	Name     string
	Trigger  TriggerKind
	Payloads []Payload
}

// Execute runs the payload chain. See runPayloads.
func (e *LifecycleEvent) Execute(r *Receiver) error {
	if e == nil {
		return nil
	}
	return runPayloads(r, e.Payloads)
}

// runPayloads executes payloads in order. Nil entries are skipped; the first
// failing payload stops the rest of the chain and its error is returned.
func runPayloads(r *Receiver, payloads []Payload) error {
	for i, p := range payloads {
		if p == nil {
			continue
		}
		if err := p.Execute(r); err != nil {
			return fmt.Errorf("payload %d (%s): %w", i, p.Kind(), err)
		}
	}
	return nil
}

// ClampTime limits a normalized event time to [0,1].
func ClampTime(t float64) float64 {
	if t != t || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// StateEventSet holds the authored events for one animation state. It is
// read-only at runtime.
type StateEventSet struct {
	State     string
	Timeline  []TimelineEvent
	Lifecycle []LifecycleEvent
}

// SortByTime orders timeline events by time, keeping authored order among
// equal times. Runtime evaluation never sorts on its own.
func (s *StateEventSet) SortByTime() {
	if s == nil {
		return
	}
	sort.SliceStable(s.Timeline, func(i, j int) bool {
		return s.Timeline[i].Time < s.Timeline[j].Time
	})
}

// Validate checks authored times and, when r is non-nil, that every hitbox a
// ToggleHitbox payload names exists on r.
func (s *StateEventSet) Validate(r *Receiver) error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := range s.Timeline {
		e := &s.Timeline[i]
		if e.Time < 0 || e.Time > 1 || e.Time != e.Time {
			errs = append(errs, fmt.Errorf("state %q: event %q: time %v outside [0,1]", s.State, e.Name, e.Time))
		}
		errs = append(errs, validatePayloads(r, s.State, e.Name, e.Payloads)...)
	}
	for i := range s.Lifecycle {
		e := &s.Lifecycle[i]
		if e.Trigger != TriggerOnEnter && e.Trigger != TriggerOnExit {
			errs = append(errs, fmt.Errorf("state %q: lifecycle event %q: %v", s.State, e.Name, e.Trigger))
		}
		errs = append(errs, validatePayloads(r, s.State, e.Name, e.Payloads)...)
	}
	return errors.Join(errs...)
}

func validatePayloads(r *Receiver, state, event string, payloads []Payload) []error {
	var errs []error
	for i, p := range payloads {
		switch v := p.(type) {
		case *ToggleHitbox:
			if r == nil {
				continue
			}
			if _, ok := r.Resolve(v.Hitbox); !ok {
				errs = append(errs, fmt.Errorf("state %q: event %q: payload %d: hitbox %q: %w", state, event, i, v.Hitbox, ErrTargetNotFound))
			}
		case *ToggleTracer:
			if r != nil && r.Tracer() == nil {
				errs = append(errs, fmt.Errorf("state %q: event %q: payload %d: %w", state, event, i, ErrNoTracer))
			}
		case interface{ Compile() error }:
			if err := v.Compile(); err != nil {
				errs = append(errs, fmt.Errorf("state %q: event %q: payload %d: %w", state, event, i, err))
			}
		}
	}
	return errs
}

// FireSource identifies what triggered an executed event.
type FireSource int

const (
	FireTimeline FireSource = iota
	FireEnter
	FireExit
)

func (s FireSource) String() string {
	switch s {
	case FireTimeline:
		return "timeline"
	case FireEnter:
		return "enter"
	case FireExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Fire describes one executed event.
type Fire struct {
	State  string
	Event  string
	Source FireSource
	Time   float64
	Err    error
}

// FireHandler observes executed events.
type FireHandler func(f Fire)

// FireEmitter dispatches executed events to handlers.
type FireEmitter struct {
	Handlers []FireHandler
}

// Emit sends a fire record to all handlers.
func (e *FireEmitter) Emit(f Fire) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(f)
		}
	}
}
