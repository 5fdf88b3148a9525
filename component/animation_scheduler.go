package component

import "math"

// StateEventScheduler evaluates one state's authored events for a single
// active state instance. The host animation system calls Enter, Update and
// Exit from its frame update; calls for the same instance never overlap.
type StateEventScheduler struct {
	Emitter *FireEmitter

	set      *StateEventSet
	provider ReceiverProvider
	receiver *Receiver
	last     float64
	active   bool
}

// NewStateEventScheduler creates an inactive scheduler over set.
func NewStateEventScheduler(set *StateEventSet) *StateEventScheduler {
	return &StateEventScheduler{set: set}
}

// Enter activates the state. The receiver is resolved from provider when not
// already bound, the playback cursor resets to 0 and OnEnter lifecycle events
// run in authored order.
func (s *StateEventScheduler) Enter(provider ReceiverProvider) {
	if s == nil {
		return
	}
	if provider != nil {
		s.provider = provider
	}
	s.resolve()
	s.last = 0
	s.active = true
	s.runLifecycle(TriggerOnEnter, FireEnter)
}

// Update samples the playback position. Every timeline event with
// last < time <= current fires once, in authored order. The cursor advances
// even when no receiver is bound, so events crossed meanwhile are dropped.
//
// A loop wrap (current < last) is not special-cased: events between the old
// position and the end of the clip, and between 0 and the new position, are
// skipped for that frame.
func (s *StateEventScheduler) Update(normalizedTime float64) {
	if s == nil {
		return
	}
	current := WrapNormalizedTime(normalizedTime)
	s.resolve()
	if s.set != nil {
		for i := range s.set.Timeline {
			evt := &s.set.Timeline[i]
			if evt.Time > s.last && evt.Time <= current {
				s.fire(evt.Name, FireTimeline, evt.Time, evt.Execute)
			}
		}
	}
	s.last = current
}

// Exit runs OnExit lifecycle events in authored order and deactivates the
// state. Timeline events never fire on exit.
func (s *StateEventScheduler) Exit() {
	if s == nil {
		return
	}
	s.resolve()
	s.runLifecycle(TriggerOnExit, FireExit)
	s.active = false
}

// Bind sets the receiver explicitly without touching the playback cursor.
func (s *StateEventScheduler) Bind(r *Receiver) {
	if s == nil {
		return
	}
	s.receiver = r
}

// Receiver returns the bound receiver, or nil.
func (s *StateEventScheduler) Receiver() *Receiver {
	if s == nil {
		return nil
	}
	return s.receiver
}

// LastNormalizedTime returns the last sampled, wrapped playback position.
func (s *StateEventScheduler) LastNormalizedTime() float64 {
	if s == nil {
		return 0
	}
	return s.last
}

// Active reports whether the state has been entered and not yet exited.
func (s *StateEventScheduler) Active() bool {
	return s != nil && s.active
}

// Set returns the event set this scheduler evaluates.
func (s *StateEventScheduler) Set() *StateEventSet {
	if s == nil {
		return nil
	}
	return s.set
}

func (s *StateEventScheduler) resolve() {
	if s.receiver != nil || s.provider == nil {
		return
	}
	s.receiver = s.provider()
}

func (s *StateEventScheduler) runLifecycle(trigger TriggerKind, source FireSource) {
	if s.set == nil {
		return
	}
	for i := range s.set.Lifecycle {
		evt := &s.set.Lifecycle[i]
		if evt.Trigger != trigger {
			continue
		}
		s.fire(evt.Name, source, s.last, evt.Execute)
	}
}

func (s *StateEventScheduler) fire(name string, source FireSource, at float64, exec func(*Receiver) error) {
	state := ""
	if s.set != nil {
		state = s.set.State
	}
	if s.receiver == nil {
		logger.Printf("animevents: state=%s event=%s: no receiver bound, skipped", state, name)
		return
	}
	err := exec(s.receiver)
	if err != nil {
		logger.Printf("animevents: state=%s event=%s (%s): %v", state, name, source, err)
	}
	s.Emitter.Emit(Fire{State: state, Event: name, Source: source, Time: at, Err: err})
}

// WrapNormalizedTime reduces an accumulated normalized time to a position in
// the current loop. Non-integer values keep their fractional part; positive
// whole numbers map to 1 so a sample landing exactly on the end of a loop
// covers events authored at 1. NaN and infinities map to 0.
func WrapNormalizedTime(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	frac := t - math.Floor(t)
	if frac == 0 && t > 0 {
		return 1
	}
	return frac
}
