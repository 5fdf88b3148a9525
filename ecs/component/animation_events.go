package component

import anim "github.com/milk9111/animevents/component"

// AnimationEvents holds the authored event sets of an entity keyed by
// animation state, plus one scheduler per state that has been entered.
// Executed events are buffered until the owning system drains them.
type AnimationEvents struct {
	Sets    map[string]*anim.StateEventSet
	Emitter *anim.FireEmitter

	Active     string
	Plays      int
	schedulers map[string]*anim.StateEventScheduler
	pending    []anim.Fire
	hooked     bool
}

// NewAnimationEvents indexes sets by state name. Later sets replace earlier
// ones with the same state.
func NewAnimationEvents(sets ...*anim.StateEventSet) *AnimationEvents {
	ae := &AnimationEvents{Emitter: &anim.FireEmitter{}}
	ae.index(sets)
	return ae
}

// Scheduler returns the scheduler for state, creating it on first use. It
// returns nil when the state has no authored events.
func (a *AnimationEvents) Scheduler(state string) *anim.StateEventScheduler {
	if a == nil {
		return nil
	}
	if s, ok := a.schedulers[state]; ok {
		return s
	}
	set, ok := a.Sets[state]
	if !ok || set == nil {
		return nil
	}
	a.hook()
	if a.schedulers == nil {
		a.schedulers = make(map[string]*anim.StateEventScheduler)
	}
	s := anim.NewStateEventScheduler(set)
	s.Emitter = a.Emitter
	a.schedulers[state] = s
	return s
}

// Replace exits the active state and swaps in new sets. Schedulers are
// dropped and Active is cleared, so the next update enters the current
// animation state against the new sets.
func (a *AnimationEvents) Replace(sets ...*anim.StateEventSet) {
	if a == nil {
		return
	}
	if s, ok := a.schedulers[a.Active]; ok && s.Active() {
		s.Exit()
	}
	a.index(sets)
	a.schedulers = nil
	a.Active = ""
}

// DrainFires returns the events executed since the last drain.
func (a *AnimationEvents) DrainFires() []anim.Fire {
	if a == nil || len(a.pending) == 0 {
		return nil
	}
	out := a.pending
	a.pending = nil
	return out
}

func (a *AnimationEvents) index(sets []*anim.StateEventSet) {
	a.Sets = make(map[string]*anim.StateEventSet, len(sets))
	for _, set := range sets {
		if set != nil {
			a.Sets[set.State] = set
		}
	}
}

func (a *AnimationEvents) hook() {
	if a.hooked {
		return
	}
	if a.Emitter == nil {
		a.Emitter = &anim.FireEmitter{}
	}
	a.Emitter.Handlers = append(a.Emitter.Handlers, func(f anim.Fire) {
		a.pending = append(a.pending, f)
	})
	a.hooked = true
}

var AnimationEventsComponent = NewComponent[AnimationEvents]()
