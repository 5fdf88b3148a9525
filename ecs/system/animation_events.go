package system

import (
	anim "github.com/milk9111/animevents/component"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

// AnimationEventSystem drives each entity's state event schedulers from its
// animation playback. It must run after AnimationSystem.
//
// When the current clip changes or is replayed, the previous state's scheduler
// exits and the new one enters before the frame's sample is taken. Every
// executed event is queued on the world as an ecs.AnimationEvent.
type AnimationEventSystem struct{}

func NewAnimationEventSystem() *AnimationEventSystem {
	return &AnimationEventSystem{}
}

func (s *AnimationEventSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.AnimationEventsComponent.Kind(), component.AnimationComponent.Kind(), func(e ecs.Entity, events *component.AnimationEvents, animation *component.Animation) {
		if animation.Current != events.Active || animation.Plays != events.Plays {
			s.switchState(w, e, events, animation.Current)
			events.Plays = animation.Plays
		}

		if sched := events.Scheduler(events.Active); sched.Active() {
			sched.Update(animation.NormalizedTime)
		}

		s.publish(w, e, events)
	})
}

func (s *AnimationEventSystem) switchState(w *ecs.World, e ecs.Entity, events *component.AnimationEvents, next string) {
	from := events.Active
	if prev := events.Scheduler(from); prev.Active() {
		prev.Exit()
	}

	events.Active = next
	if sched := events.Scheduler(next); sched != nil {
		sched.Enter(receiverProvider(w, e))
	}

	w.Events().Push(ecs.Event{
		Type: ecs.EventStateChanged,
		Data: ecs.StateChangedEvent{Entity: e, From: from, To: next},
	})
}

// receiverProvider looks the receiver up on every call, so one attached after
// the state was entered is still picked up.
func receiverProvider(w *ecs.World, e ecs.Entity) anim.ReceiverProvider {
	return func() *anim.Receiver {
		r, ok := ecs.Get(w, e, component.EventReceiverComponent.Kind())
		if !ok {
			return nil
		}
		return r.Receiver
	}
}

func (s *AnimationEventSystem) publish(w *ecs.World, e ecs.Entity, events *component.AnimationEvents) {
	for _, f := range events.DrainFires() {
		w.Events().Push(ecs.Event{
			Type: ecs.EventAnimation,
			Data: ecs.AnimationEvent{
				Entity: e,
				State:  f.State,
				Event:  f.Event,
				Source: f.Source.String(),
				Time:   f.Time,
				Err:    f.Err,
			},
		})
	}
}
