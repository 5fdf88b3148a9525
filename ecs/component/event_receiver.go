package component

import anim "github.com/milk9111/animevents/component"

// EventReceiver is the target side of an entity's animation events. Tracer is
// the concrete tracer behind Receiver.Tracer(), kept for sampling and drawing.
type EventReceiver struct {
	Receiver *anim.Receiver
	Tracer   *anim.MeleeTracer
}

var EventReceiverComponent = NewComponent[EventReceiver]()
