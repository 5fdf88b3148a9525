package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

// MeleeTraceSystem feeds blade positions to enabled tracers and ages their
// recorded segments. It runs after AnimationEventSystem so a tracer enabled
// this frame samples its first pose immediately.
type MeleeTraceSystem struct{}

func NewMeleeTraceSystem() *MeleeTraceSystem {
	return &MeleeTraceSystem{}
}

func (m *MeleeTraceSystem) Update(w *ecs.World) {
	ecs.ForEach3(w, component.MeleeBladeComponent.Kind(), component.TransformComponent.Kind(), component.EventReceiverComponent.Kind(), func(e ecs.Entity, blade *component.MeleeBlade, transform *component.Transform, recv *component.EventReceiver) {
		tracer := recv.Tracer
		if tracer == nil {
			return
		}
		if tracer.Drawing() {
			t := 0.0
			if anim, ok := ecs.Get(w, e, component.AnimationComponent.Kind()); ok && (blade.Anim == "" || blade.Anim == anim.Current) {
				t = anim.NormalizedTime
				if anim.Defs[anim.Current].Loop {
					t -= math.Floor(t)
				}
			}
			angle := blade.Angle(t)
			hilt := transform.Point(blade.HiltX, blade.HiltY)
			tip := transform.Point(blade.HiltX+math.Cos(angle)*blade.Length, blade.HiltY+math.Sin(angle)*blade.Length)
			tracer.Sample(hilt, tip)
		}
		tracer.Tick()
	})
}

// DrawMeleeTraces draws every tracer's live segments.
func DrawMeleeTraces(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64) {
	if w == nil || screen == nil {
		return
	}
	ecs.ForEach(w, component.EventReceiverComponent.Kind(), func(_ ecs.Entity, recv *component.EventReceiver) {
		recv.Tracer.Draw(screen, camX, camY, zoom)
	})
}
