package system

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.AnimationComponent.Kind(), func(e ecs.Entity, anim *component.Animation) {
		if !anim.Playing {
			return
		}

		def, ok := anim.Defs[anim.Current]
		if !ok || def.FrameCount <= 0 {
			return
		}

		// Advance one tick at 60 TPS
		ticksPerFrame := def.TicksPerFrame()
		anim.Elapsed++
		anim.FrameTimer = anim.Elapsed % ticksPerFrame
		frame := anim.Elapsed / ticksPerFrame
		switch {
		case def.Loop:
			anim.Frame = frame % def.FrameCount
		case frame >= def.FrameCount:
			anim.Frame = def.FrameCount - 1
			anim.Playing = false
		default:
			anim.Frame = frame
		}

		anim.NormalizedTime = float64(anim.Elapsed) / float64(def.Duration())
		if !def.Loop && anim.NormalizedTime > 1 {
			anim.NormalizedTime = 1
		}

		sprite, ok := ecs.Get(w, e, component.SpriteComponent.Kind())
		if !ok || anim.Sheet == nil {
			return
		}

		// Calculate subimage rect
		x := def.ColStart*def.FrameW + anim.Frame*def.FrameW
		y := def.Row * def.FrameH
		rect := image.Rect(x, y, x+def.FrameW, y+def.FrameH)
		sprite.Source = rect
		sprite.Image = anim.Sheet.SubImage(rect).(*ebiten.Image)
	})
}
