package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

// DrawSprites draws every entity's current animation frame at its transform.
func DrawSprites(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64) {
	if w == nil || screen == nil {
		return
	}
	ecs.ForEach2(w, component.SpriteComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, s *component.Sprite, t *component.Transform) {
		if s.Image == nil {
			return
		}
		screen.DrawImage(s.Image, spriteDrawOptions(s, t, camX, camY, zoom))
	})
}

func spriteDrawOptions(s *component.Sprite, t *component.Transform, camX, camY, zoom float64) *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.OriginX, -s.OriginY)

	sx := t.ScaleX
	if sx == 0 {
		sx = 1
	}
	if t.FacingLeft {
		sx = -sx
	}
	sy := t.ScaleY
	if sy == 0 {
		sy = 1
	}

	op.GeoM.Scale(sx, sy)
	op.GeoM.Rotate(t.Rotation)
	op.GeoM.Scale(zoom, zoom)
	op.GeoM.Translate((t.X-camX)*zoom, (t.Y-camY)*zoom)
	return op
}
