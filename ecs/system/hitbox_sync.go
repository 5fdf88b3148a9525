package system

import (
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

const physicsStep = 1.0 / 60.0

// HitboxSyncSystem moves each entity's hitbox body to its transform, mirrors
// its shapes to the facing and steps the world's physics space. Worlds without a space are left alone.
type HitboxSyncSystem struct{}

func NewHitboxSyncSystem() *HitboxSyncSystem {
	return &HitboxSyncSystem{}
}

func (h *HitboxSyncSystem) Update(w *ecs.World) {
	ps := w.Physics()
	if ps == nil {
		return
	}
	ecs.ForEach2(w, component.HitboxComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.Hitboxes, transform *component.Transform) {
		ps.SyncBody(e, transform.X, transform.Y)
		ps.SetFacing(e, transform.FacingLeft)
	})
	ps.Step(physicsStep)
}
