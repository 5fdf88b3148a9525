package component

import anim "github.com/milk9111/animevents/component"

// Hitboxes lists the authored attack boxes of an entity. Animation events
// toggle them through the entity's receiver.
type Hitboxes struct {
	Boxes []*anim.Hitbox
}

// Active returns the boxes that are currently enabled.
func (h *Hitboxes) Active() []*anim.Hitbox {
	if h == nil {
		return nil
	}
	var out []*anim.Hitbox
	for _, box := range h.Boxes {
		if box.Enabled() {
			out = append(out, box)
		}
	}
	return out
}

var HitboxComponent = NewComponent[Hitboxes]()
