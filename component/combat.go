package component

import "github.com/jakecoffman/cp"

// Hitbox represents an offensive collision area. Animation events toggle
// Active; hit resolution is left to the game.
type Hitbox struct {
	ID     string
	Rect   cp.BB
	Active bool
}

// NewHitbox creates an inactive hitbox with the given size, offset from the
// owner's origin.
func NewHitbox(id string, width, height, offsetX, offsetY float64) *Hitbox {
	return &Hitbox{
		ID:   id,
		Rect: cp.NewBBForExtents(cp.Vector{X: offsetX, Y: offsetY}, width/2, height/2),
	}
}

// SetEnabled switches the hitbox on or off.
func (h *Hitbox) SetEnabled(enabled bool) {
	if h == nil {
		return
	}
	h.Active = enabled
}

// Enabled reports whether the hitbox is active.
func (h *Hitbox) Enabled() bool {
	return h != nil && h.Active
}
