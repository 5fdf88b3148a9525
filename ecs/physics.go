package ecs

import (
	"github.com/jakecoffman/cp"
)

const (
	collisionTypeHitbox cp.CollisionType = iota + 1
)

// PhysicsSpace owns the Chipmunk space that hosts entity hitbox shapes.
// A hitbox shape is only part of the space while it is enabled.
type PhysicsSpace struct {
	space         *cp.Space
	bodies        map[Entity]*cp.Body
	hitboxes      map[Entity][]*ShapeHitbox
	shapeToEntity map[*cp.Shape]Entity
}

// NewPhysicsSpace creates an empty space.
func NewPhysicsSpace() *PhysicsSpace {
	space := cp.NewSpace()
	space.Iterations = 20
	return &PhysicsSpace{
		space:         space,
		bodies:        make(map[Entity]*cp.Body),
		hitboxes:      make(map[Entity][]*ShapeHitbox),
		shapeToEntity: make(map[*cp.Shape]Entity),
	}
}

// Space returns the underlying Chipmunk space.
func (ps *PhysicsSpace) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

// Body returns the kinematic body that carries an entity's hitboxes,
// creating it on first use.
func (ps *PhysicsSpace) Body(owner Entity) *cp.Body {
	if ps == nil || ps.space == nil {
		return nil
	}
	if body, ok := ps.bodies[owner]; ok {
		return body
	}
	body := cp.NewKinematicBody()
	ps.space.AddBody(body)
	ps.bodies[owner] = body
	return body
}

// SyncBody moves an entity's hitbox body.
func (ps *PhysicsSpace) SyncBody(owner Entity, x, y float64) {
	if ps == nil {
		return
	}
	if body, ok := ps.bodies[owner]; ok {
		body.SetPosition(cp.Vector{X: x, Y: y})
	}
}

// SetFacing mirrors an entity's hitbox shapes horizontally when left is true.
func (ps *PhysicsSpace) SetFacing(owner Entity, left bool) {
	if ps == nil {
		return
	}
	for _, h := range ps.hitboxes[owner] {
		h.setFacing(left)
	}
}

// RemoveOwner drops an entity's body and any enabled shapes.
func (ps *PhysicsSpace) RemoveOwner(owner Entity) {
	if ps == nil || ps.space == nil {
		return
	}
	for shape, e := range ps.shapeToEntity {
		if e == owner {
			ps.space.RemoveShape(shape)
			delete(ps.shapeToEntity, shape)
		}
	}
	if body, ok := ps.bodies[owner]; ok {
		ps.space.RemoveBody(body)
		delete(ps.bodies, owner)
	}
	delete(ps.hitboxes, owner)
}

// Owner returns the entity an enabled shape belongs to.
func (ps *PhysicsSpace) Owner(shape *cp.Shape) (Entity, bool) {
	if ps == nil {
		return 0, false
	}
	e, ok := ps.shapeToEntity[shape]
	return e, ok
}

// ActiveShapes returns the number of enabled hitbox shapes.
func (ps *PhysicsSpace) ActiveShapes() int {
	if ps == nil {
		return 0
	}
	return len(ps.shapeToEntity)
}

// Step advances the space.
func (ps *PhysicsSpace) Step(dt float64) {
	if ps == nil || ps.space == nil || dt <= 0 {
		return
	}
	ps.space.Step(dt)
}

// NewShapeHitbox creates a sensor box on the owner's body, plus its mirror
// image for when the owner faces left. The shape starts disabled.
func (ps *PhysicsSpace) NewShapeHitbox(owner Entity, bb cp.BB) *ShapeHitbox {
	body := ps.Body(owner)
	if body == nil {
		return nil
	}
	h := &ShapeHitbox{ps: ps, owner: owner}
	for i, box := range [2]cp.BB{bb, mirrorBB(bb)} {
		shape := cp.NewBox2(body, box, 0)
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeHitbox)
		h.shapes[i] = shape
	}
	ps.hitboxes[owner] = append(ps.hitboxes[owner], h)
	return h
}

func mirrorBB(bb cp.BB) cp.BB {
	return cp.BB{L: -bb.R, B: bb.B, R: -bb.L, T: bb.T}
}

// ShapeHitbox is a hittable backed by a Chipmunk shape. Enabling it adds the
// shape for the owner's facing to the space; disabling removes it.
type ShapeHitbox struct {
	ps      *PhysicsSpace
	owner   Entity
	shapes  [2]*cp.Shape
	left    bool
	enabled bool
}

func (h *ShapeHitbox) SetEnabled(enabled bool) {
	if h == nil || h.ps == nil || h.shapes[0] == nil || h.enabled == enabled {
		return
	}
	if enabled {
		h.add()
	} else {
		h.remove()
	}
	h.enabled = enabled
}

func (h *ShapeHitbox) Enabled() bool {
	return h != nil && h.enabled
}

// Shape returns the shape for the current facing.
func (h *ShapeHitbox) Shape() *cp.Shape {
	if h == nil {
		return nil
	}
	if h.left {
		return h.shapes[1]
	}
	return h.shapes[0]
}

func (h *ShapeHitbox) setFacing(left bool) {
	if h.left == left {
		return
	}
	if h.enabled {
		h.remove()
	}
	h.left = left
	if h.enabled {
		h.add()
	}
}

func (h *ShapeHitbox) add() {
	shape := h.Shape()
	h.ps.space.AddShape(shape)
	h.ps.shapeToEntity[shape] = h.owner
}

func (h *ShapeHitbox) remove() {
	shape := h.Shape()
	h.ps.space.RemoveShape(shape)
	delete(h.ps.shapeToEntity, shape)
}
