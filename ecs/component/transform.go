package component

import "github.com/jakecoffman/cp"

type Transform struct {
	X          float64
	Y          float64
	ScaleX     float64
	ScaleY     float64
	Rotation   float64
	FacingLeft bool
}

// Point maps a local offset to world space, mirroring X when facing left.
func (t *Transform) Point(offsetX, offsetY float64) cp.Vector {
	if t == nil {
		return cp.Vector{X: offsetX, Y: offsetY}
	}
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if t.FacingLeft {
		sx = -sx
	}
	return cp.Vector{X: t.X + offsetX*sx, Y: t.Y + offsetY*sy}
}

var TransformComponent = NewComponent[Transform]()
