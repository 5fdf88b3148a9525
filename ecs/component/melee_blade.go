package component

// MeleeBlade describes a swung weapon relative to the entity transform. The
// blade angle sweeps from StartAngle to EndAngle over one pass of the
// animation named by Anim.
type MeleeBlade struct {
	Anim       string
	HiltX      float64
	HiltY      float64
	Length     float64
	StartAngle float64
	EndAngle   float64
}

// Angle returns the blade angle at normalized time t, clamped to [0, 1].
func (b *MeleeBlade) Angle(t float64) float64 {
	if b == nil {
		return 0
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return b.StartAngle + (b.EndAngle-b.StartAngle)*t
}

var MeleeBladeComponent = NewComponent[MeleeBlade]()
