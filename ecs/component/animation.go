package component

import (
	"github.com/hajimehoshi/ebiten/v2"
)

type AnimationDef struct {
	Name       string
	Row        int
	ColStart   int // start column (frame 0)
	FrameCount int
	FrameW     int
	FrameH     int
	FPS        float64
	Loop       bool
}

// Duration returns the clip length in ticks at 60 TPS.
func (d AnimationDef) Duration() int {
	return d.FrameCount * d.TicksPerFrame()
}

// TicksPerFrame returns how many 60 TPS ticks each frame is held for.
func (d AnimationDef) TicksPerFrame() int {
	if d.FPS <= 0 {
		return 1
	}
	ticks := int(60.0 / d.FPS)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// Animation is the playback state of an entity's current clip.
//
// NormalizedTime is the accumulated playback position in clip lengths: a
// looping clip reports 2.25 a quarter of the way through its third pass. A
// non-looping clip stops at 1.
type Animation struct {
	Sheet      *ebiten.Image
	Defs       map[string]AnimationDef
	Current    string
	Frame      int
	FrameTimer int
	Playing    bool

	Elapsed        int
	NormalizedTime float64
	// Plays counts Play calls, so replaying the current clip is visible.
	Plays int
}

// Play switches to the named clip and restarts it. Unknown names are ignored.
func (a *Animation) Play(name string) bool {
	if a == nil {
		return false
	}
	if _, ok := a.Defs[name]; !ok {
		return false
	}
	a.Current = name
	a.Frame = 0
	a.FrameTimer = 0
	a.Elapsed = 0
	a.NormalizedTime = 0
	a.Playing = true
	a.Plays++
	return true
}

var AnimationComponent = NewComponent[Animation]()
