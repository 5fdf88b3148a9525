package component

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"
)

const (
	defaultTraceResolution = 4.0
	defaultTraceMaxSteps   = 20
	defaultTraceDrawFrames = 30
	traceStrokeWidth       = 2
)

// TraceSegment is one recorded blade position.
type TraceSegment struct {
	Start    cp.Vector
	End      cp.Vector
	Keyframe bool
	TTL      int
}

// MeleeTracer records the sweep of a blade while its drawer is enabled and
// draws the recorded positions for a few frames. It implements Tracer.
type MeleeTracer struct {
	Resolution float64
	MaxSteps   int
	DrawFrames int

	drawing    bool
	firstFrame bool
	prevStart  cp.Vector
	prevEnd    cp.Vector
	segments   []TraceSegment
}

// NewMeleeTracer creates a tracer. Non-positive arguments fall back to
// defaults.
func NewMeleeTracer(resolution float64, maxSteps, drawFrames int) *MeleeTracer {
	if resolution <= 0 {
		resolution = defaultTraceResolution
	}
	if maxSteps <= 0 {
		maxSteps = defaultTraceMaxSteps
	}
	if drawFrames <= 0 {
		drawFrames = defaultTraceDrawFrames
	}
	return &MeleeTracer{Resolution: resolution, MaxSteps: maxSteps, DrawFrames: drawFrames}
}

func (t *MeleeTracer) EnableDrawer() {
	if t == nil {
		return
	}
	t.drawing = true
	t.firstFrame = true
}

func (t *MeleeTracer) DisableDrawer() {
	if t == nil {
		return
	}
	t.drawing = false
}

// Drawing reports whether the drawer is enabled.
func (t *MeleeTracer) Drawing() bool {
	return t != nil && t.drawing
}

// Sample records the blade from start (hilt) to end (tip) for this frame.
// Between the previous and current sample it inserts sub-steps so fast
// swings stay continuous: the hilt moves linearly, the blade direction is
// spherically interpolated, and the step count follows the tip travel.
func (t *MeleeTracer) Sample(start, end cp.Vector) {
	if t == nil || !t.drawing {
		return
	}
	if !t.firstFrame {
		steps := int(math.Ceil(t.prevEnd.Distance(end) / t.resolution()))
		if steps < 1 {
			steps = 1
		}
		if t.MaxSteps > 0 && steps > t.MaxSteps {
			steps = t.MaxSteps
		}
		prevDir := t.prevEnd.Sub(t.prevStart)
		currDir := end.Sub(start)
		for i := 1; i <= steps; i++ {
			f := float64(i) / float64(steps)
			subStart := t.prevStart.Lerp(start, f)
			subEnd := subStart.Add(prevDir.SLerp(currDir, f))
			t.segments = append(t.segments, TraceSegment{
				Start:    subStart,
				End:      subEnd,
				Keyframe: i == steps,
				TTL:      t.drawFrames(),
			})
		}
	}
	t.prevStart = start
	t.prevEnd = end
	t.firstFrame = false
}

// Tick ages recorded segments and drops expired ones.
func (t *MeleeTracer) Tick() {
	if t == nil || len(t.segments) == 0 {
		return
	}
	kept := t.segments[:0]
	for _, s := range t.segments {
		s.TTL--
		if s.TTL > 0 {
			kept = append(kept, s)
		}
	}
	t.segments = kept
}

// Segments returns a copy of the live segments.
func (t *MeleeTracer) Segments() []TraceSegment {
	if t == nil || len(t.segments) == 0 {
		return nil
	}
	return append([]TraceSegment(nil), t.segments...)
}

// Draw strokes the live segments onto screen using the camera transform.
func (t *MeleeTracer) Draw(screen *ebiten.Image, camX, camY, zoom float64) {
	if t == nil || screen == nil || len(t.segments) == 0 {
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	for _, s := range t.segments {
		var clr color.Color = colornames.Red
		if !s.Keyframe {
			clr = dimColor(colornames.Yellow)
		}
		x1 := float32((s.Start.X - camX) * zoom)
		y1 := float32((s.Start.Y - camY) * zoom)
		x2 := float32((s.End.X - camX) * zoom)
		y2 := float32((s.End.Y - camY) * zoom)
		vector.StrokeLine(screen, x1, y1, x2, y2, traceStrokeWidth, clr, true)
	}
}

func (t *MeleeTracer) resolution() float64 {
	if t.Resolution <= 0 {
		return defaultTraceResolution
	}
	return t.Resolution
}

func (t *MeleeTracer) drawFrames() int {
	if t.DrawFrames <= 0 {
		return defaultTraceDrawFrames
	}
	return t.DrawFrames
}

// dimColor halves a premultiplied color.
func dimColor(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A / 2}
}
