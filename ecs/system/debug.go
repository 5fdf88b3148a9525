package system

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
)

const debugStrokeWidth = 1

// DrawHitboxDebug outlines the hitbox shapes currently enabled in the world's
// physics space.
func DrawHitboxDebug(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64) {
	ps := w.Physics()
	if ps == nil || screen == nil {
		return
	}
	if zoom <= 0 {
		zoom = 1
	}
	cp.DrawSpace(ps.Space(), &hitboxDebugDrawer{screen: screen, camX: camX, camY: camY, zoom: zoom})
}

// DrawAnimationStateDebug prints each entity's active animation state and
// the last sampled position of its scheduler.
func DrawAnimationStateDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	var lines []string
	ecs.ForEach(w, component.AnimationEventsComponent.Kind(), func(e ecs.Entity, events *component.AnimationEvents) {
		last := events.Scheduler(events.Active).LastNormalizedTime()
		lines = append(lines, fmt.Sprintf("%s: %s @ %.3f", e, stateLabel(events.Active), last))
	})
	sort.Strings(lines)
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), 10, 10)
}

func stateLabel(state string) string {
	if state == "" {
		return "none"
	}
	return state
}

type hitboxDebugDrawer struct {
	screen *ebiten.Image
	camX   float64
	camY   float64
	zoom   float64
}

func (d *hitboxDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	vector.StrokeCircle(d.screen, float32((pos.X-d.camX)*d.zoom), float32((pos.Y-d.camY)*d.zoom), float32(radius*d.zoom), debugStrokeWidth, toNRGBA(outline), true)
}

func (d *hitboxDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *hitboxDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
}

func (d *hitboxDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	for i := 0; i < count; i++ {
		d.drawLine(verts[i], verts[(i+1)%count], outline)
	}
}

func (d *hitboxDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {}

func (d *hitboxDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *hitboxDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *hitboxDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.6, G: 0.1, B: 0.1, A: 0.5}
}

func (d *hitboxDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *hitboxDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 1, B: 0.2, A: 0.9}
}

func (d *hitboxDebugDrawer) Data() interface{} {
	return nil
}

func (d *hitboxDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1 := float32((a.X - d.camX) * d.zoom)
	y1 := float32((a.Y - d.camY) * d.zoom)
	x2 := float32((b.X - d.camX) * d.zoom)
	y2 := float32((b.Y - d.camY) * d.zoom)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, debugStrokeWidth, toNRGBA(c), true)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
