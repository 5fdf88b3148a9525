package entity

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	anim "github.com/milk9111/animevents/component"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
	"github.com/milk9111/animevents/prefabs"
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":        addTransform,
	"animation":        addAnimation,
	"receiver":         addReceiver,
	"animation_events": addAnimationEvents,
	"melee_blade":      addMeleeBlade,
}

// The receiver must exist before animation events so the first Enter binds it.
var componentBuildOrder = []string{
	"transform",
	"animation",
	"receiver",
	"animation_events",
	"melee_blade",
}

// BuildCharacter creates an entity from a character prefab.
func BuildCharacter(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadCharacterSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildCharacterFromSpec(w, spec, prefabPath)
}

// BuildCharacterFromSpec creates an entity from an already loaded spec.
func BuildCharacterFromSpec(w *ecs.World, spec *prefabs.CharacterSpec, prefabPath string) (ecs.Entity, error) {
	if w == nil || spec == nil {
		return 0, fmt.Errorf("build entity: world and spec are required")
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	for _, name := range componentBuildOrder {
		builder, ok := componentRegistry[name]
		if !ok {
			destroy(w, e)
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, spec, ctx); err != nil {
			destroy(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

// ReloadCharacterEvents swaps an entity's animation events for the ones in
// spec. The active state exits first and is entered again on the next update.
// A spec without states removes the component. The receiver is kept, so
// hitbox layout changes need a rebuild.
func ReloadCharacterEvents(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec) error {
	if spec == nil {
		return fmt.Errorf("reload entity: spec is nil")
	}
	if !ecs.IsAlive(w, e) {
		return fmt.Errorf("reload entity %s: not alive", e)
	}

	events, ok := ecs.Get(w, e, component.AnimationEventsComponent.Kind())
	switch {
	case len(spec.States) == 0:
		if ok {
			events.Replace()
			ecs.Remove(w, e, component.AnimationEventsComponent.Kind())
		}
		return nil
	case !ok:
		return addAnimationEvents(w, e, spec, nil)
	default:
		events.Replace(spec.EventSets()...)
		return nil
	}
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func destroy(w *ecs.World, e ecs.Entity) {
	w.Physics().RemoveOwner(e)
	ecs.DestroyEntity(w, e)
}

func addTransform(w *ecs.World, e ecs.Entity, _ *prefabs.CharacterSpec, _ *buildContext) error {
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{ScaleX: 1, ScaleY: 1})
}

func addAnimation(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec, _ *buildContext) error {
	if spec.Animation == nil {
		return nil
	}
	defs := make(map[string]component.AnimationDef, len(spec.Animation.Defs))
	for name, d := range spec.Animation.Defs {
		defs[name] = component.AnimationDef{
			Name:       name,
			Row:        d.Row,
			ColStart:   d.ColStart,
			FrameCount: d.FrameCount,
			FrameW:     d.FrameW,
			FrameH:     d.FrameH,
			FPS:        d.FPS,
			Loop:       d.Loop,
		}
	}
	a := &component.Animation{Defs: defs}
	if spec.Animation.Current != "" {
		a.Play(spec.Animation.Current)
		a.Playing = spec.Animation.Playing
	}
	if err := ecs.Add(w, e, component.AnimationComponent.Kind(), a); err != nil {
		return err
	}
	if spec.Animation.Sheet == "" {
		return nil
	}

	img, err := prefabs.LoadSheet(spec.Animation.Sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", spec.Animation.Sheet, err)
	}
	a.Sheet = ebiten.NewImageFromImage(img)

	// Frames are drawn around their center.
	sprite := &component.Sprite{}
	if def, ok := defs[a.Current]; ok {
		sprite.OriginX = float64(def.FrameW) / 2
		sprite.OriginY = float64(def.FrameH) / 2
	}
	return ecs.Add(w, e, component.SpriteComponent.Kind(), sprite)
}

func addReceiver(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec, _ *buildContext) error {
	ps := w.Physics()
	boxes := make([]*anim.Hitbox, 0, len(spec.Receiver.Hitboxes))
	receiver, tracer, err := spec.BuildReceiver(func(h prefabs.HitboxSpec) anim.Hittable {
		box := anim.NewHitbox(h.Name, h.Width, h.Height, h.OffsetX, h.OffsetY)
		boxes = append(boxes, box)
		if ps == nil {
			return box
		}
		return linkedHittable{box, ps.NewShapeHitbox(e, box.Rect)}
	})
	if err != nil {
		return err
	}
	if err := ecs.Add(w, e, component.HitboxComponent.Kind(), &component.Hitboxes{Boxes: boxes}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.EventReceiverComponent.Kind(), &component.EventReceiver{Receiver: receiver, Tracer: tracer})
}

func addAnimationEvents(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec, _ *buildContext) error {
	if len(spec.States) == 0 {
		return nil
	}
	return ecs.Add(w, e, component.AnimationEventsComponent.Kind(), component.NewAnimationEvents(spec.EventSets()...))
}

func addMeleeBlade(w *ecs.World, e ecs.Entity, spec *prefabs.CharacterSpec, _ *buildContext) error {
	b := spec.Blade
	if b == nil {
		return nil
	}
	return ecs.Add(w, e, component.MeleeBladeComponent.Kind(), &component.MeleeBlade{
		Anim:       b.Anim,
		HiltX:      b.HiltX,
		HiltY:      b.HiltY,
		Length:     b.Length,
		StartAngle: b.StartAngle,
		EndAngle:   b.EndAngle,
	})
}

// linkedHittable keeps a combat hitbox and its physics shape in step.
type linkedHittable struct {
	box   *anim.Hitbox
	shape *ecs.ShapeHitbox
}

func (l linkedHittable) SetEnabled(enabled bool) {
	l.box.SetEnabled(enabled)
	l.shape.SetEnabled(enabled)
}

func (l linkedHittable) Enabled() bool {
	return l.box.Enabled()
}
