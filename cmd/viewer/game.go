package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/animevents/ecs"
	"github.com/milk9111/animevents/ecs/component"
	"github.com/milk9111/animevents/ecs/entity"
	"github.com/milk9111/animevents/ecs/system"
	"github.com/milk9111/animevents/prefabs"
)

const (
	baseWidth  = 640
	baseHeight = 360
	zoom       = 2.0
)

var background = color.RGBA{0x1b, 0x1d, 0x24, 0xff}

// Game shows one character and lets the player trigger its clips.
type Game struct {
	frames int

	prefab    string
	world     *ecs.World
	character ecs.Entity
	idle      string

	watcher *prefabs.Watcher
}

func NewGame(prefab string) (*Game, error) {
	spec, err := prefabs.LoadCharacterSpec(prefab)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	w.SetPhysics(ecs.NewPhysicsSpace())
	w.AddSystem(system.NewAnimationSystem())
	w.AddSystem(system.NewAnimationEventSystem())
	w.AddSystem(system.NewMeleeTraceSystem())
	w.AddSystem(system.NewHitboxSyncSystem())

	e, err := entity.BuildCharacterFromSpec(w, spec, prefab)
	if err != nil {
		return nil, err
	}
	if err := entity.SetEntityTransform(w, e, baseWidth/(2*zoom), baseHeight/(2*zoom), 0); err != nil {
		return nil, err
	}

	g := &Game{prefab: prefab, world: w, character: e}
	if spec.Animation != nil {
		g.idle = spec.Animation.Current
	}
	return g, nil
}

// Watch reloads the character's animation events when prefab files change.
func (g *Game) Watch(dir string) error {
	watcher, err := prefabs.NewWatcher(dir)
	if err != nil {
		return err
	}
	g.watcher = watcher
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++

	g.pollReload()
	g.handleInput()
	g.world.Update()
	return nil
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			spec, err := prefabs.LoadCharacterSpec(g.prefab)
			if err != nil {
				log.Printf("viewer: reload %s: %v", change.Path, err)
				continue
			}
			if err := entity.ReloadCharacterEvents(g.world, g.character, spec); err != nil {
				log.Printf("viewer: reload %s: %v", change.Path, err)
				continue
			}
			log.Printf("viewer: reloaded events from %s", change.Path)
		case err := <-g.watcher.Errors:
			if err != nil {
				log.Printf("viewer: watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) handleInput() {
	a, ok := ecs.Get(g.world, g.character, component.AnimationComponent.Kind())
	if !ok {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyJ):
		a.Play("attack")
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		a.Play("kick")
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		if t, ok := ecs.Get(g.world, g.character, component.TransformComponent.Kind()); ok {
			t.FacingLeft = !t.FacingLeft
		}
	case !a.Playing && g.idle != "" && a.Current != g.idle:
		a.Play(g.idle)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	system.DrawSprites(g.world, screen, 0, 0, zoom)
	system.DrawHitboxDebug(g.world, screen, 0, 0, zoom)
	system.DrawMeleeTraces(g.world, screen, 0, 0, zoom)
	system.DrawAnimationStateDebug(g.world, screen)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("J attack  K kick  F flip    FPS: %.2f", ebiten.ActualFPS()), 10, baseHeight-20)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
