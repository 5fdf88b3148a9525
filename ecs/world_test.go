package ecs

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/animevents/ecs/component"
)

func TestEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("second DestroyEntity should return false")
				}
			}
		})
	}
}

func TestEntitySlotReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	reused := CreateEntity(w)
	if reused.id() != old.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), reused.id())
	}
	if reused == old {
		t.Fatalf("expected a new generation for reused slot")
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle should not be alive")
	}
	if Has(w, reused, h.Kind()) {
		t.Fatalf("reused entity should not inherit components")
	}
	if err := Add(w, old, h.Kind(), intPtr(2)); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive for stale handle, got %v", err)
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestComponentsAndQueries(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) },
		},
		{
			name:  "replace_value",
			setup: func() error { return Add(w, e2, h1.Kind(), intPtr(7)) },
			check: func(t *testing.T) {
				if err := Add(w, e2, h1.Kind(), intPtr(8)); err != nil {
					t.Fatal(err)
				}
				v, _ := Get(w, e2, h1.Kind())
				if *v != 8 {
					t.Fatalf("expected replaced value 8, got %d", *v)
				}
			},
			teardown: func() bool { return Remove(w, e2, h1.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	t.Run("invalid_inputs", func(t *testing.T) {
		if err := Add(w, e1, h1.Kind(), nil); !errors.Is(err, component.ErrNilComponent) {
			t.Fatalf("expected ErrNilComponent, got %v", err)
		}
		if got := h1.Kind().String(); got != "int" {
			t.Fatalf("expected kind named int, got %q", got)
		}
		var zero component.ComponentKind[int]
		if zero.String() != "<invalid>" {
			t.Fatalf("expected zero kind to be unnamed, got %q", zero.String())
		}
		if err := Add(w, e1, zero, intPtr(1)); !errors.Is(err, component.ErrInvalidComponentKind) {
			t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
		}
		if Remove(w, e1, h1.Kind()) {
			t.Fatalf("removing an absent component should return false")
		}
	})
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	seen := map[Entity]int{}
	ForEach(w, h.Kind(), func(e Entity, v *int) { seen[e] = *v })

	if seen[e1] != 1 || seen[e3] != 3 {
		t.Fatalf("unexpected ForEach result %v", seen)
	}
	if _, ok := seen[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}
}

func TestForEach3(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				for _, add := range []func() error{
					func() error { return Add(w, e1, ka, intPtr(1)) },
					func() error { return Add(w, e2, ka, intPtr(2)) },
					func() error { return Add(w, e2, kb, intPtr(3)) },
					func() error { return Add(w, e2, kc, intPtr(5)) },
					func() error { return Add(w, e3, kb, intPtr(4)) },
				} {
					if err := add(); err != nil {
						t.Fatal(err)
					}
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 1 || res[0] != e2 {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kb, intPtr(2)); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e, kc, intPtr(3)); err != nil {
					t.Fatal(err)
				}

				if !DestroyEntity(w, e) {
					t.Fatal("failed to destroy entity")
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty result after destroy, got %v", res)
				}
			},
		},
		{
			name: "missing_store_returns_nil",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				if err := Add(w, e, ka, intPtr(1)); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty when other store missing, got %v", res)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

type countingSystem struct {
	calls int
	push  bool
}

func (s *countingSystem) Update(w *World) {
	s.calls++
	if s.push {
		w.Events().Push(Event{Type: "tick"})
	}
}

func TestWorldUpdateRunsSystemsAndFlushesEvents(t *testing.T) {
	w := NewWorld()
	first := &countingSystem{push: true}
	var seen int
	second := &peekSystem{fn: func(w *World) { seen = len(w.Events().Peek()) }}
	w.AddSystem(first)
	w.AddSystem(second)
	w.AddSystem(nil)

	w.Update()
	w.Update()

	if first.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", first.calls)
	}
	if seen != 1 {
		t.Fatalf("expected later system to see 1 queued event, got %d", seen)
	}
	if got := w.Events().Drain(); got != nil {
		t.Fatalf("expected events flushed after update, got %v", got)
	}
}

type peekSystem struct {
	fn func(w *World)
}

func (s *peekSystem) Update(w *World) { s.fn(w) }

func TestShapeHitboxTogglesSpaceMembership(t *testing.T) {
	w := NewWorld()
	ps := NewPhysicsSpace()
	w.SetPhysics(ps)
	e := CreateEntity(w)

	box := ps.NewShapeHitbox(e, cp.NewBBForExtents(cp.Vector{X: 10}, 8, 4))
	if box == nil {
		t.Fatal("expected hitbox")
	}
	if box.Enabled() || ps.ActiveShapes() != 0 {
		t.Fatalf("hitbox should start disabled")
	}

	box.SetEnabled(true)
	box.SetEnabled(true)
	if !box.Enabled() || ps.ActiveShapes() != 1 {
		t.Fatalf("expected one active shape, got %d", ps.ActiveShapes())
	}
	if owner, ok := ps.Owner(box.Shape()); !ok || owner != e {
		t.Fatalf("expected owner %v, got %v ok=%v", e, owner, ok)
	}

	ps.SyncBody(e, 100, 50)
	if pos := ps.Body(e).Position(); pos.X != 100 || pos.Y != 50 {
		t.Fatalf("expected body at (100,50), got %v", pos)
	}
	ps.Step(1.0 / 60.0)

	box.SetEnabled(false)
	if box.Enabled() || ps.ActiveShapes() != 0 {
		t.Fatalf("expected shape removed after disable")
	}

	box.SetEnabled(true)
	ps.RemoveOwner(e)
	if ps.ActiveShapes() != 0 {
		t.Fatalf("expected RemoveOwner to drop shapes")
	}
}

func TestShapeHitboxFollowsFacing(t *testing.T) {
	ps := NewPhysicsSpace()
	w := NewWorld()
	w.SetPhysics(ps)
	e := CreateEntity(w)

	box := ps.NewShapeHitbox(e, cp.NewBBForExtents(cp.Vector{X: 10}, 8, 4))
	ps.SyncBody(e, 100, 50)

	cases := []struct {
		name    string
		left    bool
		enabled bool
		wantL   float64
		wantR   float64
	}{
		{"right_disabled", false, false, 102, 118},
		{"left_disabled", true, false, 82, 98},
		{"left_enabled", true, true, 82, 98},
		{"right_enabled", false, true, 102, 118},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			box.SetEnabled(tc.enabled)
			ps.SetFacing(e, tc.left)

			bb := box.Shape().CacheBB()
			if bb.L != tc.wantL || bb.R != tc.wantR || bb.B != 46 || bb.T != 54 {
				t.Fatalf("expected x span [%v, %v], got %v", tc.wantL, tc.wantR, bb)
			}
			want := 0
			if tc.enabled {
				want = 1
			}
			if ps.ActiveShapes() != want {
				t.Fatalf("expected %d active shapes, got %d", want, ps.ActiveShapes())
			}
			if owner, ok := ps.Owner(box.Shape()); ok != tc.enabled || (ok && owner != e) {
				t.Fatalf("unexpected owner lookup %v ok=%v", owner, ok)
			}
		})
	}
}

func TestNilPhysicsSpaceIsSafe(t *testing.T) {
	var ps *PhysicsSpace
	if ps.NewShapeHitbox(1, cp.BB{}) != nil {
		t.Fatalf("expected nil hitbox from nil space")
	}
	ps.Step(1)
	ps.SyncBody(1, 0, 0)
	ps.SetFacing(1, true)
	var box *ShapeHitbox
	box.SetEnabled(true)
	if box.Enabled() {
		t.Fatalf("nil hitbox should not be enabled")
	}
}
