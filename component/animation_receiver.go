package component

import (
	"fmt"
	"sort"
	"strings"
)

// Hittable is a named gameplay target that payloads can switch on and off.
type Hittable interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

// Tracer is an optional debug visualizer attached to a receiver.
type Tracer interface {
	EnableDrawer()
	DisableDrawer()
}

// NamedHittable pairs an authored hitbox name with its target.
type NamedHittable struct {
	Name   string
	Target Hittable
}

// Receiver resolves named targets for animation event payloads. It is built
// once per entity and only read afterwards, so any number of schedulers may
// share it.
type Receiver struct {
	hitboxes map[string]Hittable
	tracer   Tracer
}

// NewReceiver builds a receiver from an authored hitbox list. Names must be
// non-empty and unique.
func NewReceiver(hitboxes []NamedHittable, tracer Tracer) (*Receiver, error) {
	r := &Receiver{
		hitboxes: make(map[string]Hittable, len(hitboxes)),
		tracer:   tracer,
	}
	for i, hb := range hitboxes {
		name := strings.TrimSpace(hb.Name)
		if name == "" {
			return nil, fmt.Errorf("receiver: hitbox %d: %w", i, ErrEmptyHitboxName)
		}
		if _, ok := r.hitboxes[name]; ok {
			return nil, fmt.Errorf("receiver: hitbox %q: %w", name, ErrDuplicateHitbox)
		}
		r.hitboxes[name] = hb.Target
	}
	return r, nil
}

// Resolve looks up a hitbox by name.
func (r *Receiver) Resolve(name string) (Hittable, bool) {
	if r == nil {
		return nil, false
	}
	hb, ok := r.hitboxes[name]
	if !ok || hb == nil {
		return nil, false
	}
	return hb, true
}

// Tracer returns the attached tracer, or nil.
func (r *Receiver) Tracer() Tracer {
	if r == nil {
		return nil
	}
	return r.tracer
}

// Names returns the registered hitbox names in sorted order.
func (r *Receiver) Names() []string {
	if r == nil || len(r.hitboxes) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.hitboxes))
	for name := range r.hitboxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReceiverProvider lazily supplies the receiver a scheduler should bind to.
// It may return nil when the entity has not finished initializing.
type ReceiverProvider func() *Receiver

// StaticReceiver returns a provider that always yields r.
func StaticReceiver(r *Receiver) ReceiverProvider {
	return func() *Receiver { return r }
}
