package component

import (
	"fmt"
	"sort"
	"strings"
)

// PayloadKind is the serialized type tag of a payload variant.
type PayloadKind string

const (
	PayloadToggleHitbox PayloadKind = "toggle_hitbox"
	PayloadToggleTracer PayloadKind = "toggle_tracer"
	PayloadScript       PayloadKind = "script"
	PayloadLua          PayloadKind = "lua"
)

// Payload is one gameplay side effect attached to an animation event.
// Execute may only mutate objects owned by the receiver.
type Payload interface {
	Kind() PayloadKind
	Execute(r *Receiver) error
}

// PayloadFactory returns a zero payload ready to be decoded into.
type PayloadFactory func() Payload

var payloadRegistry = map[PayloadKind]PayloadFactory{
	PayloadToggleHitbox: func() Payload { return &ToggleHitbox{} },
	PayloadToggleTracer: func() Payload { return &ToggleTracer{} },
	PayloadScript:       func() Payload { return &ScriptPayload{} },
	PayloadLua:          func() Payload { return &LuaPayload{} },
}

// RegisterPayload adds a payload variant to the registry. Registration is
// expected during program initialization, before any data is loaded.
func RegisterPayload(kind PayloadKind, factory PayloadFactory) error {
	k := PayloadKind(strings.TrimSpace(string(kind)))
	if k == "" || factory == nil {
		return fmt.Errorf("register payload %q: invalid registration", kind)
	}
	if _, ok := payloadRegistry[k]; ok {
		return fmt.Errorf("register payload %q: already registered", k)
	}
	payloadRegistry[k] = factory
	return nil
}

// NewPayload creates an empty payload for a registered kind.
func NewPayload(kind PayloadKind) (Payload, error) {
	factory, ok := payloadRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("payload %q: %w", kind, ErrUnknownPayload)
	}
	return factory(), nil
}

// PayloadKinds lists registered kinds in sorted order.
func PayloadKinds() []PayloadKind {
	kinds := make([]PayloadKind, 0, len(payloadRegistry))
	for k := range payloadRegistry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ToggleHitbox enables or disables a named hitbox on the receiver.
type ToggleHitbox struct {
	Hitbox string `yaml:"hitbox"`
	Enable bool   `yaml:"enable"`

	cache hitboxCache
}

// hitboxCache holds the resolved target for the receiver it came from.
type hitboxCache struct {
	receiver *Receiver
	target   Hittable
}

func (p *ToggleHitbox) Kind() PayloadKind { return PayloadToggleHitbox }

func (p *ToggleHitbox) Execute(r *Receiver) error {
	if p == nil {
		return nil
	}
	if r == nil {
		return ErrNilReceiver
	}
	if p.cache.receiver != r || p.cache.target == nil {
		p.cache = hitboxCache{}
		target, ok := r.Resolve(p.Hitbox)
		if !ok {
			return fmt.Errorf("hitbox %q: %w", p.Hitbox, ErrTargetNotFound)
		}
		p.cache = hitboxCache{receiver: r, target: target}
	}
	p.cache.target.SetEnabled(p.Enable)
	return nil
}

// Invalidate drops the cached target so the next Execute resolves again.
func (p *ToggleHitbox) Invalidate() {
	if p == nil {
		return
	}
	p.cache = hitboxCache{}
}

// ToggleTracer switches the receiver's debug tracer.
type ToggleTracer struct {
	Enable bool `yaml:"enable"`
}

func (p *ToggleTracer) Kind() PayloadKind { return PayloadToggleTracer }

func (p *ToggleTracer) Execute(r *Receiver) error {
	if p == nil {
		return nil
	}
	if r == nil {
		return ErrNilReceiver
	}
	tracer := r.Tracer()
	if tracer == nil {
		return ErrNoTracer
	}
	if p.Enable {
		tracer.EnableDrawer()
	} else {
		tracer.DisableDrawer()
	}
	return nil
}
