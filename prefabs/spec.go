package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/milk9111/animevents/component"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the only event-set file version this package reads and the
// one it writes.
const SchemaVersion = 1

var (
	ErrUnsupportedVersion = errors.New("prefabs: unsupported schema version")
	ErrMissingType        = errors.New("prefabs: payload without type")
)

// LoadSpec reads a prefab file and decodes it into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// CharacterSpec is an authored character: its hitbox receiver, animation
// clips, optional melee blade and per-state animation events.
type CharacterSpec struct {
	Version   int                  `yaml:"version"`
	Name      string               `yaml:"name,omitempty"`
	Receiver  ReceiverSpec         `yaml:"receiver"`
	Animation *AnimationSpec       `yaml:"animation,omitempty"`
	Blade     *MeleeBladeSpec      `yaml:"blade,omitempty"`
	States    map[string]StateSpec `yaml:"states"`
}

type ReceiverSpec struct {
	Hitboxes []HitboxSpec `yaml:"hitboxes"`
	Tracer   *TracerSpec  `yaml:"tracer,omitempty"`
}

type HitboxSpec struct {
	Name    string  `yaml:"name"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	OffsetX float64 `yaml:"offset_x,omitempty"`
	OffsetY float64 `yaml:"offset_y,omitempty"`
}

type TracerSpec struct {
	Resolution float64 `yaml:"resolution,omitempty"`
	MaxSteps   int     `yaml:"max_steps,omitempty"`
	DrawFrames int     `yaml:"draw_frames,omitempty"`
}

type AnimationSpec struct {
	Sheet   string                      `yaml:"sheet,omitempty"`
	Defs    map[string]AnimationDefSpec `yaml:"defs"`
	Current string                      `yaml:"current"`
	Playing bool                        `yaml:"playing"`
}

type AnimationDefSpec struct {
	Row        int     `yaml:"row,omitempty"`
	ColStart   int     `yaml:"col_start,omitempty"`
	FrameCount int     `yaml:"frame_count"`
	FrameW     int     `yaml:"frame_w,omitempty"`
	FrameH     int     `yaml:"frame_h,omitempty"`
	FPS        float64 `yaml:"fps"`
	Loop       bool    `yaml:"loop,omitempty"`
}

type MeleeBladeSpec struct {
	Anim       string  `yaml:"anim"`
	HiltX      float64 `yaml:"hilt_x,omitempty"`
	HiltY      float64 `yaml:"hilt_y,omitempty"`
	Length     float64 `yaml:"length"`
	StartAngle float64 `yaml:"start_angle"`
	EndAngle   float64 `yaml:"end_angle"`
}

type StateSpec struct {
	Timeline  []TimelineEventSpec  `yaml:"timeline,omitempty"`
	Lifecycle []LifecycleEventSpec `yaml:"lifecycle,omitempty"`
}

type TimelineEventSpec struct {
	Name     string        `yaml:"name"`
	Time     float64       `yaml:"time"`
	Payloads []*PayloadSpec `yaml:"payloads"`
}

type LifecycleEventSpec struct {
	Name     string        `yaml:"name"`
	Trigger  TriggerSpec   `yaml:"trigger"`
	Payloads []*PayloadSpec `yaml:"payloads"`
}

// TriggerSpec reads on_enter/on_exit or 0/1 and writes the names.
type TriggerSpec component.TriggerKind

func (t *TriggerSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: trigger must be a scalar", node.Line)
	}
	kind, err := component.ParseTriggerKind(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = TriggerSpec(kind)
	return nil
}

func (t TriggerSpec) MarshalYAML() (any, error) {
	return component.TriggerKind(t).String(), nil
}

// PayloadSpec is a tagged payload entry: a `type` key naming a registered
// payload kind plus that kind's fields. Event payload lists hold pointers so
// a null entry decodes to a nil element and encodes back as null.
type PayloadSpec struct {
	Payload component.Payload
}

func (p *PayloadSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: payload must be a mapping", node.Line)
	}
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	if head.Type == "" {
		return fmt.Errorf("line %d: %w", node.Line, ErrMissingType)
	}
	payload, err := component.NewPayload(component.PayloadKind(head.Type))
	if err != nil {
		return fmt.Errorf("line %d: %w (known kinds: %s)", node.Line, err, knownPayloadKinds())
	}
	if err := node.Decode(payload); err != nil {
		return fmt.Errorf("line %d: decode %s payload: %w", node.Line, head.Type, err)
	}
	p.Payload = payload
	return nil
}

func (p PayloadSpec) MarshalYAML() (any, error) {
	if p.Payload == nil {
		return nil, nil
	}
	var node yaml.Node
	if err := node.Encode(authoredPayload(p.Payload)); err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("prefabs: %s payload does not encode to a mapping", p.Payload.Kind())
	}
	typeKey := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "type"}
	typeValue := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(p.Payload.Kind())}
	node.Content = append([]*yaml.Node{typeKey, typeValue}, node.Content...)
	return &node, nil
}

func knownPayloadKinds() string {
	kinds := component.PayloadKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// authoredPayload drops script text that was loaded from a file so encoding
// writes back the reference rather than the contents.
func authoredPayload(p component.Payload) component.Payload {
	switch v := p.(type) {
	case *component.ScriptPayload:
		if v.Script != "" {
			return &component.ScriptPayload{Script: v.Script}
		}
	case *component.LuaPayload:
		if v.Script != "" {
			return &component.LuaPayload{Script: v.Script}
		}
	}
	return p
}

// LoadCharacterSpec reads, resolves and validates a character prefab.
func LoadCharacterSpec(filename string) (*CharacterSpec, error) {
	spec, err := LoadSpec[CharacterSpec](filename)
	if err != nil {
		return nil, err
	}
	if err := spec.prepare(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return &spec, nil
}

// DecodeCharacterSpec parses a character prefab, loads referenced scripts and
// validates the result.
func DecodeCharacterSpec(data []byte) (*CharacterSpec, error) {
	var spec CharacterSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := spec.prepare(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// prepare checks the schema version, loads referenced scripts and validates.
func (s *CharacterSpec) prepare() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	if err := s.resolveScripts(); err != nil {
		return err
	}
	return s.Validate()
}

// Encode writes the spec as YAML at the current schema version.
func (s *CharacterSpec) Encode() ([]byte, error) {
	if s == nil {
		return nil, errors.New("prefabs: encode nil spec")
	}
	out := *s
	out.Version = SchemaVersion
	return yaml.Marshal(&out)
}

// Validate checks the receiver layout and every state's events against it.
// All problems are reported together.
func (s *CharacterSpec) Validate() error {
	receiver, _, err := s.BuildReceiver(func(h HitboxSpec) component.Hittable {
		return component.NewHitbox(h.Name, h.Width, h.Height, h.OffsetX, h.OffsetY)
	})
	if err != nil {
		return err
	}
	var errs []error
	if s.Animation != nil {
		for name, def := range s.Animation.Defs {
			if def.FrameCount <= 0 {
				errs = append(errs, fmt.Errorf("animation %q: frame_count must be positive", name))
			}
		}
		if s.Animation.Current != "" {
			if _, ok := s.Animation.Defs[s.Animation.Current]; !ok {
				errs = append(errs, fmt.Errorf("animation: current %q is not defined", s.Animation.Current))
			}
		}
		if s.Animation.Sheet != "" {
			if _, err := LoadSheet(s.Animation.Sheet); err != nil {
				errs = append(errs, fmt.Errorf("animation: sheet %s: %w", s.Animation.Sheet, err))
			}
		}
	}
	for _, set := range s.EventSets() {
		if err := set.Validate(receiver); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildReceiver creates the receiver described by the spec. newTarget makes
// the hittable for each authored hitbox. The tracer is nil when the spec has
// none.
func (s *CharacterSpec) BuildReceiver(newTarget func(HitboxSpec) component.Hittable) (*component.Receiver, *component.MeleeTracer, error) {
	named := make([]component.NamedHittable, 0, len(s.Receiver.Hitboxes))
	for _, h := range s.Receiver.Hitboxes {
		named = append(named, component.NamedHittable{Name: h.Name, Target: newTarget(h)})
	}
	var (
		tracer      *component.MeleeTracer
		tracerIface component.Tracer
	)
	if t := s.Receiver.Tracer; t != nil {
		tracer = component.NewMeleeTracer(t.Resolution, t.MaxSteps, t.DrawFrames)
		tracerIface = tracer
	}
	receiver, err := component.NewReceiver(named, tracerIface)
	if err != nil {
		return nil, nil, fmt.Errorf("receiver: %w", err)
	}
	return receiver, tracer, nil
}

// EventSets converts the authored states into runtime event sets, ordered by
// state name. Times are clamped to [0, 1]; authored event order is kept.
func (s *CharacterSpec) EventSets() []*component.StateEventSet {
	names := make([]string, 0, len(s.States))
	for name := range s.States {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]*component.StateEventSet, 0, len(names))
	for _, name := range names {
		state := s.States[name]
		set := &component.StateEventSet{State: name}
		for i, evt := range state.Timeline {
			set.Timeline = append(set.Timeline, component.NewTimelineEvent(eventName(evt.Name, "timeline", i), evt.Time, payloads(evt.Payloads)...))
		}
		for i, evt := range state.Lifecycle {
			set.Lifecycle = append(set.Lifecycle, component.LifecycleEvent{
				Name:     eventName(evt.Name, "lifecycle", i),
				Trigger:  component.TriggerKind(evt.Trigger),
				Payloads: payloads(evt.Payloads),
			})
		}
		sets = append(sets, set)
	}
	return sets
}

// StateSet returns the runtime event set for one state.
func (s *CharacterSpec) StateSet(state string) (*component.StateEventSet, bool) {
	if _, ok := s.States[state]; !ok {
		return nil, false
	}
	for _, set := range s.EventSets() {
		if set.State == state {
			return set, true
		}
	}
	return nil, false
}

func (s *CharacterSpec) resolveScripts() error {
	for name, state := range s.States {
		for i := range state.Timeline {
			if err := resolvePayloadScripts(state.Timeline[i].Payloads); err != nil {
				return fmt.Errorf("state %q: timeline %d: %w", name, i, err)
			}
		}
		for i := range state.Lifecycle {
			if err := resolvePayloadScripts(state.Lifecycle[i].Payloads); err != nil {
				return fmt.Errorf("state %q: lifecycle %d: %w", name, i, err)
			}
		}
	}
	return nil
}

func resolvePayloadScripts(specs []*PayloadSpec) error {
	for _, p := range specs {
		if p == nil {
			continue
		}
		switch v := p.Payload.(type) {
		case *component.ScriptPayload:
			if v.Script == "" || v.Source != "" {
				continue
			}
			src, err := LoadScript(v.Script)
			if err != nil {
				return fmt.Errorf("load script %s: %w", v.Script, err)
			}
			v.Source = string(src)
		case *component.LuaPayload:
			if v.Script == "" || v.Source != "" {
				continue
			}
			src, err := LoadScript(v.Script)
			if err != nil {
				return fmt.Errorf("load script %s: %w", v.Script, err)
			}
			v.Source = string(src)
		}
	}
	return nil
}

func payloads(specs []*PayloadSpec) []component.Payload {
	if len(specs) == 0 {
		return nil
	}
	out := make([]component.Payload, len(specs))
	for i, p := range specs {
		if p != nil {
			out[i] = p.Payload
		}
	}
	return out
}

func eventName(name, section string, index int) string {
	if name != "" {
		return name
	}
	return section + "#" + strconv.Itoa(index)
}
