package prefabs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milk9111/animevents/component"
)

func init() {
	component.SetLogger(nil)
}

func embeddedOnly(t *testing.T) {
	t.Helper()
	prev := DiskDir()
	SetDiskDir("")
	t.Cleanup(func() { SetDiskDir(prev) })
}

func TestLoadKnight(t *testing.T) {
	embeddedOnly(t)

	spec, err := LoadCharacterSpec("prefabs/knight.yaml")
	if err != nil {
		t.Fatalf("load knight: %v", err)
	}

	sets := spec.EventSets()
	if len(sets) != 2 || sets[0].State != "attack" || sets[1].State != "kick" {
		t.Fatalf("unexpected sets %+v", sets)
	}

	attack := sets[0]
	names := []string{}
	for _, evt := range attack.Timeline {
		names = append(names, evt.Name)
	}
	if strings.Join(names, ",") != "swing_start,swing_peak,swing_end" {
		t.Fatalf("expected authored order, got %v", names)
	}

	peak := attack.Timeline[1]
	if len(peak.Payloads) != 2 || peak.Payloads[0] != nil {
		t.Fatalf("expected null payload kept as nil, got %v", peak.Payloads)
	}
	script, ok := peak.Payloads[1].(*component.ScriptPayload)
	if !ok || script.Script != "knight_peak.tengo" || !strings.Contains(script.Source, "receiver.hitbox_enabled") {
		t.Fatalf("expected resolved tengo script, got %+v", peak.Payloads[1])
	}

	exit := attack.Lifecycle[1]
	if exit.Trigger != component.TriggerOnExit {
		t.Fatalf("expected on_exit trigger, got %v", exit.Trigger)
	}
	if lua, ok := exit.Payloads[1].(*component.LuaPayload); !ok || lua.Source == "" {
		t.Fatalf("expected resolved lua script, got %+v", exit.Payloads[1])
	}

	if kick := sets[1]; kick.Lifecycle[0].Trigger != component.TriggerOnExit {
		t.Fatalf("expected numeric trigger 1 to mean on_exit")
	}

	if spec.Animation == nil || spec.Animation.Defs["attack"].FrameCount != 6 {
		t.Fatalf("expected animation defs, got %+v", spec.Animation)
	}
}

func TestNullPayloadEntries(t *testing.T) {
	spec, err := DecodeCharacterSpec([]byte(`version: 1
receiver:
  hitboxes: [{name: sword}, {name: kick}]
states:
  attack:
    timeline:
      - name: strike
        time: 0.5
        payloads:
          - null
          - {type: toggle_hitbox, hitbox: sword, enable: true}
          - ~
          - {type: toggle_hitbox, hitbox: kick, enable: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	set, _ := spec.StateSet("attack")
	got := set.Timeline[0].Payloads
	if len(got) != 4 || got[0] != nil || got[2] != nil || got[1] == nil || got[3] == nil {
		t.Fatalf("expected authored positions kept with nil entries, got %v", got)
	}

	// Only sword exists at runtime, so the kick entry fails at its authored index.
	sword := component.NewHitbox("sword", 8, 8, 0, 0)
	receiver, err := component.NewReceiver([]component.NamedHittable{{Name: "sword", Target: sword}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	var fires []component.Fire
	sched := component.NewStateEventScheduler(set)
	sched.Emitter = &component.FireEmitter{Handlers: []component.FireHandler{func(f component.Fire) {
		fires = append(fires, f)
	}}}
	sched.Enter(component.StaticReceiver(receiver))
	sched.Update(0.5)

	if !sword.Enabled() {
		t.Fatalf("expected the entry after the null to run")
	}
	if len(fires) != 1 || !errors.Is(fires[0].Err, component.ErrTargetNotFound) {
		t.Fatalf("expected one not-found fire, got %+v", fires)
	}
	if !strings.Contains(fires[0].Err.Error(), "payload 3 (toggle_hitbox)") {
		t.Fatalf("expected error at authored index 3, got %v", fires[0].Err)
	}

	data, err := spec.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "- null"); n != 2 {
		t.Fatalf("expected both null entries encoded, got %d:\n%s", n, data)
	}
	again, err := DecodeCharacterSpec(data)
	if err != nil {
		t.Fatal(err)
	}
	set, _ = again.StateSet("attack")
	if len(set.Timeline[0].Payloads) != 4 {
		t.Fatalf("expected null entries to survive a round trip, got %v", set.Timeline[0].Payloads)
	}
}

func TestLoadSheet(t *testing.T) {
	embeddedOnly(t)

	img, err := LoadSheet("knight.png")
	if err != nil {
		t.Fatalf("load sheet: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 192 || b.Dy() != 96 {
		t.Fatalf("expected a 6x3 grid of 32px frames, got %v", b)
	}
	if _, err := LoadSheet("prefabs/sprites/knight.png"); err != nil {
		t.Fatalf("expected prefixed path to resolve: %v", err)
	}
}

func TestDecodeCharacterSpecErrors(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unsupported_version",
			yaml:    "version: 2\nstates: {}\n",
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing_sheet",
			yaml:    "version: 1\nanimation:\n  sheet: ghost.png\n  defs:\n    idle: {frame_count: 1, fps: 8}\nstates: {}\n",
			wantErr: fs.ErrNotExist,
		},
		{
			name:    "missing_version",
			yaml:    "states: {}\n",
			wantErr: ErrUnsupportedVersion,
		},
		{
			name: "unknown_payload_type",
			yaml: `version: 1
states:
  attack:
    timeline:
      - {name: a, time: 0.5, payloads: [{type: explode}]}
`,
			wantErr: component.ErrUnknownPayload,
			wantMsg: "known kinds: lua, script, toggle_hitbox, toggle_tracer",
		},
		{
			name: "payload_without_type",
			yaml: `version: 1
states:
  attack:
    timeline:
      - {name: a, time: 0.5, payloads: [{hitbox: sword}]}
`,
			wantErr: ErrMissingType,
		},
		{
			name: "bad_trigger",
			yaml: `version: 1
states:
  attack:
    lifecycle:
      - {name: a, trigger: sometimes, payloads: []}
`,
			wantMsg: "unknown trigger",
		},
		{
			name: "duplicate_hitbox",
			yaml: `version: 1
receiver:
  hitboxes: [{name: sword}, {name: sword}]
states: {}
`,
			wantErr: component.ErrDuplicateHitbox,
		},
		{
			name: "empty_hitbox_name",
			yaml: `version: 1
receiver:
  hitboxes: [{name: "  "}]
states: {}
`,
			wantErr: component.ErrEmptyHitboxName,
		},
		{
			name: "unknown_hitbox_reference",
			yaml: `version: 1
receiver:
  hitboxes: [{name: sword}]
states:
  attack:
    timeline:
      - {name: a, time: 0.5, payloads: [{type: toggle_hitbox, hitbox: axe, enable: true}]}
`,
			wantErr: component.ErrTargetNotFound,
		},
		{
			name: "tracer_payload_without_tracer",
			yaml: `version: 1
states:
  attack:
    lifecycle:
      - {name: a, trigger: on_enter, payloads: [{type: toggle_tracer, enable: true}]}
`,
			wantErr: component.ErrNoTracer,
		},
		{
			name: "inline_script_syntax_error",
			yaml: `version: 1
states:
  attack:
    timeline:
      - {name: a, time: 0.5, payloads: [{type: script, source: "receiver.log("}]}
`,
			wantErr: component.ErrScriptFailed,
		},
		{
			name: "undefined_current_animation",
			yaml: `version: 1
animation:
  current: run
  defs:
    idle: {frame_count: 2, fps: 8}
states: {}
`,
			wantMsg: "current \"run\"",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCharacterSpec([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected message containing %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestDecodeClampsTimes(t *testing.T) {
	spec, err := DecodeCharacterSpec([]byte(`version: 1
states:
  attack:
    timeline:
      - {name: early, time: -0.5, payloads: []}
      - {time: 1.5, payloads: []}
`))
	if err != nil {
		t.Fatal(err)
	}
	set, ok := spec.StateSet("attack")
	if !ok {
		t.Fatal("expected attack set")
	}
	if set.Timeline[0].Time != 0 || set.Timeline[1].Time != 1 {
		t.Fatalf("expected clamped times, got %v and %v", set.Timeline[0].Time, set.Timeline[1].Time)
	}
	if set.Timeline[1].Name != "timeline#1" {
		t.Fatalf("expected generated name for unnamed event, got %q", set.Timeline[1].Name)
	}
	if _, ok := spec.StateSet("missing"); ok {
		t.Fatal("did not expect a set for an unknown state")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	embeddedOnly(t)

	spec, err := LoadCharacterSpec("knight.yaml")
	if err != nil {
		t.Fatal(err)
	}
	spec.Version = 0

	data, err := spec.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"version: 1",
		"type: toggle_hitbox",
		"script: knight_peak.tengo",
		"trigger: on_exit",
		"- null",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("encoded spec missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "receiver.hitbox_enabled") {
		t.Fatalf("encoded spec should reference scripts, not inline them:\n%s", text)
	}

	again, err := DecodeCharacterSpec(data)
	if err != nil {
		t.Fatalf("decode encoded spec: %v", err)
	}
	a, _ := spec.StateSet("attack")
	b, _ := again.StateSet("attack")
	if len(a.Timeline) != len(b.Timeline) || len(a.Lifecycle) != len(b.Lifecycle) {
		t.Fatalf("round trip changed event counts")
	}
	for i := range a.Timeline {
		if a.Timeline[i].Name != b.Timeline[i].Name || a.Timeline[i].Time != b.Timeline[i].Time {
			t.Fatalf("timeline %d differs: %+v vs %+v", i, a.Timeline[i], b.Timeline[i])
		}
	}
	toggle, ok := b.Timeline[0].Payloads[0].(*component.ToggleHitbox)
	if !ok || toggle.Hitbox != "sword" || !toggle.Enable {
		t.Fatalf("unexpected decoded payload %+v", b.Timeline[0].Payloads[0])
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	prev := DiskDir()
	SetDiskDir(dir)
	t.Cleanup(func() { SetDiskDir(prev) })

	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	override := `version: 1
receiver:
  hitboxes: [{name: sword}]
states:
  attack:
    timeline:
      - {name: local, time: 0.5, payloads: [{type: lua, script: local.lua}]}
`
	if err := os.WriteFile(filepath.Join(dir, "knight.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "local.lua"), []byte(`enable_hitbox("sword", true)`), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadCharacterSpec("knight.yaml")
	if err != nil {
		t.Fatal(err)
	}
	set, ok := spec.StateSet("attack")
	if !ok || len(set.Timeline) != 1 || set.Timeline[0].Name != "local" {
		t.Fatalf("expected disk override to win, got %+v", set)
	}

	data, err := LoadScript("prefabs/scripts/knight_peak.tengo")
	if err != nil || len(data) == 0 {
		t.Fatalf("expected embedded fallback for scripts missing on disk, err=%v", err)
	}
}

func TestList(t *testing.T) {
	names, err := List()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range names {
		if n == "knight.yaml" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected knight.yaml in %v", names)
	}
}
