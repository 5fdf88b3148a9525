package component

import (
	"errors"
	"testing"
)

func TestScriptPayload(t *testing.T) {
	sword := &Hitbox{ID: "sword"}
	tracer := &countingTracer{}
	r, _ := NewReceiver([]NamedHittable{{"sword", sword}}, tracer)

	cases := []struct {
		name    string
		payload Payload
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name:    "tengo_enables_hitbox_and_tracer",
			payload: &ScriptPayload{Source: `receiver.enable_hitbox("sword", true); receiver.tracer(true)`},
			check: func(t *testing.T) {
				if !sword.Active || tracer.enabled != 1 {
					t.Fatalf("expected sword active and tracer enabled, got %v %+v", sword.Active, tracer)
				}
			},
		},
		{
			name: "tengo_reads_hitbox_state",
			payload: &ScriptPayload{Source: `
if receiver.hitbox_enabled("sword") {
	receiver.enable_hitbox("sword", false)
}`},
			check: func(t *testing.T) {
				if sword.Active {
					t.Fatalf("expected script to switch sword off")
				}
			},
		},
		{
			name:    "tengo_missing_hitbox",
			payload: &ScriptPayload{Source: `receiver.enable_hitbox("axe", true)`},
			wantErr: true,
		},
		{
			name:    "tengo_syntax_error",
			payload: &ScriptPayload{Script: "broken.tengo", Source: `receiver.enable_hitbox(`},
			wantErr: true,
		},
		{
			name:    "lua_enables_hitbox",
			payload: &LuaPayload{Source: `if not hitbox_enabled("sword") then enable_hitbox("sword", true) end`},
			check: func(t *testing.T) {
				if !sword.Active {
					t.Fatalf("expected lua to enable sword")
				}
			},
		},
		{
			name:    "lua_disables_tracer",
			payload: &LuaPayload{Source: `tracer(false)`},
			check: func(t *testing.T) {
				if tracer.disabled != 1 {
					t.Fatalf("expected tracer disabled once, got %+v", tracer)
				}
			},
		},
		{
			name:    "lua_missing_hitbox",
			payload: &LuaPayload{Source: `enable_hitbox("axe", true)`},
			wantErr: true,
		},
		{
			name:    "empty_source",
			payload: &LuaPayload{},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.payload.Execute(r)
			if c.wantErr {
				if !errors.Is(err, ErrScriptFailed) {
					t.Fatalf("expected ErrScriptFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.check != nil {
				c.check(t)
			}
		})
	}
}

func TestScriptPayloadReusesCompiledScript(t *testing.T) {
	sword := &Hitbox{ID: "sword"}
	r1, _ := NewReceiver([]NamedHittable{{"sword", sword}}, nil)
	other := &Hitbox{ID: "other"}
	r2, _ := NewReceiver([]NamedHittable{{"sword", other}}, nil)

	p := &ScriptPayload{Source: `receiver.enable_hitbox("sword", true)`}
	if err := p.Execute(r1); err != nil {
		t.Fatal(err)
	}
	compiled := p.compiled
	if err := p.Execute(r2); err != nil {
		t.Fatal(err)
	}
	if p.compiled != compiled {
		t.Fatalf("expected compiled script to be reused")
	}
	if !sword.Active || !other.Active {
		t.Fatalf("expected each receiver's hitbox enabled")
	}
}

func TestScriptPayloadCompile(t *testing.T) {
	if err := (&ScriptPayload{Source: `x := 1`}).Compile(); err != nil {
		t.Fatalf("expected valid tengo script, got %v", err)
	}
	if err := (&ScriptPayload{Source: `x := (`}).Compile(); !errors.Is(err, ErrScriptFailed) {
		t.Fatalf("expected compile failure, got %v", err)
	}
	if err := (&LuaPayload{Source: `local x = 1`}).Compile(); err != nil {
		t.Fatalf("expected valid lua chunk, got %v", err)
	}
	if err := (&LuaPayload{Source: `local x = (`}).Compile(); !errors.Is(err, ErrScriptFailed) {
		t.Fatalf("expected lua compile failure, got %v", err)
	}
}
