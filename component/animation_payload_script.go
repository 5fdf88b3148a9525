package component

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptPayload runs a tengo script against the receiver. Script names the
// authored script file; Source holds its text once loaded.
//
// The script sees a `receiver` map with enable_hitbox(name, on),
// hitbox_enabled(name), tracer(on) and log(msg).
type ScriptPayload struct {
	Script string `yaml:"script,omitempty"`
	Source string `yaml:"source,omitempty"`

	compiled    *tengo.Compiled
	compiledSrc string
}

func (p *ScriptPayload) Kind() PayloadKind { return PayloadScript }

func (p *ScriptPayload) Execute(r *Receiver) error {
	if p == nil {
		return nil
	}
	if r == nil {
		return ErrNilReceiver
	}
	if err := p.compile(); err != nil {
		return err
	}
	if err := p.compiled.Set("receiver", buildScriptReceiver(r)); err != nil {
		return fmt.Errorf("script %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	if err := p.compiled.Run(); err != nil {
		return fmt.Errorf("script %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	return nil
}

// Compile checks that the script parses. It is safe to call repeatedly.
func (p *ScriptPayload) Compile() error {
	if p == nil {
		return nil
	}
	return p.compile()
}

func (p *ScriptPayload) compile() error {
	if p.compiled != nil && p.compiledSrc == p.Source {
		return nil
	}
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("script %s: %w: empty source", p.label(), ErrScriptFailed)
	}
	script := tengo.NewScript([]byte(p.Source))
	if err := script.Add("receiver", map[string]any{}); err != nil {
		return fmt.Errorf("script %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("script %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	p.compiled = compiled
	p.compiledSrc = p.Source
	return nil
}

func (p *ScriptPayload) label() string {
	if p.Script != "" {
		return p.Script
	}
	return "<inline>"
}

func buildScriptReceiver(r *Receiver) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["enable_hitbox"] = &tengo.UserFunction{Name: "enable_hitbox", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		if err := setHitbox(r, objectAsString(args[0]), !args[1].IsFalsy()); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	}}

	values["hitbox_enabled"] = &tengo.UserFunction{Name: "hitbox_enabled", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		hb, ok := r.Resolve(objectAsString(args[0]))
		if !ok || !hb.Enabled() {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["tracer"] = &tengo.UserFunction{Name: "tracer", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if err := setTracer(r, !args[0].IsFalsy()); err != nil {
			return nil, err
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		logger.Printf("animevents: script: %s", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// setHitbox is the receiver operation shared by the scripted payloads.
func setHitbox(r *Receiver, name string, enabled bool) error {
	name = strings.TrimSpace(name)
	hb, ok := r.Resolve(name)
	if !ok {
		return fmt.Errorf("hitbox %q: %w", name, ErrTargetNotFound)
	}
	hb.SetEnabled(enabled)
	return nil
}

func setTracer(r *Receiver, enabled bool) error {
	tracer := r.Tracer()
	if tracer == nil {
		return ErrNoTracer
	}
	if enabled {
		tracer.EnableDrawer()
	} else {
		tracer.DisableDrawer()
	}
	return nil
}
