package component

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"
)

// LuaPayload runs a Lua chunk against the receiver. It exposes the same
// globals as ScriptPayload: enable_hitbox, hitbox_enabled, tracer and log.
type LuaPayload struct {
	Script string `yaml:"script,omitempty"`
	Source string `yaml:"source,omitempty"`

	state   *lua.State
	current *Receiver
}

func (p *LuaPayload) Kind() PayloadKind { return PayloadLua }

func (p *LuaPayload) Execute(r *Receiver) error {
	if p == nil {
		return nil
	}
	if r == nil {
		return ErrNilReceiver
	}
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("lua %s: %w: empty source", p.label(), ErrScriptFailed)
	}
	if p.state == nil {
		p.state = p.newState()
	}
	p.current = r
	defer func() { p.current = nil }()
	if err := lua.DoString(p.state, p.Source); err != nil {
		return fmt.Errorf("lua %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	return nil
}

// Compile checks that the chunk parses without running it.
func (p *LuaPayload) Compile() error {
	if p == nil {
		return nil
	}
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("lua %s: %w: empty source", p.label(), ErrScriptFailed)
	}
	if err := lua.LoadString(lua.NewState(), p.Source); err != nil {
		return fmt.Errorf("lua %s: %w: %v", p.label(), ErrScriptFailed, err)
	}
	return nil
}

func (p *LuaPayload) label() string {
	if p.Script != "" {
		return p.Script
	}
	return "<inline>"
}

func (p *LuaPayload) newState() *lua.State {
	l := lua.NewState()
	lua.OpenLibraries(l)

	l.Register("enable_hitbox", func(l *lua.State) int {
		name := lua.CheckString(l, 1)
		if err := setHitbox(p.current, name, l.ToBoolean(2)); err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
		l.PushBoolean(true)
		return 1
	})
	l.Register("hitbox_enabled", func(l *lua.State) int {
		hb, ok := p.current.Resolve(lua.CheckString(l, 1))
		l.PushBoolean(ok && hb.Enabled())
		return 1
	})
	l.Register("tracer", func(l *lua.State) int {
		if err := setTracer(p.current, l.ToBoolean(1)); err != nil {
			lua.Errorf(l, "%s", err.Error())
		}
		l.PushBoolean(true)
		return 1
	})
	l.Register("log", func(l *lua.State) int {
		logger.Printf("animevents: lua: %s", lua.CheckString(l, 1))
		return 0
	})
	return l
}
