package component

import "errors"

var (
	ErrTargetNotFound  = errors.New("animevents: target not found")
	ErrNoTracer        = errors.New("animevents: receiver has no tracer")
	ErrNilReceiver     = errors.New("animevents: receiver is nil")
	ErrDuplicateHitbox = errors.New("animevents: duplicate hitbox name")
	ErrEmptyHitboxName = errors.New("animevents: empty hitbox name")
	ErrUnknownPayload  = errors.New("animevents: unknown payload type")
	ErrScriptFailed    = errors.New("animevents: payload script failed")
)
