package domain

import (
	"context"
	"time"
)

// Mode describes how a script reached the channel.
type Mode string

const (
	ModeAsync    Mode = "async"
	ModeSync     Mode = "sync"
	ModeImplicit Mode = "implicit"
)

// DispatchEvent describes a single transmission to the evaluation entry point.
type DispatchEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Identifier string        `json:"identifier"`
	Script     string        `json:"script"`
	Mode       Mode          `json:"mode"`
	Duration   time.Duration `json:"duration,omitempty"`
	Err        error         `json:"-"`
}

// Hooks defines callbacks for dispatch observability.
// OnComplete receives the same event with Duration and Err filled in.
type Hooks struct {
	OnDispatch func(context.Context, *DispatchEvent)
	OnComplete func(context.Context, *DispatchEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnDispatch: chain(h.OnDispatch, other.OnDispatch),
		OnComplete: chain(h.OnComplete, other.OnComplete),
	}
}

func chain(a, b func(context.Context, *DispatchEvent)) func(context.Context, *DispatchEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *DispatchEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
