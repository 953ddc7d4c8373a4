package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/aretw0/jseval/pkg/ports"
)

// Call is one invocation received by a Channel.
type Call struct {
	Identifier string
	Args       []any
	Sync       bool
}

// Script returns the first argument when it is a string, as sent to ports.EntryPoint.
func (c Call) Script() string {
	if len(c.Args) == 0 {
		return ""
	}
	s, _ := c.Args[0].(string)
	return s
}

// Responder produces the reply to a call.
type Responder func(call Call) (json.RawMessage, error)

// Channel implements ports.DirectChannel by recording every call in memory.
// Safe for concurrent use.
type Channel struct {
	mu        sync.RWMutex
	calls     []Call
	responder Responder
	notify    chan struct{}
}

// Option configures a Channel.
type Option func(*Channel)

// WithResult replies to every call with raw.
func WithResult(raw json.RawMessage) Option {
	return func(c *Channel) {
		c.responder = func(Call) (json.RawMessage, error) { return raw, nil }
	}
}

// WithError fails every call with err.
func WithError(err error) Option {
	return func(c *Channel) {
		c.responder = func(Call) (json.RawMessage, error) { return nil, err }
	}
}

// WithResponder computes replies with fn.
func WithResponder(fn Responder) Option {
	return func(c *Channel) {
		c.responder = fn
	}
}

// NewChannel creates a recording channel. Without options every call replies with an empty result.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		notify: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InvokeAsync records the call unless ctx is already done.
func (c *Channel) InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.record(Call{Identifier: identifier, Args: args})
}

// Invoke records a blocking call.
func (c *Channel) Invoke(identifier string, args ...any) (json.RawMessage, error) {
	return c.record(Call{Identifier: identifier, Args: args, Sync: true})
}

// Calls returns a copy of the calls received so far.
func (c *Channel) Calls() []Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.calls)
}

// Scripts returns the script of every call received so far.
func (c *Channel) Scripts() []string {
	calls := c.Calls()
	scripts := make([]string, len(calls))
	for i, call := range calls {
		scripts[i] = call.Script()
	}
	return scripts
}

// Received is signaled after each call is recorded.
func (c *Channel) Received() <-chan struct{} {
	return c.notify
}

// Reset forgets every recorded call.
func (c *Channel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *Channel) record(call Call) (json.RawMessage, error) {
	call.Args = slices.Clone(call.Args)

	c.mu.Lock()
	c.calls = append(c.calls, call)
	responder := c.responder
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}

	if responder == nil {
		return nil, nil
	}
	return responder(call)
}

type asyncOnly struct {
	ports.Channel
}

// AsyncOnly hides the blocking call of ch, leaving only ports.Channel.
func AsyncOnly(ch ports.Channel) ports.Channel {
	return asyncOnly{Channel: ch}
}
