package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
	engine "github.com/dop251/goja"
)

// Runtime implements ports.DirectChannel on top of an embedded goja interpreter.
// Calls are serialized; the interpreter is single threaded.
type Runtime struct {
	mu      sync.Mutex
	vm      *engine.Runtime
	logger  *slog.Logger
	globals map[string]any
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger routes console output of scripts to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithGlobal exposes a Go value to scripts under name.
func WithGlobal(name string, value any) Option {
	return func(r *Runtime) {
		r.globals[name] = value
	}
}

// New creates an interpreter with ports.Bootstrap installed.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		vm:      engine.New(),
		globals: make(map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r.vm.SetFieldNameMapper(engine.TagFieldNameMapper("json", true))
	if err := r.vm.Set("console", r.console()); err != nil {
		return nil, fmt.Errorf("failed to install console: %w", err)
	}
	for name, value := range r.globals {
		if err := r.vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("failed to set global %s: %w", name, err)
		}
	}
	if _, err := r.vm.RunString(ports.Bootstrap); err != nil {
		return nil, fmt.Errorf("failed to bootstrap runtime: %w", err)
	}
	return r, nil
}

// Invoke calls identifier and waits for it without a deadline.
func (r *Runtime) Invoke(identifier string, args ...any) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.call(identifier, args)
}

// InvokeAsync calls identifier and interrupts the script when ctx is done.
func (r *Runtime) InvokeAsync(ctx context.Context, identifier string, args ...any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		r.vm.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
			r.vm.ClearInterrupt()
		}
	}()

	raw, err := r.call(identifier, args)
	var ie *engine.InterruptedError
	if errors.As(err, &ie) {
		return nil, fmt.Errorf("evaluation interrupted: %w", ctx.Err())
	}
	return raw, err
}

func (r *Runtime) call(identifier string, args []any) (json.RawMessage, error) {
	fn, this, err := r.resolve(identifier)
	if err != nil {
		return nil, err
	}

	values := make([]engine.Value, len(args))
	for i, arg := range args {
		values[i] = r.vm.ToValue(arg)
	}

	result, err := fn(this, values...)
	if err != nil {
		var ie *engine.InterruptedError
		if errors.As(err, &ie) {
			return nil, err
		}
		return nil, fmt.Errorf("script error: %w", err)
	}
	return export(result)
}

// resolve walks a dotted path from the global object to a function.
func (r *Runtime) resolve(identifier string) (engine.Callable, engine.Value, error) {
	var (
		this    engine.Value = engine.Undefined()
		current engine.Value = r.vm.GlobalObject()
	)
	for _, part := range strings.Split(identifier, ".") {
		if current == nil || engine.IsUndefined(current) || engine.IsNull(current) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrEntryPointNotFound, identifier)
		}
		this = current
		current = current.ToObject(r.vm).Get(part)
	}

	fn, ok := engine.AssertFunction(current)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrEntryPointNotFound, identifier)
	}
	return fn, this, nil
}

func export(v engine.Value) (json.RawMessage, error) {
	if v == nil || engine.IsUndefined(v) || engine.IsNull(v) {
		return json.RawMessage("null"), nil
	}
	if _, ok := engine.AssertFunction(v); ok {
		return json.RawMessage("null"), nil
	}
	data, err := json.Marshal(v.Export())
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

func (r *Runtime) console() map[string]any {
	write := func(level slog.Level) func(engine.FunctionCall) engine.Value {
		return func(call engine.FunctionCall) engine.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			r.logger.Log(context.Background(), level, strings.Join(parts, " "), "source", "console")
			return engine.Undefined()
		}
	}
	return map[string]any{
		"log":   write(slog.LevelInfo),
		"info":  write(slog.LevelInfo),
		"debug": write(slog.LevelDebug),
		"warn":  write(slog.LevelWarn),
		"error": write(slog.LevelError),
	}
}
