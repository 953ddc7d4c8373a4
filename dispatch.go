package jseval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/ports"
)

// Invoke finalizes ec, transmits the expression through the channel and decodes the
// result into T. An empty result yields the zero value; json.RawMessage receives it verbatim.
func Invoke[T any](ctx context.Context, ec *EvalContext) (T, error) {
	var zero T
	script, err := ec.prepare()
	if err != nil {
		return zero, err
	}
	raw, err := ec.dispatch(ctx, domain.ModeAsync, script)
	if err != nil {
		return zero, err
	}
	return decode[T](raw)
}

// InvokeScript transmits script instead of the recorded expression.
func InvokeScript[T any](ctx context.Context, ec *EvalContext, script string) (T, error) {
	var zero T
	raw, err := ec.dispatch(ctx, domain.ModeAsync, script)
	if err != nil {
		return zero, err
	}
	return decode[T](raw)
}

// InvokeSync is Invoke over a blocking call. The channel must implement ports.DirectChannel.
func InvokeSync[T any](ec *EvalContext) (T, error) {
	var zero T
	script, err := ec.prepare()
	if err != nil {
		return zero, err
	}
	raw, err := ec.dispatch(context.Background(), domain.ModeSync, script)
	if err != nil {
		return zero, err
	}
	return decode[T](raw)
}

// InvokeScriptSync is InvokeScript over a blocking call.
func InvokeScriptSync[T any](ec *EvalContext, script string) (T, error) {
	var zero T
	raw, err := ec.dispatch(context.Background(), domain.ModeSync, script)
	if err != nil {
		return zero, err
	}
	return decode[T](raw)
}

// InvokeVoid transmits the recorded expression and discards the result.
func (ec *EvalContext) InvokeVoid(ctx context.Context) error {
	_, err := Invoke[json.RawMessage](ctx, ec)
	return err
}

// InvokeScriptVoid transmits script and discards the result.
func (ec *EvalContext) InvokeScriptVoid(ctx context.Context, script string) error {
	_, err := InvokeScript[json.RawMessage](ctx, ec, script)
	return err
}

// InvokeVoidSync transmits the recorded expression over a blocking call and discards the result.
func (ec *EvalContext) InvokeVoidSync() error {
	_, err := InvokeSync[json.RawMessage](ec)
	return err
}

// Close releases the context. When nothing was dispatched explicitly the expression is
// finalized and sent in the background; failures of that send are only logged.
// Close returns the recorder error, if any, and never dispatches a failed expression.
func (ec *EvalContext) Close() error {
	if ec.dispatched || ec.channel == nil {
		return nil
	}
	script, err := ec.prepare()
	if err != nil {
		return err
	}
	ec.dispatched = true

	channel := ec.channel
	go func() {
		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				ec.logger.Error("implicit dispatch panicked", "script", script, "panic", r)
			}
		}()

		_, err := ec.transmit(ctx, domain.ModeImplicit, script, func() (json.RawMessage, error) {
			return channel.InvokeAsync(ctx, ports.EntryPoint, script)
		})
		if err != nil {
			ec.logger.Warn("implicit dispatch failed", "script", script, "err", err)
		}
	}()
	return nil
}

func (ec *EvalContext) prepare() (string, error) {
	ec.finalize()
	if ec.err != nil {
		return "", ec.err
	}
	return ec.text, nil
}

func (ec *EvalContext) dispatch(ctx context.Context, mode domain.Mode, script string) (json.RawMessage, error) {
	if ec.channel == nil {
		return nil, domain.ErrNoChannel
	}

	call := func() (json.RawMessage, error) {
		return ec.channel.InvokeAsync(ctx, ports.EntryPoint, script)
	}
	if mode == domain.ModeSync {
		direct, ok := ec.channel.(ports.DirectChannel)
		if !ok {
			return nil, domain.ErrSynchronousCallUnavailable
		}
		call = func() (json.RawMessage, error) {
			return direct.Invoke(ports.EntryPoint, script)
		}
	}

	ec.dispatched = true
	raw, err := ec.transmit(ctx, mode, script, call)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch script: %w", err)
	}
	return raw, nil
}

// transmit only reads configuration fixed at construction, so the implicit path may run it
// from another goroutine.
func (ec *EvalContext) transmit(ctx context.Context, mode domain.Mode, script string, call func() (json.RawMessage, error)) (json.RawMessage, error) {
	if ec.settings.EnableDebugLogging {
		ec.sink.Record(ctx, ports.EntryPoint, script)
	}

	event := &domain.DispatchEvent{
		Timestamp:  time.Now(),
		Identifier: ports.EntryPoint,
		Script:     script,
		Mode:       mode,
	}
	if ec.hooks.OnDispatch != nil {
		ec.hooks.OnDispatch(ctx, event)
	}

	raw, err := call()

	event.Duration = time.Since(event.Timestamp)
	event.Err = err
	if ec.hooks.OnComplete != nil {
		ec.hooks.OnComplete(ctx, event)
	}
	return raw, err
}

func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode result: %w", err)
	}
	return out, nil
}
