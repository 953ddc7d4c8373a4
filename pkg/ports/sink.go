package ports

import "context"

// Sink receives every script right before it is transmitted.
// Record must not block dispatch for long and must not fail it; implementations
// report their own problems.
type Sink interface {
	Record(ctx context.Context, identifier, script string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, identifier, script string)

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, identifier, script string) {
	f(ctx, identifier, script)
}
