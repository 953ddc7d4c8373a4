package jseval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/jseval/pkg/domain"
	"github.com/aretw0/jseval/pkg/literal"
	"github.com/aretw0/jseval/pkg/ports"
	"github.com/aretw0/jseval/pkg/settings"
)

// EvalContext records symbolic JavaScript operations into an expression and dispatches
// it to a Channel. Every operation returns the receiver for chaining and becomes a no-op
// once the context is finalized or an operation failed.
//
// An EvalContext is not safe for concurrent use.
type EvalContext struct {
	channel  ports.Channel
	settings settings.Settings
	logger   *slog.Logger
	sink     ports.Sink
	hooks    domain.Hooks

	script      strings.Builder
	expression  func(*EvalContext)
	building    bool
	finalized   bool
	dispatched  bool
	text        string
	invocations int
	err         error
}

// Option defines a functional option for configuring an EvalContext.
type Option func(*EvalContext)

// WithSettings replaces the default settings.
func WithSettings(s settings.Settings) Option {
	return func(ec *EvalContext) {
		ec.settings = s
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ec *EvalContext) {
		ec.logger = logger
	}
}

// WithSink sets the diagnostic sink used when debug logging is enabled.
func WithSink(sink ports.Sink) Option {
	return func(ec *EvalContext) {
		ec.sink = sink
	}
}

// WithHooks registers observability hooks. Repeated use chains them.
func WithHooks(hooks domain.Hooks) Option {
	return func(ec *EvalContext) {
		ec.hooks = ec.hooks.Merge(hooks)
	}
}

// New creates an EvalContext that dispatches through channel.
func New(channel ports.Channel, opts ...Option) *EvalContext {
	ec := &EvalContext{
		channel:  channel,
		settings: settings.Default(),
	}
	for _, opt := range opts {
		opt(ec)
	}

	if ec.logger == nil {
		ec.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if ec.sink == nil {
		ec.sink = logSink{logger: ec.logger}
	}
	return ec
}

// Expr creates an EvalContext without a channel, to be passed as an argument, index or
// value of another expression. It never dispatches.
func Expr(opts ...Option) *EvalContext {
	return New(nil, opts...)
}

// Member appends a member access.
func (ec *EvalContext) Member(name string) *EvalContext {
	if ec.pending() {
		ec.segment(name)
	}
	return ec
}

// Assign appends an assignment to the named member.
func (ec *EvalContext) Assign(name string, value any) *EvalContext {
	if ec.pending() {
		ec.segment(name)
		ec.script.WriteString(" = ")
		ec.script.WriteString(ec.format(value))
	}
	return ec
}

// Index appends an indexer. The key must be a nested expression, a raw literal, an integer
// or a string; any other kind records domain.ErrUnsupportedIndexKind.
func (ec *EvalContext) Index(key any) *EvalContext {
	if !ec.pending() {
		return ec
	}
	rendered, err := ec.indexKey(key)
	if err != nil {
		ec.fail(err)
		return ec
	}
	ec.script.WriteString("[" + rendered + "]")
	return ec
}

// AssignIndex appends an indexer assignment.
func (ec *EvalContext) AssignIndex(key, value any) *EvalContext {
	if ec.pending() {
		ec.script.WriteString("[" + ec.format(key) + "] = " + ec.format(value))
	}
	return ec
}

// Call appends a member invocation with each argument formatted independently.
// Under settings.SingleInvocation a second call records domain.ErrMultipleInvocationsNotSupported.
func (ec *EvalContext) Call(name string, args ...any) *EvalContext {
	if !ec.pending() {
		return ec
	}
	if ec.invocations > 0 && ec.settings.Invocations != settings.MultipleInvocations {
		ec.fail(fmt.Errorf("%w: %s", domain.ErrMultipleInvocationsNotSupported, name))
		return ec
	}
	ec.invocations++

	formatted := make([]string, len(args))
	for i, arg := range args {
		formatted[i] = ec.format(arg)
	}
	ec.segment(name + "(" + strings.Join(formatted, ", ") + ")")
	return ec
}

// Apply appends the identifier of a callable invocation, as in a declaration written
// with placeholders: Apply("var_chart").
func (ec *EvalContext) Apply(identifier string) *EvalContext {
	return ec.Member(identifier)
}

// Construct appends the identifier of an instance creation, as in Construct("new_Chart").
func (ec *EvalContext) Construct(identifier string) *EvalContext {
	return ec.Member(identifier)
}

// Expression defers building to fn, which runs once when the context is finalized.
func (ec *EvalContext) Expression(fn func(*EvalContext)) *EvalContext {
	if !ec.finalized {
		ec.expression = fn
	}
	return ec
}

// String finalizes the context and returns the expression. Later calls return the same text.
func (ec *EvalContext) String() string {
	if ec.building {
		return ec.script.String()
	}
	ec.finalize()
	return ec.text
}

// InlineScript lets the context be used as a value of another expression.
func (ec *EvalContext) InlineScript() string {
	return ec.String()
}

// Err returns the first error recorded by an operation, if any.
func (ec *EvalContext) Err() error {
	return ec.err
}

// Reset clears the expression, the deferred builder and every flag so the context can be reused.
func (ec *EvalContext) Reset() *EvalContext {
	ec.script.Reset()
	ec.expression = nil
	ec.building = false
	ec.finalized = false
	ec.dispatched = false
	ec.text = ""
	ec.invocations = 0
	ec.err = nil
	return ec
}

func (ec *EvalContext) pending() bool {
	return !ec.finalized && ec.err == nil
}

func (ec *EvalContext) segment(name string) {
	if ec.script.Len() > 0 {
		ec.script.WriteByte('.')
	}
	ec.script.WriteString(name)
}

func (ec *EvalContext) format(v any) string {
	return literal.Format(v, ec.settings)
}

func (ec *EvalContext) indexKey(key any) (string, error) {
	switch k := key.(type) {
	case *EvalContext:
		if k != nil {
			return k.InlineScript(), nil
		}
	case literal.Inline:
		return k.InlineScript(), nil
	case literal.Literal:
		return k.Value, nil
	case string:
		return literal.Quote(k), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(k), nil
	}
	return "", fmt.Errorf("%w: %T", domain.ErrUnsupportedIndexKind, key)
}

func (ec *EvalContext) fail(err error) {
	if ec.err == nil {
		ec.err = err
	}
	ec.logger.Debug("expression operation rejected", "err", err)
}

func (ec *EvalContext) finalize() {
	if ec.finalized || ec.building {
		return
	}
	if fn := ec.expression; fn != nil {
		ec.expression = nil
		ec.building = true
		fn(ec)
		ec.building = false
	}

	ec.finalized = true
	text := ec.script.String()
	if ec.settings.PlaceholderActive() {
		text = strings.ReplaceAll(text, ec.settings.SpacePlaceholder, " ")
	}
	ec.text = text
}

type logSink struct {
	logger *slog.Logger
}

func (s logSink) Record(ctx context.Context, identifier, script string) {
	s.logger.DebugContext(ctx, "transmitting script", "identifier", identifier, "script", script)
}
