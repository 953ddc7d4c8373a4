package settings

import (
	"reflect"

	"github.com/iancoleman/strcase"
)

// DefaultSpacePlaceholder is substituted with a space when an expression is finalized.
const DefaultSpacePlaceholder = "_"

// NamingPolicy controls how Go field names become object literal keys.
type NamingPolicy string

const (
	CamelCase NamingPolicy = "camelCase"
	SnakeCase NamingPolicy = "snake_case"
	AsIs      NamingPolicy = "none"
)

// Apply converts a Go identifier according to the policy.
// Unknown policies leave the name untouched.
func (p NamingPolicy) Apply(name string) string {
	switch p {
	case CamelCase:
		return strcase.ToLowerCamel(name)
	case SnakeCase:
		return strcase.ToSnake(name)
	default:
		return name
	}
}

// InvocationPolicy decides whether an expression may record more than one member invocation.
type InvocationPolicy string

const (
	// SingleInvocation rejects a second Call with domain.ErrMultipleInvocationsNotSupported.
	SingleInvocation InvocationPolicy = "single"
	// MultipleInvocations appends every Call, even when the result is not valid JavaScript.
	MultipleInvocations InvocationPolicy = "multiple"
)

// Serialization configures structured object literals.
type Serialization struct {
	PropertyNaming NamingPolicy `mapstructure:"property_naming" json:"property_naming" yaml:"property_naming" toml:"property_naming"`
	OmitNulls      bool         `mapstructure:"omit_nulls" json:"omit_nulls" yaml:"omit_nulls" toml:"omit_nulls"`
}

// Settings is the configuration shared by recorders and the literal formatter.
// It is read-only once built; use New or Load to construct one.
type Settings struct {
	SpacePlaceholder             string           `mapstructure:"space_placeholder" json:"space_placeholder" yaml:"space_placeholder" toml:"space_placeholder"`
	EnablePlaceholderReplacement bool             `mapstructure:"enable_placeholder_replacement" json:"enable_placeholder_replacement" yaml:"enable_placeholder_replacement" toml:"enable_placeholder_replacement"`
	EnableDebugLogging           bool             `mapstructure:"enable_debug_logging" json:"enable_debug_logging" yaml:"enable_debug_logging" toml:"enable_debug_logging"`
	Invocations                  InvocationPolicy `mapstructure:"invocations" json:"invocations" yaml:"invocations" toml:"invocations"`
	Serialization                Serialization    `mapstructure:"serialization" json:"serialization" yaml:"serialization" toml:"serialization"`

	serializable map[reflect.Type]struct{}
	predicate    func(reflect.Type) bool
}

// Option defines a functional option for building Settings.
type Option func(*Settings)

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		SpacePlaceholder:             DefaultSpacePlaceholder,
		EnablePlaceholderReplacement: true,
		Invocations:                  SingleInvocation,
		Serialization: Serialization{
			PropertyNaming: CamelCase,
			OmitNulls:      true,
		},
	}
}

// New applies opts over Default.
func New(opts ...Option) Settings {
	s := Default()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// With returns a copy of s with opts applied. The receiver is not modified.
func (s Settings) With(opts ...Option) Settings {
	out := s
	out.serializable = make(map[reflect.Type]struct{}, len(s.serializable))
	for t := range s.serializable {
		out.serializable[t] = struct{}{}
	}
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// WithSpacePlaceholder sets the token replaced by a space at finalize.
func WithSpacePlaceholder(placeholder string) Option {
	return func(s *Settings) {
		s.SpacePlaceholder = placeholder
	}
}

// WithPlaceholderReplacement toggles placeholder substitution.
func WithPlaceholderReplacement(enabled bool) Option {
	return func(s *Settings) {
		s.EnablePlaceholderReplacement = enabled
	}
}

// WithDebugLogging forces every transmitted script to be written to the diagnostic sink.
func WithDebugLogging(enabled bool) Option {
	return func(s *Settings) {
		s.EnableDebugLogging = enabled
	}
}

// WithInvocationPolicy selects the multiple-invocation behavior.
func WithInvocationPolicy(p InvocationPolicy) Option {
	return func(s *Settings) {
		s.Invocations = p
	}
}

// WithSerialization replaces the structured serialization options.
func WithSerialization(opts Serialization) Option {
	return func(s *Settings) {
		s.Serialization = opts
	}
}

// WithSerializableTypes registers the dynamic types of samples as eligible for structured serialization.
// Pointer samples register their element type.
func WithSerializableTypes(samples ...any) Option {
	return func(s *Settings) {
		if s.serializable == nil {
			s.serializable = make(map[reflect.Type]struct{})
		}
		for _, sample := range samples {
			t := reflect.TypeOf(sample)
			if t == nil {
				continue
			}
			for t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			s.serializable[t] = struct{}{}
		}
	}
}

// WithSerializablePredicate installs a predicate consulted after the allow-list.
func WithSerializablePredicate(fn func(reflect.Type) bool) Option {
	return func(s *Settings) {
		s.predicate = fn
	}
}

// IsSerializable reports whether t was registered or matches the predicate.
func (s Settings) IsSerializable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if _, ok := s.serializable[t]; ok {
		return true
	}
	return s.predicate != nil && s.predicate(t)
}

// PlaceholderActive reports whether finalize should substitute placeholders.
func (s Settings) PlaceholderActive() bool {
	return s.EnablePlaceholderReplacement && s.SpacePlaceholder != ""
}
