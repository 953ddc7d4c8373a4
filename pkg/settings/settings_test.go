package settings_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aretw0/jseval/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chart struct {
	Title string
}

func TestDefault(t *testing.T) {
	s := settings.Default()

	assert.Equal(t, "_", s.SpacePlaceholder)
	assert.True(t, s.EnablePlaceholderReplacement)
	assert.False(t, s.EnableDebugLogging)
	assert.Equal(t, settings.SingleInvocation, s.Invocations)
	assert.Equal(t, settings.CamelCase, s.Serialization.PropertyNaming)
	assert.True(t, s.Serialization.OmitNulls)
	assert.True(t, s.PlaceholderActive())
}

func TestNew_Options(t *testing.T) {
	s := settings.New(
		settings.WithSpacePlaceholder("$"),
		settings.WithPlaceholderReplacement(false),
		settings.WithDebugLogging(true),
		settings.WithInvocationPolicy(settings.MultipleInvocations),
		settings.WithSerialization(settings.Serialization{PropertyNaming: settings.AsIs}),
	)

	assert.Equal(t, "$", s.SpacePlaceholder)
	assert.False(t, s.EnablePlaceholderReplacement)
	assert.False(t, s.PlaceholderActive())
	assert.True(t, s.EnableDebugLogging)
	assert.Equal(t, settings.MultipleInvocations, s.Invocations)
	assert.Equal(t, settings.AsIs, s.Serialization.PropertyNaming)
	assert.False(t, s.Serialization.OmitNulls)
}

func TestPlaceholderActive_EmptyPlaceholder(t *testing.T) {
	s := settings.New(settings.WithSpacePlaceholder(""))
	assert.False(t, s.PlaceholderActive())
}

func TestIsSerializable(t *testing.T) {
	s := settings.New(settings.WithSerializableTypes(&chart{}))

	assert.True(t, s.IsSerializable(reflect.TypeOf(chart{})))
	assert.True(t, s.IsSerializable(reflect.TypeOf(&chart{})), "pointer types resolve to their element")
	assert.False(t, s.IsSerializable(reflect.TypeOf("")))
	assert.False(t, s.IsSerializable(nil))

	withPredicate := s.With(settings.WithSerializablePredicate(func(t reflect.Type) bool {
		return t.Kind() == reflect.Map
	}))
	assert.True(t, withPredicate.IsSerializable(reflect.TypeOf(map[string]int{})))
	assert.True(t, withPredicate.IsSerializable(reflect.TypeOf(chart{})))
	assert.False(t, s.IsSerializable(reflect.TypeOf(map[string]int{})), "With must not mutate the receiver")
}

func TestNamingPolicy_Apply(t *testing.T) {
	assert.Equal(t, "propertyName", settings.CamelCase.Apply("PropertyName"))
	assert.Equal(t, "property_name", settings.SnakeCase.Apply("PropertyName"))
	assert.Equal(t, "PropertyName", settings.AsIs.Apply("PropertyName"))
	assert.Equal(t, "PropertyName", settings.NamingPolicy("kebab").Apply("PropertyName"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"jseval.yaml": `
space_placeholder: "$"
enable_debug_logging: true
invocations: multiple
serialization:
  property_naming: none
`,
		"jseval.toml": `
space_placeholder = "$"
enable_debug_logging = true
invocations = "multiple"

[serialization]
property_naming = "none"
`,
		"jseval.json": `{
  "space_placeholder": "$",
  "enable_debug_logging": true,
  "invocations": "multiple",
  "serialization": {"property_naming": "none"}
}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			s, err := settings.Load(path)
			require.NoError(t, err)

			assert.Equal(t, "$", s.SpacePlaceholder)
			assert.True(t, s.EnableDebugLogging)
			assert.True(t, s.EnablePlaceholderReplacement, "absent keys keep their defaults")
			assert.Equal(t, settings.MultipleInvocations, s.Invocations)
			assert.Equal(t, settings.AsIs, s.Serialization.PropertyNaming)
			assert.True(t, s.Serialization.OmitNulls)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s, err := settings.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, settings.Default().SpacePlaceholder, s.SpacePlaceholder)
	assert.True(t, s.EnablePlaceholderReplacement)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("spaceholder: x\n"), 0o644))
	_, err := settings.Load(unknown)
	assert.Error(t, err)

	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("invocations: sometimes\n"), 0o644))
	_, err = settings.Load(policy)
	assert.ErrorContains(t, err, "unknown invocation policy")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = settings.Load(broken)
	assert.ErrorContains(t, err, "failed to parse broken.json")
}

func TestFromMap_WeakTypes(t *testing.T) {
	base := settings.New(settings.WithSerializableTypes(chart{}))

	s, err := settings.FromMap(base, map[string]any{
		"enable_placeholder_replacement": "false",
	})
	require.NoError(t, err)

	assert.False(t, s.EnablePlaceholderReplacement)
	assert.True(t, s.IsSerializable(reflect.TypeOf(chart{})), "registered types survive overrides")
	assert.True(t, base.EnablePlaceholderReplacement)
}
