/*
Package settings holds the configuration consumed by expression recorders and the literal formatter.

Settings are built once, either in code with functional options or from a configuration file,
and then only read:

	s := settings.New(
		settings.WithSpacePlaceholder("$"),
		settings.WithSerializableTypes(Chart{}),
	)

	s, err := settings.Load("jseval.yaml")

Files may be YAML, TOML or JSON and use snake_case keys:

	space_placeholder: "_"
	enable_placeholder_replacement: true
	enable_debug_logging: false
	invocations: single
	serialization:
	  property_naming: camelCase
	  omit_nulls: true

Serializable types and predicates only exist in code.
*/
package settings
