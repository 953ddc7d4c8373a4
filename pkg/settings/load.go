package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads settings from a YAML, TOML or JSON file, layered over Default.
// A missing file is not an error and yields Default.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return FromMap(Default(), raw)
}

// FromMap decodes overrides onto a copy of base. Unknown keys are rejected.
func FromMap(base Settings, overrides map[string]any) (Settings, error) {
	out := base.With()
	if len(overrides) == 0 {
		return out, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := dec.Decode(overrides); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	switch out.Invocations {
	case SingleInvocation, MultipleInvocations:
	case "":
		out.Invocations = SingleInvocation
	default:
		return Settings{}, fmt.Errorf("invalid settings: unknown invocation policy %q", out.Invocations)
	}

	return out, nil
}
