package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed config.schema.json
var configSchema []byte

// Schema returns the embedded configuration schema.
func Schema() []byte {
	out := make([]byte, len(configSchema))
	copy(out, configSchema)
	return out
}

// ValidateConfig validates raw JSON configuration against the embedded schema.
func ValidateConfig(configData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(configData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// ValidateSettings validates merged viper settings.
func ValidateSettings(settings map[string]interface{}) error {
	data, err := json.Marshal(normalize(settings))
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return ValidateConfig(data)
}

// normalize turns viper values into JSON-friendly ones. Durations decoded
// from typed sources are rendered the way a config file would spell them.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}
