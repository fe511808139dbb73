package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaJSON returns the JSON Schema for complexprof configuration, generated from Config
func SchemaJSON() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "complexprof configuration"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return data, nil
}

// ValidateWithSchema validates config file content against the JSON Schema
func ValidateWithSchema(path string, content []byte) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	// Decode into a JSON-compatible structure
	var data interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid YAML syntax: %v", err))
			return result, nil
		}
	case ".json":
		if err := json.Unmarshal(content, &data); err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid JSON syntax: %v", err))
			return result, nil
		}
	case ".toml":
		m, err := toml.Parser().Unmarshal(content)
		if err != nil {
			result.addError("syntax", fmt.Sprintf("Invalid TOML syntax: %v", err))
			return result, nil
		}
		data = m
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}

	// An empty file is a valid (all defaults) config
	if data == nil {
		return result, nil
	}

	schemaJSON, err := SchemaJSON()
	if err != nil {
		return nil, err
	}

	validationResult, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	for _, verr := range validationResult.Errors() {
		result.addError(verr.Field(), verr.Description())
	}

	return result, nil
}
