// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "livestock-advisor/internal/common/errors"
)

// registrySchema validates an intent registry file before it is trusted.
var registrySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "intents"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string"},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"intents": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id", "domain", "signals"},
				"properties": map[string]interface{}{
					"id":     map[string]interface{}{"type": "string", "pattern": `^[a-z_]+\.[a-z_]+$`},
					"domain": map[string]interface{}{"type": "string"},
					"signals": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"requiredContext": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"criticalContext": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"priority": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
					"urgency":  map[string]interface{}{"type": "string", "enum": []interface{}{"normal", "urgent"}},
					"answerMode": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"table", "documents", "hybrid"},
					},
					"thresholds": map[string]interface{}{
						"type":     "object",
						"required": []interface{}{"clarify", "warn", "full"},
						"properties": map[string]interface{}{
							"clarify": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
							"warn":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
							"full":    map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
						},
					},
				},
			},
		},
	},
}

// LoadFile reads and validates a registry JSON file. Validation failures
// are startup errors; there is no partial acceptance.
func LoadFile(path string) (*IntentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(registrySchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, apperrors.NewRegistryInvalidError(strings.Join(msgs, "; "))
	}

	var reg IntentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg.index()
	return &reg, nil
}

// Load returns the registry at path, or the compiled-in default taxonomy
// when path is empty.
func Load(path string) (*IntentRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
