// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// generateRequestSchema constrains the payload accepted by the generate
// endpoint. Free-form extras are allowed but never influence caching.
const generateRequestSchema = `{
	"type": "object",
	"properties": {
		"id": {"type": "string", "maxLength": 100},
		"contentType": {
			"type": "string",
			"enum": ["text", "rate-update", "social-media", "photo", "general", ""]
		},
		"prompt": {"type": "string", "minLength": 1, "maxLength": 4000},
		"identity": {"type": "string", "maxLength": 200},
		"requiredText": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		},
		"preferences": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"parameters": {
			"type": "object",
			"properties": {
				"model": {"type": "string"},
				"temperature": {"type": "number", "minimum": 0, "maximum": 2},
				"topK": {"type": "integer", "minimum": 0},
				"topP": {"type": "number", "minimum": 0, "maximum": 1},
				"seed": {"type": "integer"},
				"width": {"type": "integer", "minimum": 0},
				"height": {"type": "integer", "minimum": 0}
			}
		},
		"qualityThreshold": {"type": "number", "minimum": 0, "maximum": 1},
		"maxAttempts": {"type": "integer", "minimum": 1, "maximum": 10},
		"skipCache": {"type": "boolean"},
		"extras": {"type": "object"}
	},
	"required": ["prompt"],
	"additionalProperties": false
}`

var compiledGenerateSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(generateRequestSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid generate request schema: %v", err))
	}
	compiledGenerateSchema = schema
}

// ValidationError describes one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result reports the outcome of validating a request payload.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateGenerateRequest checks a raw JSON payload against the generate
// request schema.
func ValidateGenerateRequest(payload []byte) (*Result, error) {
	res, err := compiledGenerateSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	if res.Valid() {
		return &Result{Valid: true}, nil
	}

	out := &Result{Valid: false}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
