// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Schema Validation Tests
// ==========================

func TestValidateGenerateRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		valid   bool
	}{
		{
			name: "full valid payload",
			payload: `{
				"contentType": "rate-update",
				"prompt": "Banner announcing our current mortgage rate",
				"identity": "Jane Smith",
				"requiredText": ["6.5%", "NMLS #12345"],
				"preferences": {"style": "modern"},
				"parameters": {"model": "ideogram-v2", "temperature": 0.7, "topK": 40, "topP": 0.9, "width": 1200, "height": 628},
				"qualityThreshold": 0.9,
				"maxAttempts": 3,
				"skipCache": false,
				"extras": {"campaign": "spring"}
			}`,
			valid: true,
		},
		{
			name:    "minimal payload",
			payload: `{"prompt": "Abstract blue artwork"}`,
			valid:   true,
		},
		{
			name:    "prompt missing",
			payload: `{"contentType": "general"}`,
			valid:   false,
		},
		{
			name:    "prompt empty",
			payload: `{"prompt": ""}`,
			valid:   false,
		},
		{
			name:    "unknown content type",
			payload: `{"prompt": "x", "contentType": "billboard"}`,
			valid:   false,
		},
		{
			name:    "temperature out of range",
			payload: `{"prompt": "x", "parameters": {"temperature": 3.5}}`,
			valid:   false,
		},
		{
			name:    "max attempts above cap",
			payload: `{"prompt": "x", "maxAttempts": 50}`,
			valid:   false,
		},
		{
			name:    "quality threshold above one",
			payload: `{"prompt": "x", "qualityThreshold": 1.5}`,
			valid:   false,
		},
		{
			name:    "unexpected top-level field",
			payload: `{"prompt": "x", "wallpaper": true}`,
			valid:   false,
		},
		{
			name:    "required text with empty entry",
			payload: `{"prompt": "x", "requiredText": [""]}`,
			valid:   false,
		},
		{
			name:    "non-string preference value",
			payload: `{"prompt": "x", "preferences": {"style": 7}}`,
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateGenerateRequest([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}

func TestValidateGenerateRequest_ErrorsNameTheField(t *testing.T) {
	result, err := ValidateGenerateRequest([]byte(`{"prompt": "x", "maxAttempts": 50}`))
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, "maxAttempts", result.Errors[0].Field)
}

func TestValidateGenerateRequest_MalformedJSON(t *testing.T) {
	_, err := ValidateGenerateRequest([]byte(`{"prompt": `))
	assert.Error(t, err)
}
