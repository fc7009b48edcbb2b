// internal/models/request.go
package models

// ContentType classifies what kind of marketing artifact a request asks for.
// Weighting and validator selection key off this, so it is a closed set.
type ContentType string

const (
	ContentTypeText        ContentType = "text"
	ContentTypeRateUpdate  ContentType = "rate-update"
	ContentTypeSocialMedia ContentType = "social-media"
	ContentTypePhoto       ContentType = "photo"
	ContentTypeGeneral     ContentType = "general"
)

// KnownContentTypes lists every recognized content type.
var KnownContentTypes = []ContentType{
	ContentTypeText,
	ContentTypeRateUpdate,
	ContentTypeSocialMedia,
	ContentTypePhoto,
	ContentTypeGeneral,
}

// Valid reports whether ct is one of the recognized content types.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeText, ContentTypeRateUpdate, ContentTypeSocialMedia, ContentTypePhoto, ContentTypeGeneral:
		return true
	}
	return false
}

// TextHeavy reports whether the content type carries required copy that the
// rule validators (OCR, spelling, compliance) must check.
func (ct ContentType) TextHeavy() bool {
	return ct == ContentTypeText || ct == ContentTypeRateUpdate
}

// Request is a normalized generation request.
type Request struct {
	ID           string            `json:"id,omitempty"`
	ContentType  ContentType       `json:"contentType"`
	Prompt       string            `json:"prompt"`
	Identity     string            `json:"identity,omitempty"`     // personalization identity, e.g. agent name
	RequiredText []string          `json:"requiredText,omitempty"` // tokens that must appear in the output (license number, rates)
	Preferences  map[string]string `json:"preferences,omitempty"`
	Parameters   Parameters        `json:"parameters,omitempty"`
	// Extras carries free-form caller metadata. It never participates in
	// the cache fingerprint.
	Extras map[string]interface{} `json:"extras,omitempty"`
}

// Parameters are the generation knobs handed to the invoker. Recovery
// strategies rewrite these between attempts.
type Parameters struct {
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TopK           int     `json:"topK,omitempty"`
	TopP           float64 `json:"topP,omitempty"`
	Seed           int64   `json:"seed,omitempty"`
	NegativePrompt string  `json:"negativePrompt,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
}

// Artifact is a generated output plus the technical facts cheap to know
// about it without any annotator.
type Artifact struct {
	OutputRef string `json:"outputRef"`
	ModelID   string `json:"modelId"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Format    string `json:"format,omitempty"`
}
