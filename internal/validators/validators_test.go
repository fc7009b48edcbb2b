// internal/validators/validators_test.go
package validators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// stubOCR returns canned text or a canned error.
type stubOCR struct {
	text string
	err  error
}

func (s *stubOCR) ExtractText(ctx context.Context, artifact *models.Artifact) (string, error) {
	return s.text, s.err
}

// stubSemantic returns a canned annotation or a canned error.
type stubSemantic struct {
	annotation *SemanticAnnotation
	err        error
}

func (s *stubSemantic) Analyze(ctx context.Context, artifact *models.Artifact) (*SemanticAnnotation, error) {
	return s.annotation, s.err
}

// stubPixel returns a canned annotation or a canned error.
type stubPixel struct {
	annotation *PixelAnnotation
	err        error
}

func (s *stubPixel) Analyze(ctx context.Context, artifact *models.Artifact) (*PixelAnnotation, error) {
	return s.annotation, s.err
}

func validatorTestArtifact() *models.Artifact {
	return &models.Artifact{OutputRef: "s3://generated/a.png", ModelID: "ideogram-v2", SizeBytes: 400_000}
}

func goodAnnotation() *SemanticAnnotation {
	return &SemanticAnnotation{
		Text:           "Current rates 6.5%",
		Logos:          []string{"acme-lending"},
		DominantColors: []string{"#112244", "#ffffff", "#cc9900"},
		SafetyScore:    0.95,
	}
}

func goodPixels() *PixelAnnotation {
	return &PixelAnnotation{
		Width:         1200,
		Height:        628,
		ColorVariance: 55,
		Brightness:    128,
		EdgeRatio:     0.22,
		ElementCount:  140,
	}
}

// ==========================
// Semantic Validator Tests
// ==========================

func TestSemanticValidator_Scoring(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		contentType   models.ContentType
		annotation    *SemanticAnnotation
		expectedScore float64
		wantBlocking  bool
	}{
		{
			name:        "marketing output with text, colors, logo",
			contentType: models.ContentTypeGeneral,
			annotation:  goodAnnotation(),
			// 0.5 + 0.15 text + 0.1 colors + 0.1 logo + 0.15 safety = 1.0
			expectedScore: 1.0,
		},
		{
			name:        "photo with confident face",
			contentType: models.ContentTypePhoto,
			annotation: &SemanticAnnotation{
				FaceCount:      1,
				FaceConfidence: 0.9,
				DominantColors: []string{"#111", "#222", "#333"},
				SafetyScore:    0.9,
			},
			// 0.5 + 0.1 colors + 0.15*0.9 face + 0.15 safety = 0.885
			expectedScore: 0.885,
		},
		{
			name:        "photo without a face",
			contentType: models.ContentTypePhoto,
			annotation: &SemanticAnnotation{
				SafetyScore: 0.9,
			},
			// 0.5 - 0.25 no face + 0.15 safety = 0.40
			expectedScore: 0.40,
		},
		{
			name:        "text-heavy output with no readable text",
			contentType: models.ContentTypeRateUpdate,
			annotation: &SemanticAnnotation{
				SafetyScore: 0.9,
			},
			// 0.5 - 0.2 missing text + 0.15 safety = 0.45
			expectedScore: 0.45,
		},
		{
			name:        "unsafe output is blocked",
			contentType: models.ContentTypeGeneral,
			annotation: &SemanticAnnotation{
				Text:        "some copy",
				SafetyScore: 0.3,
			},
			// 0.5 + 0.15 text - 0.3 safety = 0.35
			expectedScore: 0.35,
			wantBlocking:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSemanticValidator(&stubSemantic{annotation: tt.annotation}, tt.contentType)
			report, err := v.Validate(ctx, validatorTestArtifact())
			require.NoError(t, err)
			require.True(t, report.Available)
			assert.InDelta(t, tt.expectedScore, report.Score, 1e-9)

			blocking := false
			for _, issue := range report.Issues {
				if issue.Blocking {
					blocking = true
				}
			}
			assert.Equal(t, tt.wantBlocking, blocking)
		})
	}
}

func TestSemanticValidator_Unavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("nil annotator", func(t *testing.T) {
		v := NewSemanticValidator(nil, models.ContentTypeGeneral)
		report, err := v.Validate(ctx, validatorTestArtifact())
		require.NoError(t, err)
		assert.False(t, report.Available)
	})

	t.Run("annotator error propagates", func(t *testing.T) {
		v := NewSemanticValidator(&stubSemantic{err: errors.New("vision api timeout")}, models.ContentTypeGeneral)
		_, err := v.Validate(ctx, validatorTestArtifact())
		assert.Error(t, err)
	})
}

// ==========================
// Technical Validator Tests
// ==========================

func TestTechnicalValidator_Scoring(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		annotation    *PixelAnnotation
		expectedScore float64
		expectedIssue models.IssueCode
	}{
		{
			name:          "clean render",
			annotation:    goodPixels(),
			expectedScore: 1.0,
		},
		{
			name: "below minimum resolution",
			annotation: &PixelAnnotation{
				Width: 640, Height: 480, ColorVariance: 55, Brightness: 128, EdgeRatio: 0.22,
			},
			// 1.0 - 0.25 resolution = 0.75
			expectedScore: 0.75,
			expectedIssue: models.IssueTechnical,
		},
		{
			name: "flat low-variance output",
			annotation: &PixelAnnotation{
				Width: 1200, Height: 628, ColorVariance: 8, Brightness: 128, EdgeRatio: 0.22,
			},
			// 1.0 - 0.2 variance = 0.80
			expectedScore: 0.80,
			expectedIssue: models.IssueLowQuality,
		},
		{
			name: "washed out render",
			annotation: &PixelAnnotation{
				Width: 1200, Height: 628, ColorVariance: 55, Brightness: 240, EdgeRatio: 0.22,
			},
			// 1.0 - 0.15 brightness = 0.85
			expectedScore: 0.85,
			expectedIssue: models.IssueLowQuality,
		},
		{
			name: "cluttered layout",
			annotation: &PixelAnnotation{
				Width: 1200, Height: 628, ColorVariance: 55, Brightness: 128, EdgeRatio: 0.22,
				ElementCount: 4200,
			},
			// 1.0 - 0.1 elements = 0.90
			expectedScore: 0.90,
			expectedIssue: models.IssueLayout,
		},
		{
			name: "everything wrong at once",
			annotation: &PixelAnnotation{
				Width: 320, Height: 240, ColorVariance: 5, Brightness: 235, EdgeRatio: 0.02,
				ElementCount: 5000,
			},
			// 1.0 - 0.25 - 0.2 - 0.15 - 0.15 - 0.1 = 0.15
			expectedScore: 0.15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewTechnicalValidator(&stubPixel{annotation: tt.annotation}, 800, 600)
			report, err := v.Validate(ctx, validatorTestArtifact())
			require.NoError(t, err)
			require.True(t, report.Available)
			assert.InDelta(t, tt.expectedScore, report.Score, 1e-9)

			if tt.expectedIssue != "" {
				require.NotEmpty(t, report.Issues)
				assert.Equal(t, tt.expectedIssue, report.Issues[0].Code)
			}
		})
	}
}

func TestTechnicalValidator_DefaultMinimums(t *testing.T) {
	v := NewTechnicalValidator(&stubPixel{annotation: goodPixels()}, 0, 0)
	assert.Equal(t, 800, v.minWidth)
	assert.Equal(t, 600, v.minHeight)
}

// ==========================
// Runner Tests
// ==========================

type panickyAdapter struct{}

func (panickyAdapter) Name() string { return "panicky" }
func (panickyAdapter) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	panic("annotator client lost its connection")
}

type slowAdapter struct{}

func (slowAdapter) Name() string { return "slow" }
func (slowAdapter) Validate(ctx context.Context, artifact *models.Artifact) (*models.ValidatorReport, error) {
	time.Sleep(30 * time.Millisecond)
	return &models.ValidatorReport{Score: 0.9, Available: true}, nil
}

func TestRunAll_AllAdaptersSettle(t *testing.T) {
	ctx := context.Background()
	adapters := []Adapter{
		NewSemanticValidator(&stubSemantic{annotation: goodAnnotation()}, models.ContentTypeGeneral),
		NewTechnicalValidator(&stubPixel{err: errors.New("sampler offline")}, 800, 600),
		slowAdapter{},
		panickyAdapter{},
	}

	reports := RunAll(ctx, adapters, validatorTestArtifact(), logger.NewTestLogger(t))

	require.Len(t, reports, 4)
	assert.True(t, reports[SemanticName].Available)
	assert.False(t, reports[TechnicalName].Available)
	assert.True(t, reports["slow"].Available)
	assert.Equal(t, 0.9, reports["slow"].Score)
	assert.False(t, reports["panicky"].Available)
}

func TestRunAll_NoAdapters(t *testing.T) {
	reports := RunAll(context.Background(), nil, validatorTestArtifact(), logger.NewNoOpLogger())
	assert.Empty(t, reports)
}
