// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"creative-pipeline/internal/cache"
	"creative-pipeline/internal/common/config"
	"creative-pipeline/internal/common/errors"
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/common/metrics"
	"creative-pipeline/internal/learning"
	"creative-pipeline/internal/models"
	"creative-pipeline/internal/recovery"
	"creative-pipeline/internal/scorer"
	"creative-pipeline/internal/validators"
)

// Invoker is the external generation backend. The pipeline treats it as an
// unreliable, possibly slow black box.
type Invoker interface {
	Generate(ctx context.Context, prompt string, params models.Parameters) (*models.Artifact, error)
}

// Options are the caller-supplied knobs for one request. Zero values fall
// back to the configured defaults.
type Options struct {
	QualityThreshold float64 `json:"qualityThreshold,omitempty"`
	MaxAttempts      int     `json:"maxAttempts,omitempty"`
	SkipCache        bool    `json:"skipCache,omitempty"`
}

// Result is what the caller receives: a passing result, a best-effort
// below-threshold result, or nothing (with an error). Never a silent
// partial.
type Result struct {
	RequestID      string                  `json:"requestId"`
	Success        bool                    `json:"success"`
	OutputRef      string                  `json:"outputRef,omitempty"`
	ModelUsed      string                  `json:"modelUsed,omitempty"`
	CombinedScore  float64                 `json:"combinedScore"`
	AttemptsUsed   int                     `json:"attemptsUsed"`
	Cached         bool                    `json:"cached"`
	BelowThreshold bool                    `json:"belowThreshold,omitempty"`
	Attempts       []models.AttemptOutcome `json:"attempts,omitempty"`
}

// Deps are the pipeline's injected collaborators. Semantic, Pixel, OCR and
// Fallback may be nil; the pipeline degrades instead of failing.
type Deps struct {
	Cache    *cache.Cache
	Invoker  Invoker
	Fallback Invoker
	Semantic validators.SemanticAnnotator
	Pixel    validators.PixelAnnotator
	OCR      validators.OCREngine
	Learning learning.Store
	Logger   logger.Logger
}

// Pipeline is the bounded quality-gated retry loop tying cache, generation,
// validation, scoring and recovery together.
type Pipeline struct {
	cfg  config.PipelineConfig
	gen  config.GenerationConfig
	vcfg config.ValidatorsConfig

	cache    *cache.Cache
	invoker  Invoker
	fallback Invoker
	semantic validators.SemanticAnnotator
	pixel    validators.PixelAnnotator
	ocr      validators.OCREngine
	scorer   *scorer.Scorer
	selector *recovery.Selector
	store    learning.Store
	logger   logger.Logger
}

// New constructs a Pipeline from explicit configuration and collaborators.
func New(cfg config.PipelineConfig, gen config.GenerationConfig, vcfg config.ValidatorsConfig, deps Deps) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		gen:      gen,
		vcfg:     vcfg,
		cache:    deps.Cache,
		invoker:  deps.Invoker,
		fallback: deps.Fallback,
		semantic: deps.Semantic,
		pixel:    deps.Pixel,
		ocr:      deps.OCR,
		scorer:   scorer.New(deps.Logger),
		selector: recovery.NewSelector(deps.Learning, deps.Logger),
		store:    deps.Learning,
		logger:   deps.Logger,
	}
}

// Process runs one request through the pipeline. State machine per
// request: Idle, Attempting(n), then Passed, Exhausted or HardFailure.
func (p *Pipeline) Process(ctx context.Context, req *models.Request, opts Options) (*Result, error) {
	start := time.Now()

	if req.Prompt == "" {
		return nil, errors.NewInvalidInputError("prompt is required")
	}
	if req.ContentType != "" && !req.ContentType.Valid() {
		return nil, errors.NewInvalidContentTypeError(string(req.ContentType))
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.ContentType = DetectContentType(req)

	threshold := opts.QualityThreshold
	if threshold <= 0 {
		threshold = p.cfg.QualityThreshold
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = p.cfg.MaxAttempts
	}

	log := p.logger.WithFields(map[string]interface{}{
		"requestId":   req.ID,
		"contentType": string(req.ContentType),
	})

	defer func() {
		metrics.PipelineDuration.WithLabelValues(string(req.ContentType)).Observe(time.Since(start).Seconds())
	}()

	if !opts.SkipCache && p.cache != nil {
		if entry := p.cache.Get(ctx, req); entry != nil {
			log.Info("cache hit, reusing prior output", map[string]interface{}{
				"outputRef":    entry.OutputRef,
				"qualityScore": entry.QualityScore,
			})
			return &Result{
				RequestID:     req.ID,
				Success:       true,
				OutputRef:     entry.OutputRef,
				ModelUsed:     entry.ModelID,
				CombinedScore: entry.QualityScore,
				Cached:        true,
			}, nil
		}
	}

	return p.retryLoop(ctx, req, threshold, maxAttempts, log)
}

func (p *Pipeline) retryLoop(ctx context.Context, req *models.Request, threshold float64, maxAttempts int, log logger.Logger) (*Result, error) {
	prompt := req.Prompt
	params := req.Parameters
	if params.Model == "" {
		params.Model = p.gen.DefaultModel
	}

	var history []models.AttemptOutcome
	var best *models.AttemptOutcome
	strategyName := ""
	recoveredClass := models.FailureClass("")
	useFallback := false

	for n := 1; n <= maxAttempts; n++ {
		metrics.PipelineAttempts.WithLabelValues(string(req.ContentType)).Inc()

		invoker := p.invoker
		if useFallback {
			if p.fallback == nil {
				// The alternative generator is unconfigured in this
				// deployment; terminate cleanly as exhausted.
				log.Warn("no fallback generator configured, stopping early", map[string]interface{}{
					"attempt": n,
				})
				break
			}
			invoker = p.fallback
		}

		attempt := &models.Attempt{
			Number:         n,
			ModelID:        params.Model,
			Parameters:     params,
			Prompt:         prompt,
			Timestamp:      time.Now().UTC(),
			RecoveredClass: recoveredClass,
		}

		outcome := p.runAttempt(ctx, invoker, req, attempt, threshold, log)
		outcome.Strategy = strategyName
		history = append(history, *outcome)

		if outcome.Validation != nil {
			p.recordLearning(ctx, req.ContentType, attempt, outcome, log)
		}

		if best == nil || outcome.Validation.CombinedScore > best.Validation.CombinedScore {
			best = outcome
		}

		if outcome.Validation.Passed {
			metrics.PipelinePassed.WithLabelValues(string(req.ContentType)).Inc()
			log.Info("attempt passed quality gate", map[string]interface{}{
				"attempt": n,
				"score":   outcome.Validation.CombinedScore,
			})

			if p.cache != nil {
				p.cache.Set(ctx, req, outcome.Artifact, outcome.Validation.CombinedScore)
			}

			return &Result{
				RequestID:     req.ID,
				Success:       true,
				OutputRef:     outcome.Artifact.OutputRef,
				ModelUsed:     outcome.Artifact.ModelID,
				CombinedScore: outcome.Validation.CombinedScore,
				AttemptsUsed:  n,
				Attempts:      history,
			}, nil
		}

		if n == maxAttempts {
			break
		}

		misspelled := p.misspelledWords(ctx, req, outcome.Artifact)
		strategy := p.selector.Select(outcome.Validation, req.ContentType, n, misspelled, params)
		strategyName = strategy.Name
		recoveredClass = strategy.FailureClass
		useFallback = strategy.UseFallback

		params = strategy.Parameters
		adjusted, negative := recovery.ApplyToPrompt(req.Prompt, strategy)
		prompt = adjusted
		params.NegativePrompt = negative
	}

	metrics.PipelineExhausted.WithLabelValues(string(req.ContentType)).Inc()

	if best != nil && best.Artifact != nil && best.Validation.CombinedScore >= p.cfg.MinUsableScore {
		log.Warn("attempts exhausted, returning best-effort result", map[string]interface{}{
			"attempts":  len(history),
			"bestScore": best.Validation.CombinedScore,
		})
		return &Result{
			RequestID:      req.ID,
			Success:        false,
			OutputRef:      best.Artifact.OutputRef,
			ModelUsed:      best.Artifact.ModelID,
			CombinedScore:  best.Validation.CombinedScore,
			AttemptsUsed:   len(history),
			BelowThreshold: true,
			Attempts:       history,
		}, nil
	}

	bestScore := 0.0
	if best != nil && best.Validation != nil {
		bestScore = best.Validation.CombinedScore
	}
	return nil, errors.NewRetriesExhaustedError(len(history), bestScore)
}

// runAttempt generates once and validates the output. A generation failure
// becomes a zero-score outcome so the loop can continue.
func (p *Pipeline) runAttempt(ctx context.Context, invoker Invoker, req *models.Request, attempt *models.Attempt, threshold float64, log logger.Logger) *models.AttemptOutcome {
	artifact, err := invoker.Generate(ctx, attempt.Prompt, attempt.Parameters)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(attempt.Parameters.Model).Inc()
		stdErr := errors.NewGenerationFailedError(attempt.Parameters.Model, err)
		log.Error("generation failed", map[string]interface{}{
			"attempt": attempt.Number,
			"error":   stdErr.Error(),
			"details": stdErr.Details,
		})

		return &models.AttemptOutcome{
			Attempt: attempt,
			Validation: &models.ValidationResult{
				PerValidator:    map[string]*models.ValidatorReport{},
				CombinedScore:   0,
				Passed:          false,
				DegradationTier: models.TierHeuristic,
				Issues: []models.Issue{{
					Code:    models.IssueGeneration,
					Message: err.Error(),
				}},
			},
		}
	}

	attempt.ModelID = artifact.ModelID
	attempt.OutputRef = artifact.OutputRef

	adapters := p.adaptersFor(req)
	reports := validators.RunAll(ctx, adapters, artifact, log)
	result := p.scorer.Score(artifact, reports, req.ContentType, threshold)

	metrics.QualityScore.WithLabelValues(string(req.ContentType)).Observe(result.CombinedScore)
	log.Info("attempt validated", map[string]interface{}{
		"attempt":         attempt.Number,
		"score":           result.CombinedScore,
		"passed":          result.Passed,
		"degradationTier": string(result.DegradationTier),
		"issues":          len(result.Issues),
	})

	return &models.AttemptOutcome{
		Attempt:    attempt,
		Artifact:   artifact,
		Validation: result,
	}
}

// adaptersFor picks the validator set. Text-heavy content swaps the plain
// semantic validator for the composite rule validator in the semantic slot.
func (p *Pipeline) adaptersFor(req *models.Request) []validators.Adapter {
	technical := validators.NewTechnicalValidator(p.pixel, p.vcfg.Technical.MinWidth, p.vcfg.Technical.MinHeight)

	if req.ContentType.TextHeavy() {
		var visual *validators.SemanticValidator
		if p.semantic != nil {
			visual = validators.NewSemanticValidator(p.semantic, req.ContentType)
		}
		text := validators.NewTextValidator(p.ocr, req.RequiredText, p.vcfg.Spelling.Whitelist, visual)
		return []validators.Adapter{text, technical}
	}

	semantic := validators.NewSemanticValidator(p.semantic, req.ContentType)
	return []validators.Adapter{semantic, technical}
}

func (p *Pipeline) misspelledWords(ctx context.Context, req *models.Request, artifact *models.Artifact) []string {
	if artifact == nil || p.ocr == nil || !req.ContentType.TextHeavy() {
		return nil
	}
	text := validators.NewTextValidator(p.ocr, req.RequiredText, p.vcfg.Spelling.Whitelist, nil)
	return text.MisspelledWords(ctx, artifact)
}

// recordLearning folds the outcome and any detected technical patterns into
// the feedback store. Store failures are logged, never surfaced.
func (p *Pipeline) recordLearning(ctx context.Context, contentType models.ContentType, attempt *models.Attempt, outcome *models.AttemptOutcome, log logger.Logger) {
	if p.store == nil {
		return
	}

	if err := p.store.RecordOutcome(ctx, contentType, attempt, outcome.Validation); err != nil {
		log.Warn("outcome recording failed", map[string]interface{}{
			"modelId": attempt.ModelID,
			"error":   err.Error(),
		})
	}

	if p.pixel == nil || outcome.Artifact == nil {
		return
	}
	annotation, err := p.pixel.Analyze(ctx, outcome.Artifact)
	if err != nil || annotation == nil {
		return
	}
	for _, obs := range learning.DetectPatterns(annotation) {
		if err := p.store.RecordPattern(ctx, obs, outcome.Validation.CombinedScore); err != nil {
			log.Warn("pattern recording failed", map[string]interface{}{
				"patternType": obs.PatternType,
				"error":       err.Error(),
			})
		}
	}
}
