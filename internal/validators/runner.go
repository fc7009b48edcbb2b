// internal/validators/runner.go
package validators

import (
	"context"
	"sync"

	"creative-pipeline/internal/common/errors"
	"creative-pipeline/internal/common/logger"
	"creative-pipeline/internal/common/metrics"
	"creative-pipeline/internal/models"
)

// RunAll invokes every adapter concurrently and waits for all of them to
// settle. A slow adapter never blocks a fast one beyond the group wait, and
// one adapter's failure never rejects the group: it becomes an
// Available=false report for that adapter only.
func RunAll(ctx context.Context, adapters []Adapter, artifact *models.Artifact, log logger.Logger) map[string]*models.ValidatorReport {
	reports := make(map[string]*models.ValidatorReport, len(adapters))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, adapter := range adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("validator panicked", map[string]interface{}{
						"validator": a.Name(),
						"panic":     r,
					})
					mu.Lock()
					reports[a.Name()] = unavailable()
					mu.Unlock()
				}
			}()

			report, err := a.Validate(ctx, artifact)
			if err != nil || report == nil {
				if err != nil {
					stdErr := errors.NewValidatorUnavailableError(a.Name(), err)
					log.Warn(stdErr.Message, map[string]interface{}{
						"validator": a.Name(),
						"code":      string(stdErr.Code),
						"details":   stdErr.Details,
					})
				}
				metrics.ValidatorUnavailable.WithLabelValues(a.Name()).Inc()
				report = unavailable()
			}

			mu.Lock()
			reports[a.Name()] = report
			mu.Unlock()
		}(adapter)
	}

	wg.Wait()
	return reports
}
