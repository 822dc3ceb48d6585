// Package extraction turns raw RFP text into structured requirements by
// delegating to an external generative extraction service. Every call crosses
// the resilience wrapper; the gateway never returns an empty or unvalidated
// result silently.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/common/metrics"
	"proposal-engine/internal/common/resilience"
	"proposal-engine/internal/models"
)

const serviceName = "extraction"

// Extractor is what the pipeline depends on; satisfied by Gateway and by test
// stubs.
type Extractor interface {
	Extract(ctx context.Context, title, excerpt string) (*models.ExtractionResult, error)
}

// Config drives the gateway. Timeout is the total budget across all attempts.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

type Gateway struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewGateway(config Config, log logger.Logger) *Gateway {
	return &Gateway{
		config: config,
		// No client-level timeout: the total budget lives on the context so
		// the retry schedule shares it.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": serviceName}),
	}
}

// Extract calls the service through retry+timeout. Transient failures
// (rate limit, overload, timeout) are retried with exponential backoff;
// malformed or empty responses fail immediately.
func (g *Gateway) Extract(ctx context.Context, title, excerpt string) (*models.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	policy := resilience.Policy{MaxRetries: g.config.MaxRetries, BaseDelay: g.config.BaseDelay}

	attempt := 0
	result, err := resilience.Retry(ctx, g.logger, policy, serviceName, func(ctx context.Context) (*models.ExtractionResult, error) {
		if attempt > 0 {
			metrics.ExtractionRetries.Inc()
		}
		attempt++
		return g.callOnce(ctx, title, excerpt)
	})
	if err != nil {
		return nil, err
	}

	metrics.RequirementsExtracted.Observe(float64(len(result.Requirements)))
	if result.Inferred {
		g.logger.Warn("extraction service inferred line items from a thin excerpt", map[string]interface{}{
			"title":        title,
			"requirements": len(result.Requirements),
		})
	}
	return result, nil
}

func (g *Gateway) callOnce(ctx context.Context, title, excerpt string) (*models.ExtractionResult, error) {
	body, _ := json.Marshal(map[string]string{
		"title":   title,
		"excerpt": excerpt,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/api/ai/extract", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewExtractionFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewExtractionTimeoutError()
		}
		return nil, errors.NewExtractionFailedError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.NewRateLimitedError(serviceName)
	case resp.StatusCode >= 500:
		return nil, errors.NewServiceOverloadedError(serviceName, resp.StatusCode)
	default:
		return nil, errors.NewExtractionMalformedError("unexpected status " + resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExtractionFailedError(err)
	}
	return g.decode(title, payload)
}

func (g *Gateway) decode(title string, payload []byte) (*models.ExtractionResult, error) {
	if err := responseValidator.ValidateBytes(payload); err != nil {
		return nil, errors.NewExtractionMalformedError(err.Error())
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.NewExtractionMalformedError(err.Error())
	}
	if len(result.Requirements) == 0 {
		return nil, errors.NewExtractionEmptyError(title)
	}
	return &result, nil
}
