package criteria

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cinechat/internal/logging"
	"cinechat/internal/services"
)

// Completer sends one system/user prompt pair to a language model and returns
// the raw completion text. Both the OpenAI-compatible and Gemini clients
// satisfy it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns a free-text request into raw model output.
type Extractor struct {
	completer Completer
	logger    *slog.Logger
	now       func() time.Time
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithClock overrides the clock used to anchor relative dates in the prompt.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExtractor constructs an extractor backed by completer.
func NewExtractor(completer Completer, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		completer: completer,
		logger:    logging.NewComponentLogger(logger, "criteria"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract sends query to the model and returns the completion text
// unchanged. A blank query fails before any network call.
func (e *Extractor) Extract(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", services.Wrap(services.ErrValidation, "criteria", "extract", "query is required", nil)
	}
	if e.completer == nil {
		return "", services.Wrap(services.ErrConfiguration, "criteria", "extract", "language model not configured", nil)
	}

	logger := logging.WithContext(ctx, e.logger)
	start := time.Now()
	raw, err := e.completer.CompleteJSON(ctx, SystemPrompt(e.now().Format(time.DateOnly)), query)
	if err != nil {
		logger.Warn("criteria extraction failed",
			logging.String(logging.FieldEventType, "criteria_extract_failed"),
			logging.String(logging.FieldErrorHint, "check the language model credentials and availability"),
			logging.String(logging.FieldImpact, "search aborted"),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return "", services.Wrap(services.ErrUpstream, "criteria", "extract", "language model request failed", err)
	}
	logger.Debug("criteria extracted",
		logging.String(logging.FieldEventType, "criteria_extracted"),
		logging.Duration("elapsed", time.Since(start)),
		logging.String("raw", raw),
	)
	return raw, nil
}
