package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/criteria"
	"cinechat/internal/logging"
	"cinechat/internal/services"
)

// Extractor turns free text into raw model output.
type Extractor interface {
	Extract(ctx context.Context, query string) (string, error)
}

// Request is one search action.
type Request struct {
	Query   string
	Session string
}

// Outcome is the result of a successful action.
type Outcome struct {
	RequestID string             `json:"request_id"`
	Criteria  Criteria           `json:"criteria"`
	Query     map[string]any     `json:"query"`
	Results   []tmdb.Movie       `json:"results"`
	Discover  tmdb.DiscoverQuery `json:"-"`
	Elapsed   time.Duration      `json:"-"`
}

// Criteria reports what the model produced and how it was interpreted.
type Criteria struct {
	Raw     string             `json:"raw"`
	Genres  []string           `json:"genres,omitempty"`
	Dropped []criteria.Dropped `json:"dropped,omitempty"`
}

// Pipeline runs search actions. It is safe for concurrent use.
type Pipeline struct {
	extractor  Extractor
	normalizer *criteria.Normalizer
	catalog    tmdb.Discoverer
	logger     *slog.Logger
	observer   Observer
	newID      func() string
	now        func() time.Time
	sessions   *sessions
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithObserver registers a transition observer.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// WithIDGenerator overrides request id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// NewPipeline wires the three stages together.
func NewPipeline(extractor Extractor, normalizer *criteria.Normalizer, catalog tmdb.Discoverer, logger *slog.Logger, opts ...Option) *Pipeline {
	if normalizer == nil {
		normalizer = criteria.NewNormalizer(criteria.DefaultLocale, logger)
	}
	p := &Pipeline{
		extractor:  extractor,
		normalizer: normalizer,
		catalog:    catalog,
		logger:     logging.NewComponentLogger(logger, "search"),
		newID:      uuid.NewString,
		now:        time.Now,
		sessions:   newSessions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extractor returns the criteria extractor.
func (p *Pipeline) Extractor() Extractor { return p.extractor }

// Normalizer returns the parameter normalizer.
func (p *Pipeline) Normalizer() *criteria.Normalizer { return p.normalizer }

// Catalog returns the catalog client.
func (p *Pipeline) Catalog() tmdb.Discoverer { return p.catalog }

// Cancel aborts the in-flight action of session. It reports whether one was running.
func (p *Pipeline) Cancel(session string) bool {
	return p.sessions.cancel(strings.TrimSpace(session))
}

// Search runs one action to completion. Any failure ends the action with no
// results; the returned error carries a services marker for status mapping.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Outcome, error) {
	requestID := p.newID()
	session := strings.TrimSpace(req.Session)
	ctx = services.WithRequestID(ctx, requestID)
	ctx = services.WithSession(ctx, session)
	ctx, release := p.sessions.begin(ctx, session, requestID)
	defer release()

	run := &action{pipeline: p, requestID: requestID, session: session, state: StateIdle, started: p.now()}
	logger := logging.WithContext(ctx, p.logger)

	run.enter(StateExtracting, nil)
	raw, err := p.extractor.Extract(ctx, req.Query)
	if ierr := interrupted(ctx); ierr != nil {
		err = ierr
	}
	if err != nil {
		return nil, run.fail(logger, err)
	}

	run.enter(StateNormalizing, nil)
	normalized, err := p.normalizer.Normalize(raw)
	if ierr := interrupted(ctx); ierr != nil {
		err = ierr
	}
	if err != nil {
		return nil, run.fail(logger, err)
	}

	run.enter(StateQuerying, nil)
	resp, err := p.catalog.Discover(ctx, normalized.Query)
	if ierr := interrupted(ctx); ierr != nil {
		err = ierr
	}
	if err != nil {
		return nil, run.fail(logger, err)
	}

	run.enter(StateDone, nil)
	outcome := &Outcome{
		RequestID: requestID,
		Criteria: Criteria{
			Raw:     raw,
			Genres:  normalized.Genres,
			Dropped: normalized.Dropped,
		},
		Query:    normalized.Query.Map(),
		Results:  resp.Results,
		Discover: normalized.Query,
		Elapsed:  p.now().Sub(run.started),
	}
	logger.Info("search finished",
		logging.String("query", strings.TrimSpace(req.Query)),
		logging.String(tmdb.ParamGenres, normalized.Query.GenreParam()),
		logging.String(tmdb.ParamOriginCountry, normalized.Query.OriginCountry),
		logging.Int("result_count", len(resp.Results)),
		logging.Duration("elapsed", outcome.Elapsed),
	)
	return outcome, nil
}

// interrupted reports cancellation of the action. It takes precedence over a
// stage error so a superseded action always fails as cancelled.
func interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && cause != ctx.Err() {
		return fmt.Errorf("search %w: %w", cause, ctx.Err())
	}
	return ctx.Err()
}

type action struct {
	pipeline  *Pipeline
	requestID string
	session   string
	state     State
	started   time.Time
}

func (a *action) enter(next State, err error) {
	prev := a.state
	a.state = next
	a.pipeline.logger.Debug("search state",
		logging.String(logging.FieldRequestID, a.requestID),
		logging.String(logging.FieldState, string(next)),
		logging.String("from", string(prev)),
	)
	if a.pipeline.observer != nil {
		a.pipeline.observer(Transition{
			RequestID: a.requestID,
			Session:   a.session,
			From:      prev,
			To:        next,
			Err:       err,
			At:        a.pipeline.now(),
		})
	}
}

func (a *action) fail(logger *slog.Logger, err error) error {
	failedIn := a.state
	a.enter(StateFailed, err)
	logging.WarnWithContext(logger, "search failed", "search_failed",
		logging.String(logging.FieldState, string(failedIn)),
		logging.Int("status", services.HTTPStatus(err)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "no results returned for this search"),
	)
	return err
}
