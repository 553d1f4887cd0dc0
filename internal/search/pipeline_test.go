package search_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/criteria"
	"cinechat/internal/search"
	"cinechat/internal/services"
	"cinechat/internal/testsupport"
)

type recorder struct {
	mu          sync.Mutex
	transitions []search.Transition
}

func (r *recorder) observe(t search.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) states(requestID string) []search.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []search.State
	for _, tr := range r.transitions {
		if requestID == "" || tr.RequestID == requestID {
			out = append(out, tr.To)
		}
	}
	return out
}

func TestSearchEndToEnd(t *testing.T) {
	llmServer := testsupport.NewLLMServer(t, `{"genre":"공포","with_origin_country":"KR"}`)
	tmdbServer := testsupport.NewTMDBServer(t,
		testsupport.SampleMovie(1, "곡성", 27, 9648),
		testsupport.SampleMovie(2, "부산행", 27, 28),
	)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL), testsupport.WithTMDBURL(tmdbServer.URL))

	rec := &recorder{}
	pipeline, err := search.NewFromConfig(cfg, nil, search.WithObserver(rec.observe))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	outcome, err := pipeline.Search(context.Background(), search.Request{Query: "최근 한국 공포 영화 추천"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(outcome.Results) != 2 || outcome.Results[0].Title != "곡성" {
		t.Fatalf("unexpected results %#v", outcome.Results)
	}
	if outcome.RequestID == "" {
		t.Fatal("expected request id")
	}
	if !reflect.DeepEqual(outcome.Criteria.Genres, []string{"공포"}) {
		t.Fatalf("unexpected genres %v", outcome.Criteria.Genres)
	}

	queries := tmdbServer.Queries()
	if len(queries) != 1 {
		t.Fatalf("expected one catalog request, got %d", len(queries))
	}
	want := map[string]string{
		"with_genres":         "27",
		"with_origin_country": "KR",
		"language":            "ko-KR",
		"sort_by":             "popularity.desc",
		"page":                "1",
	}
	if len(queries[0]) != len(want) {
		t.Fatalf("unexpected parameter set %v", queries[0])
	}
	for key, value := range want {
		if got := queries[0].Get(key); got != value {
			t.Fatalf("%s = %q, want %q", key, got, value)
		}
	}
	if auth := tmdbServer.Authorizations(); auth[0] != "Bearer test-tmdb" {
		t.Fatalf("unexpected authorization %q", auth[0])
	}

	requests := llmServer.Requests()
	if len(requests) != 1 || requests[0].User != "최근 한국 공포 영화 추천" || requests[0].MaxTokens != 150 || requests[0].Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected model request %#v", requests)
	}

	wantStates := []search.State{search.StateExtracting, search.StateNormalizing, search.StateQuerying, search.StateDone}
	if got := rec.states(outcome.RequestID); !reflect.DeepEqual(got, wantStates) {
		t.Fatalf("states = %v, want %v", got, wantStates)
	}
	if rec.transitions[0].From != search.StateIdle {
		t.Fatalf("expected first transition from idle, got %s", rec.transitions[0].From)
	}
}

func TestSearchBlankQueryFailsBeforeNetwork(t *testing.T) {
	llmServer := testsupport.NewLLMServer(t, `{}`)
	tmdbServer := testsupport.NewTMDBServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL), testsupport.WithTMDBURL(tmdbServer.URL))

	rec := &recorder{}
	pipeline, err := search.NewFromConfig(cfg, nil, search.WithObserver(rec.observe))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	_, err = pipeline.Search(context.Background(), search.Request{Query: "   "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(llmServer.Requests()) != 0 || len(tmdbServer.Queries()) != 0 {
		t.Fatal("expected no network calls")
	}
	if got := rec.states(""); !reflect.DeepEqual(got, []search.State{search.StateExtracting, search.StateFailed}) {
		t.Fatalf("unexpected states %v", got)
	}
}

func TestSearchStopsAtFirstFailure(t *testing.T) {
	cases := []struct {
		name      string
		reply     string
		marker    error
		failedIn  search.State
		tmdbCalls int
	}{
		{name: "parse", reply: "죄송합니다. 이해하지 못했어요.", marker: services.ErrParse, failedIn: search.StateNormalizing},
		{name: "empty object", reply: "{}", marker: services.ErrParse, failedIn: search.StateNormalizing},
		{name: "unknown genre", reply: `{"genre":"호러"}`, marker: services.ErrUnknownGenre, failedIn: search.StateNormalizing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llmServer := testsupport.NewLLMServer(t, tc.reply)
			tmdbServer := testsupport.NewTMDBServer(t)
			cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL), testsupport.WithTMDBURL(tmdbServer.URL))
			rec := &recorder{}
			pipeline, err := search.NewFromConfig(cfg, nil, search.WithObserver(rec.observe))
			if err != nil {
				t.Fatalf("NewFromConfig: %v", err)
			}

			outcome, err := pipeline.Search(context.Background(), search.Request{Query: "무서운 영화"})
			if outcome != nil {
				t.Fatal("expected no outcome on failure")
			}
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if got := len(tmdbServer.Queries()); got != tc.tmdbCalls {
				t.Fatalf("catalog calls = %d, want %d", got, tc.tmdbCalls)
			}
			last := rec.transitions[len(rec.transitions)-1]
			if last.To != search.StateFailed || last.From != tc.failedIn || last.Err == nil {
				t.Fatalf("unexpected final transition %#v", last)
			}
		})
	}
}

func TestSearchUpstreamFailures(t *testing.T) {
	llmServer := testsupport.NewLLMServer(t, `{"genre":"액션"}`)
	tmdbServer := testsupport.NewTMDBServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMURL(llmServer.URL), testsupport.WithTMDBURL(tmdbServer.URL))
	pipeline, err := search.NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	tmdbServer.SetError(401, `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`)
	_, err = pipeline.Search(context.Background(), search.Request{Query: "액션 영화"})
	if !errors.Is(err, services.ErrUpstream) || services.HTTPStatus(err) != 500 {
		t.Fatalf("expected upstream error, got %v", err)
	}

	llmServer.SetError(500, `{"error":{"message":"model overloaded"}}`)
	_, err = pipeline.Search(context.Background(), search.Request{Query: "액션 영화"})
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if got := len(llmServer.Requests()); got != 2 {
		t.Fatalf("expected exactly one model call per search, got %d", got)
	}
}

// blockingExtractor waits for cancellation on its first call and answers
// immediately afterwards.
type blockingExtractor struct {
	started chan struct{}
	once    sync.Once
	calls   int
	mu      sync.Mutex
}

func (b *blockingExtractor) Extract(ctx context.Context, query string) (string, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		b.once.Do(func() { close(b.started) })
		<-ctx.Done()
		return "", ctx.Err()
	}
	return `{"genre":"코미디"}`, nil
}

type staticCatalog struct {
	mu      sync.Mutex
	queries []tmdb.DiscoverQuery
}

func (c *staticCatalog) Discover(ctx context.Context, query tmdb.DiscoverQuery) (*tmdb.Response, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		return nil, errors.New("missing request id")
	}
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.mu.Unlock()
	return &tmdb.Response{Results: []tmdb.Movie{{ID: 7, Title: "극한직업"}}}, nil
}

func TestSearchSupersedesInFlightActionForSameSession(t *testing.T) {
	extractor := &blockingExtractor{started: make(chan struct{})}
	catalog := &staticCatalog{}
	pipeline := search.NewPipeline(extractor, criteria.NewNormalizer("", nil), catalog, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := pipeline.Search(context.Background(), search.Request{Query: "첫 번째", Session: "tab"})
		firstErr <- err
	}()

	select {
	case <-extractor.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first search never started")
	}

	outcome, err := pipeline.Search(context.Background(), search.Request{Query: "두 번째", Session: "tab"})
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if len(outcome.Results) != 1 {
		t.Fatalf("unexpected results %#v", outcome.Results)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) || !errors.Is(err, search.ErrSuperseded) {
			t.Fatalf("expected superseded cancellation, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first search was not cancelled")
	}
	if len(catalog.queries) != 1 {
		t.Fatalf("expected only the newer search to reach the catalog, got %d", len(catalog.queries))
	}
}

func TestSearchDifferentSessionsDoNotInterfere(t *testing.T) {
	catalog := &staticCatalog{}
	stub := extractorFunc(func(context.Context, string) (string, error) { return `{"genre":"가족"}`, nil })
	ids := []string{"req-1", "req-2"}
	var next int
	pipeline := search.NewPipeline(stub, nil, catalog, nil, search.WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))

	a, err := pipeline.Search(context.Background(), search.Request{Query: "가족 영화", Session: "a"})
	if err != nil {
		t.Fatalf("search a: %v", err)
	}
	b, err := pipeline.Search(context.Background(), search.Request{Query: "가족 영화", Session: "b"})
	if err != nil {
		t.Fatalf("search b: %v", err)
	}
	if a.RequestID != "req-1" || b.RequestID != "req-2" {
		t.Fatalf("unexpected request ids %q %q", a.RequestID, b.RequestID)
	}
	if pipeline.Cancel("a") {
		t.Fatal("expected no in-flight action after completion")
	}
}

func TestCancelAbortsInFlightAction(t *testing.T) {
	extractor := &blockingExtractor{started: make(chan struct{})}
	pipeline := search.NewPipeline(extractor, nil, &staticCatalog{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := pipeline.Search(context.Background(), search.Request{Query: "영화", Session: "tab"})
		done <- err
	}()
	<-extractor.started
	if !pipeline.Cancel("tab") {
		t.Fatal("expected an in-flight action")
	}
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search was not cancelled")
	}
}

type extractorFunc func(context.Context, string) (string, error)

func (f extractorFunc) Extract(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}
