package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"cinechat/internal/genre"
)

// LLMRequest is what a stub model server received.
type LLMRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// LLMServer is a stub OpenAI-compatible chat completions endpoint.
type LLMServer struct {
	*httptest.Server

	mu       sync.Mutex
	reply    string
	status   int
	body     string
	requests []LLMRequest
}

// NewLLMServer starts a stub that answers every completion with reply.
func NewLLMServer(t testing.TB, reply string) *LLMServer {
	t.Helper()
	s := &LLMServer{reply: reply}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetReply changes the completion content.
func (s *LLMServer) SetReply(reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
	s.status = 0
}

// SetError makes the stub answer with status and body.
func (s *LLMServer) SetError(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Requests returns a copy of every request received.
func (s *LLMServer) Requests() []LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LLMRequest(nil), s.requests...)
}

func (s *LLMServer) handle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	req := LLMRequest{Model: payload.Model, MaxTokens: payload.MaxTokens, Temperature: payload.Temperature}
	for _, msg := range payload.Messages {
		switch msg.Role {
		case "system":
			req.System = msg.Content
		case "user":
			req.User = msg.Content
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply, status, body := s.reply, s.status, s.body
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": reply}},
		},
	})
}

// TMDBServer is a stub of the discover and genre list endpoints.
type TMDBServer struct {
	*httptest.Server

	mu      sync.Mutex
	results []map[string]any
	status  int
	body    string
	queries []url.Values
	auth    []string
}

// NewTMDBServer starts a stub that returns results for every discovery.
func NewTMDBServer(t testing.TB, results ...map[string]any) *TMDBServer {
	t.Helper()
	s := &TMDBServer{results: results}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SampleMovie returns a discovery record including a field the typed model
// does not declare.
func SampleMovie(id int, title string, genreIDs ...int) map[string]any {
	return map[string]any{
		"id":                id,
		"title":             title,
		"original_title":    title,
		"overview":          "overview of " + title,
		"release_date":      "2024-07-01",
		"backdrop_path":     "/backdrop.jpg",
		"poster_path":       "/poster.jpg",
		"vote_average":      7.1,
		"vote_count":        321,
		"popularity":        88.5,
		"genre_ids":         genreIDs,
		"adult":             false,
		"original_language": "ko",
	}
}

// SetError makes the stub answer with status and body.
func (s *TMDBServer) SetError(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Queries returns the discovery query strings received so far.
func (s *TMDBServer) Queries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries...)
}

// Authorizations returns the Authorization headers received so far.
func (s *TMDBServer) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *TMDBServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	status, body, results := s.status, s.body, s.results
	if strings.HasSuffix(r.URL.Path, "/discover/movie") {
		s.queries = append(s.queries, r.URL.Query())
	}
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/discover/movie"):
		if results == nil {
			results = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page":          1,
			"results":       results,
			"total_pages":   1,
			"total_results": len(results),
		})
	case strings.HasSuffix(r.URL.Path, "/genre/movie/list"):
		genres := make([]map[string]any, 0)
		for _, g := range genre.All() {
			genres = append(genres, map[string]any{"id": g.ID, "name": g.Label})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"genres": genres})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}
}
