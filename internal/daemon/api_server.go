package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cinechat/internal/catalog/tmdb"
	"cinechat/internal/favorites"
	"cinechat/internal/genre"
	"cinechat/internal/logging"
	"cinechat/internal/search"
	"cinechat/internal/services"
)

const maxBodyBytes = 64 << 10

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/chat", srv.handleChat)
	mux.HandleFunc("/moviedb", srv.handleMovieDB)
	mux.HandleFunc("/api/search", srv.handleSearch)
	mux.HandleFunc("/api/genres", srv.handleGenres)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/favorites", srv.handleFavorites)
	mux.HandleFunc("/api/favorites/", srv.handleFavorite)

	srv.handler = authMiddleware(strings.TrimSpace(token), srv.logRequests(mux))
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *apiServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log().Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChat runs extraction only and returns the raw model text.
func (s *apiServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	fields, err := requestFields(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	content := firstField(fields, "content", "query")
	if content == "" {
		s.writeFailure(w, services.Wrap(services.ErrValidation, "api", "chat", "content is required", nil))
		return
	}
	message, err := s.daemon.pipeline.Extractor().Extract(r.Context(), content)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// handleMovieDB forwards caller-supplied discovery parameters to the catalog.
func (s *apiServer) handleMovieDB(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	normalized, err := s.daemon.pipeline.Normalizer().NormalizeParams(r.URL.Query())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	resp, err := s.daemon.pipeline.Catalog().Discover(r.Context(), normalized.Query)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]tmdb.Movie{"results": resp.Results})
}

// handleSearch runs the full extraction, normalization and discovery pipeline.
func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	fields, err := requestFields(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	outcome, err := s.daemon.pipeline.Search(r.Context(), search.Request{
		Query:   firstField(fields, "query", "content", "q"),
		Session: firstField(fields, "session"),
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *apiServer) handleGenres(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]genre.Genre{"genres": genre.All()})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

type favoriteRequest struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	BackdropPath string `json:"backdrop_path"`
}

func (s *apiServer) handleFavorites(w http.ResponseWriter, r *http.Request) {
	store := s.daemon.favorites
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "favorites store unavailable")
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := store.List(r.Context())
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]favorites.Favorite{"favorites": list})
	case http.MethodPost:
		var req favoriteRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeFailure(w, err)
			return
		}
		fav, evicted, err := store.Add(r.Context(), favorites.Favorite{
			MovieID:      req.ID,
			Title:        req.Title,
			BackdropPath: req.BackdropPath,
		})
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]any{"favorite": fav, "evicted": evicted})
	case http.MethodDelete:
		removed, err := store.Clear(r.Context())
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
	default:
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *apiServer) handleFavorite(w http.ResponseWriter, r *http.Request) {
	store := s.daemon.favorites
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "favorites store unavailable")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/favorites/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "favorite not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		fav, err := store.Get(r.Context(), id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		if fav == nil {
			s.writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]favorites.Favorite{"favorite": *fav})
	case http.MethodDelete:
		removed, err := store.Remove(r.Context(), id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeMethodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

// requestFields merges query-string values with a JSON object body. Body
// values win when both are present.
func requestFields(r *http.Request) (map[string]string, error) {
	fields := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return fields, nil
	}
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	for key, value := range body {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		}
	}
	return fields, nil
}

func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return services.Wrap(services.ErrValidation, "api", "decode body", "request body must be a JSON object", err)
	}
	return nil
}

func firstField(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(fields[key]); value != "" {
			return value
		}
	}
	return ""
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	s.writeFailure(w, services.ErrMethodNotAllowed)
}

// writeFailure maps err to its status code and single user-facing message.
func (s *apiServer) writeFailure(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log().Warn("request failed", logging.Int("status", status), logging.Error(err))
	}
	s.writeError(w, status, services.UserMessage(err))
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
