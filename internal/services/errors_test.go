package services_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"cinechat/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstream, "tmdb", "discover", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"tmdb", "discover", "request failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", services.Wrap(services.ErrValidation, "criteria", "extract", "query required", nil), http.StatusBadRequest},
		{"parse", services.Wrap(services.ErrParse, "criteria", "normalize", "", errors.New("bad json")), http.StatusBadRequest},
		{"unknown genre", &services.UnknownGenreError{Labels: []string{"호러"}}, http.StatusBadRequest},
		{"wrapped unknown genre", fmt.Errorf("normalize: %w", &services.UnknownGenreError{Labels: []string{"x"}}), http.StatusBadRequest},
		{"method", services.Wrap(services.ErrMethodNotAllowed, "api", "", "", nil), http.StatusMethodNotAllowed},
		{"upstream", services.Wrap(services.ErrUpstream, "llm", "complete", "", errors.New("503")), http.StatusInternalServerError},
		{"plain", errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	parseErr := services.Wrap(services.ErrParse, "criteria", "normalize", "", errors.New("unexpected end of JSON input"))
	if got := services.UserMessage(parseErr); got != services.ParseFailureMessage {
		t.Fatalf("unexpected parse message %q", got)
	}
	genreErr := fmt.Errorf("normalize: %w", &services.UnknownGenreError{Labels: []string{"호러", "무협"}})
	if got := services.UserMessage(genreErr); !strings.Contains(got, "호러") || !strings.Contains(got, "무협") {
		t.Fatalf("expected labels in message, got %q", got)
	}
	if !errors.Is(genreErr, services.ErrUnknownGenre) {
		t.Fatal("expected unknown genre error to match marker")
	}
}
