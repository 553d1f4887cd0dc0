package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrParse            = errors.New("parse error")
	ErrUnknownGenre     = errors.New("unknown genre")
	ErrUpstream         = errors.New("upstream error")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrConfiguration    = errors.New("configuration error")
)

// ParseFailureMessage is the user-facing text for model output that could not be interpreted.
const ParseFailureMessage = "could not understand the query; please try again"

// UnknownGenreError reports genre labels that have no catalog mapping.
type UnknownGenreError struct {
	Labels []string
}

func (e *UnknownGenreError) Error() string {
	return fmt.Sprintf("unknown genre: %s", strings.Join(e.Labels, ", "))
}

// Is lets errors.Is match the ErrUnknownGenre marker.
func (e *UnknownGenreError) Is(target error) bool {
	return target == ErrUnknownGenre
}

// Wrap builds an error message that includes component context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a pipeline error to the status code reported at the HTTP boundary.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrParse), errors.Is(err, ErrUnknownGenre):
		return http.StatusBadRequest
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the single message shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var genreErr *UnknownGenreError
	switch {
	case errors.As(err, &genreErr):
		return genreErr.Error()
	case errors.Is(err, ErrParse):
		return ParseFailureMessage
	case errors.Is(err, ErrMethodNotAllowed):
		return "method not allowed"
	default:
		return err.Error()
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
