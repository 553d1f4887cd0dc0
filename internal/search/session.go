package search

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause recorded when a newer action for the
// same session replaces an in-flight one.
var ErrSuperseded = errors.New("superseded by a newer search")

type inflight struct {
	requestID string
	cancel    context.CancelCauseFunc
}

// sessions tracks the in-flight action per session key.
type sessions struct {
	mu     sync.Mutex
	active map[string]inflight
}

func newSessions() *sessions {
	return &sessions{active: make(map[string]inflight)}
}

// begin registers requestID as the current action for key, cancelling any
// previous one. The returned release must be called when the action ends.
func (s *sessions) begin(ctx context.Context, key, requestID string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	if key == "" {
		return ctx, func() { cancel(nil) }
	}

	s.mu.Lock()
	if prev, ok := s.active[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.active[key] = inflight{requestID: requestID, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if cur, ok := s.active[key]; ok && cur.requestID == requestID {
			delete(s.active, key)
		}
		s.mu.Unlock()
		cancel(nil)
	}
}

// cancel aborts the in-flight action for key, if any.
func (s *sessions) cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.active[key]
	if !ok {
		return false
	}
	cur.cancel(context.Canceled)
	delete(s.active, key)
	return true
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
