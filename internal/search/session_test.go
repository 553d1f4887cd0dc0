package search

import (
	"context"
	"errors"
	"testing"
)

func TestSessionsBeginSupersedesPrevious(t *testing.T) {
	s := newSessions()

	first, releaseFirst := s.begin(context.Background(), "tab", "req-1")
	second, releaseSecond := s.begin(context.Background(), "tab", "req-2")

	if first.Err() == nil || !errors.Is(context.Cause(first), ErrSuperseded) {
		t.Fatalf("expected first action superseded, got %v", context.Cause(first))
	}
	if second.Err() != nil {
		t.Fatalf("expected second action live, got %v", second.Err())
	}

	releaseFirst()
	if s.len() != 1 {
		t.Fatalf("releasing a superseded action must keep the newer one, have %d", s.len())
	}
	releaseSecond()
	if s.len() != 0 {
		t.Fatalf("expected registry empty, have %d", s.len())
	}
}

func TestSessionsWithoutKeyAreNotTracked(t *testing.T) {
	s := newSessions()
	ctx, release := s.begin(context.Background(), "", "req-1")
	defer release()
	if s.len() != 0 {
		t.Fatal("anonymous actions must not be registered")
	}
	if s.cancel("") {
		t.Fatal("expected nothing to cancel")
	}
	if ctx.Err() != nil {
		t.Fatal("anonymous action must stay live")
	}
}

func TestSessionsCancel(t *testing.T) {
	s := newSessions()
	ctx, release := s.begin(context.Background(), "tab", "req-1")
	defer release()

	if !s.cancel("tab") {
		t.Fatal("expected in-flight action")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("expected cancellation, got %v", ctx.Err())
	}
	if s.cancel("tab") {
		t.Fatal("expected registry cleared after cancel")
	}
}
