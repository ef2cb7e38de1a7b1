package assignment

import (
	"testing"
	"time"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusScheduled, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusCompleted, StatusCompleted, true},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	now := time.Date(2025, 8, 10, 6, 30, 0, 0, time.UTC)
	a := &Assignment{Status: StatusScheduled}

	if err := ApplyTransition(a, StatusInProgress, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if a.StartedAt == nil || !a.StartedAt.Equal(now) {
		t.Fatalf("StartedAt not set: %v", a.StartedAt)
	}

	later := now.Add(75 * time.Minute)
	if err := ApplyTransition(a, StatusCompleted, later); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if a.CompletedAt == nil || !a.CompletedAt.Equal(later) {
		t.Fatalf("CompletedAt not set: %v", a.CompletedAt)
	}
}

func TestApplyTransitionRejectsTerminal(t *testing.T) {
	a := &Assignment{Status: StatusCancelled}
	err := ApplyTransition(a, StatusInProgress, time.Now())
	if !apperr.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if a.Status != StatusCancelled {
		t.Fatalf("status mutated on rejected transition: %s", a.Status)
	}
}

func TestLogTransitions(t *testing.T) {
	l := &ExecutionLog{Status: LogStarted}
	if err := ApplyLogTransition(l, LogDelayed); err != nil {
		t.Fatalf("ApplyLogTransition: %v", err)
	}
	if err := ApplyLogTransition(l, LogCompleted); !apperr.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError on finalized log, got %v", err)
	}
}
