// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"
	"testing"
)

func TestStatusLifecycle(t *testing.T) {
	s := NewStatus()

	if got := s.Phase(OpLogin); got != PhaseIdle {
		t.Errorf("initial phase = %v, want idle", got)
	}

	attempt := s.Begin(OpLogin)
	if !s.Pending(OpLogin) {
		t.Error("Begin must mark the operation pending")
	}
	if !s.AnyPending() {
		t.Error("AnyPending must see the in-flight attempt")
	}

	s.Succeed(OpLogin, attempt)
	if got := s.Phase(OpLogin); got != PhaseSucceeded {
		t.Errorf("phase = %v, want succeeded", got)
	}
	if s.AnyPending() {
		t.Error("nothing should be pending after completion")
	}
}

func TestStatusFailureKeepsError(t *testing.T) {
	s := NewStatus()
	boom := errors.New("invalid credentials")

	attempt := s.Begin(OpLogin)
	s.Fail(OpLogin, attempt, boom)

	if got := s.Phase(OpLogin); got != PhaseFailed {
		t.Errorf("phase = %v, want failed", got)
	}
	if !errors.Is(s.Err(OpLogin), boom) {
		t.Errorf("Err() = %v, want %v", s.Err(OpLogin), boom)
	}

	// A new attempt clears the previous failure.
	s.Begin(OpLogin)
	if s.Err(OpLogin) != nil {
		t.Error("Begin must reset the stored error")
	}
}

// A completion arriving for a superseded attempt must not overwrite
// the newer attempt's state.
func TestStatusSupersededAttemptIgnored(t *testing.T) {
	s := NewStatus()

	first := s.Begin(OpLogin)
	second := s.Begin(OpLogin)

	s.Succeed(OpLogin, first)
	if got := s.Phase(OpLogin); got != PhasePending {
		t.Errorf("phase = %v, want pending (newer attempt still running)", got)
	}

	s.Fail(OpLogin, first, errors.New("stale failure"))
	if got := s.Phase(OpLogin); got != PhasePending {
		t.Errorf("phase = %v, want pending", got)
	}
	if s.Err(OpLogin) != nil {
		t.Error("stale failure must not surface")
	}

	s.Succeed(OpLogin, second)
	if got := s.Phase(OpLogin); got != PhaseSucceeded {
		t.Errorf("phase = %v, want succeeded", got)
	}
}

func TestStatusTracksOpsIndependently(t *testing.T) {
	s := NewStatus()

	login := s.Begin(OpLogin)
	logout := s.Begin(OpLogout)

	s.Succeed(OpLogin, login)
	if got := s.Phase(OpLogout); got != PhasePending {
		t.Errorf("logout phase = %v, want pending", got)
	}

	s.Fail(OpLogout, logout, errors.New("vault error"))
	if got := s.Phase(OpLogin); got != PhaseSucceeded {
		t.Errorf("login phase = %v, want succeeded", got)
	}

	if got := s.Phase(OpSignup); got != PhaseIdle {
		t.Errorf("signup phase = %v, want idle", got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhasePending, "pending"},
		{PhaseSucceeded, "succeeded"},
		{PhaseFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
