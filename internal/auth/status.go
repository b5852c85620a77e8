// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "sync"

// Op identifies a tracked authentication operation.
type Op string

const (
	OpLogin  Op = "login"
	OpSignup Op = "signup"
	OpLogout Op = "logout"
)

// Phase is the lifecycle stage of an operation's most recent attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Status tracks the lifecycle of auth operations in the current
// process so callers can render progress and report failure reasons.
// Each Begin starts a new attempt; completions of superseded attempts
// are dropped rather than overwriting the newer attempt's phase.
type Status struct {
	mu     sync.Mutex
	phases map[Op]Phase
	errs   map[Op]error
	seq    map[Op]uint64
}

// NewStatus creates an idle Status tracker.
func NewStatus() *Status {
	return &Status{
		phases: make(map[Op]Phase),
		errs:   make(map[Op]error),
		seq:    make(map[Op]uint64),
	}
}

// Begin marks a new attempt of op as pending and returns its attempt
// token for the matching Succeed or Fail call.
func (s *Status) Begin(op Op) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[op]++
	s.phases[op] = PhasePending
	s.errs[op] = nil
	return s.seq[op]
}

// Succeed completes the given attempt. Attempts superseded by a newer
// Begin are ignored.
func (s *Status) Succeed(op Op, attempt uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[op] != attempt {
		return
	}
	s.phases[op] = PhaseSucceeded
	s.errs[op] = nil
}

// Fail completes the given attempt with its error. Attempts superseded
// by a newer Begin are ignored.
func (s *Status) Fail(op Op, attempt uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[op] != attempt {
		return
	}
	s.phases[op] = PhaseFailed
	s.errs[op] = err
}

// Phase returns the current phase of op.
func (s *Status) Phase(op Op) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phases[op]
}

// Err returns the error of op's most recent attempt, if it failed.
func (s *Status) Err(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[op]
}

// Pending reports whether op has an attempt in flight.
func (s *Status) Pending(op Op) bool {
	return s.Phase(op) == PhasePending
}

// AnyPending reports whether any operation has an attempt in flight.
func (s *Status) AnyPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.phases {
		if p == PhasePending {
			return true
		}
	}
	return false
}
