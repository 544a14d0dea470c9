// Package speech defines the continuous speech recognition contract the
// session orchestrator consumes. Engines deliver per-update result lists in
// which each result is tagged final or interim; the orchestrator owns the
// partitioning and buffering policy.
package speech

import (
	"context"
	"errors"
)

// ErrAlreadyActive is returned by Start when a recognition session is
// already running. Callers restarting after a benign termination treat it
// as success.
var ErrAlreadyActive = errors.New("recognition session already active")

// Result is one recognition alternative delivered in an update. Final
// results are committed; interim results are tentative and replaced by the
// next update.
type Result struct {
	Text  string
	Final bool
}

// ErrorCode classifies recognition errors.
type ErrorCode string

const (
	// ErrorNoSpeech reports that no speech was detected before the engine's
	// own cutoff. Expected during normal operation.
	ErrorNoSpeech ErrorCode = "no-speech"
	// ErrorAborted reports a deliberate abort of the session.
	ErrorAborted ErrorCode = "aborted"
	// ErrorOther covers everything else.
	ErrorOther ErrorCode = "other"
)

// Error is a recognition error surfaced through the error callback.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e Error) Error() string { return string(e.Code) + ": " + e.Message }

// Benign reports whether the error belongs to the expected-and-recoverable
// classes (no speech, deliberate abort).
func (e Error) Benign() bool {
	return e.Code == ErrorNoSpeech || e.Code == ErrorAborted
}

// Engine is a continuous, interim-enabled recognition session factory.
//
// Start opens one session and returns; results arrive through the
// configured callbacks until the session terminates, at which point the end
// callback fires exactly once. Abort terminates the active session without
// delivering further results.
type Engine interface {
	Start(ctx context.Context, opts ...Option) error
	Abort()
}
