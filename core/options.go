package session

import (
	"context"
	"time"

	"github.com/voxlink-dev/voicelink/core/room"
	"github.com/voxlink-dev/voicelink/core/speech"
	"github.com/voxlink-dev/voicelink/core/token"
)

type SessionOption func(*Session)

// TokenClient issues join grants and serves the app configuration.
type TokenClient interface {
	Token(ctx context.Context, identity string) (token.JoinGrant, error)
	Config(ctx context.Context) (token.AppConfig, error)
}

func WithRoomClient(client room.Client) SessionOption {
	return func(s *Session) {
		s.room = client
	}
}

func WithSpeechEngine(engine speech.Engine) SessionOption {
	return func(s *Session) {
		s.engine = engine
	}
}

func WithTokenClient(client TokenClient) SessionOption {
	return func(s *Session) {
		s.tokens = client
	}
}

// Intervals collects the session's fixed timing constants. Tests shorten
// them; production code uses the defaults.
type Intervals struct {
	// Debounce delays an instruction push after the last edit.
	Debounce time.Duration
	// AgentWait bounds the post-connect wait for an agent to join.
	AgentWait time.Duration
	// SavedClear/FailedClear auto-clear the push status display.
	SavedClear  time.Duration
	FailedClear time.Duration
}

func defaultIntervals() Intervals {
	return Intervals{
		Debounce:    500 * time.Millisecond,
		AgentWait:   10 * time.Second,
		SavedClear:  2 * time.Second,
		FailedClear: 3 * time.Second,
	}
}

func WithIntervals(intervals Intervals) SessionOption {
	return func(s *Session) {
		if intervals.Debounce > 0 {
			s.intervals.Debounce = intervals.Debounce
		}
		if intervals.AgentWait > 0 {
			s.intervals.AgentWait = intervals.AgentWait
		}
		if intervals.SavedClear > 0 {
			s.intervals.SavedClear = intervals.SavedClear
		}
		if intervals.FailedClear > 0 {
			s.intervals.FailedClear = intervals.FailedClear
		}
	}
}
