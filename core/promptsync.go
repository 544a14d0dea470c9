package session

import (
	"strings"
	"time"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

// SetPrompt records a local edit of the instruction string and restarts
// the push debounce timer. The string itself is process-lifetime state: it
// survives disconnects and is pushed again when an agent (re)joins.
func (s *Session) SetPrompt(text string) {
	s.mu.Lock()
	s.promptText = text
	s.debounceTimer.stop()
	s.debounceTimer = startTimer(s.intervals.Debounce, s.pushPrompt)
	s.mu.Unlock()
}

// Prompt returns the current instruction string.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptText
}

// PromptStatus returns the display status of the most recent push.
func (s *Session) PromptStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promptStatus
}

// pushPrompt issues the instruction update call to the resolved agent. It
// is a no-op while the trimmed string is empty or no agent is resolved; no
// retry is scheduled on failure — the next push happens on the next edit
// or the next agent (re)connection.
func (s *Session) pushPrompt() {
	s.mu.Lock()
	text := strings.TrimSpace(s.promptText)
	agent := s.agentIdentity
	ctx := s.baseContext
	s.mu.Unlock()

	if text == "" || agent == "" {
		return
	}

	go func() {
		_, err := s.room.PerformRPC(ctx, room.RPCRequest{
			DestinationIdentity: agent,
			Method:              room.MethodUpdatePrompt,
			Payload:             text,
		})
		if err != nil {
			logger.Warn("failed to push instruction update", "error", err)
			s.setPromptStatus(PromptStatusFailed, s.intervals.FailedClear)
			return
		}
		s.setPromptStatus(PromptStatusSaved, s.intervals.SavedClear)
	}()
}

// setPromptStatus sets the push status display and schedules its
// auto-clear. A newer status supersedes the pending clear.
func (s *Session) setPromptStatus(status string, clearAfter time.Duration) {
	s.mu.Lock()
	s.promptStatus = status
	s.statusClearTimer.stop()
	s.statusClearTimer = startTimer(clearAfter, func() {
		s.mu.Lock()
		if s.promptStatus != status {
			s.mu.Unlock()
			return
		}
		s.promptStatus = PromptStatusIdle
		s.mu.Unlock()

		s.emitEvent(events.NewPromptPushStateChanged(PromptStatusIdle))
	})
	s.mu.Unlock()

	s.emitEvent(events.NewPromptPushStateChanged(status))
}

// InterruptAgent asks the agent to abort its current reply. Best effort:
// failures are logged and nothing is retried.
func (s *Session) InterruptAgent() {
	s.mu.Lock()
	agent := s.agentIdentity
	ctx := s.baseContext
	s.mu.Unlock()

	if agent == "" {
		return
	}

	go func() {
		if _, err := s.room.PerformRPC(ctx, room.RPCRequest{
			DestinationIdentity: agent,
			Method:              room.MethodInterrupt,
		}); err != nil {
			logger.Warn("failed to interrupt agent", "error", err)
		}
	}()
}
