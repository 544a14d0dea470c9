package session

import (
	"io"
	"strings"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

// SendUserText appends one user transcript entry, shows the reply
// placeholder, and sends the text over the room's reliable text channel on
// the chat topic. Without an active connection the call is dropped. A send
// failure removes the placeholder and is logged; delivery is attempted at
// most once.
//
// A second send while a reply is still pending replaces the placeholder
// rather than stacking a new one.
func (s *Session) SendUserText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.state != StateConnected && s.state != StateReconnecting {
		s.mu.Unlock()
		logger.Debug("dropping user text without active session")
		return
	}
	epoch := s.epoch
	ctx := s.baseContext
	s.mu.Unlock()

	s.transcript.Append(RoleUser, text)
	s.emitEvent(events.NewTranscriptAppended(string(RoleUser), text))

	s.transcript.ShowPending()
	s.emitEvent(events.NewPendingReplyChanged(true))

	go func() {
		if err := s.room.SendText(ctx, room.TopicChat, text); err != nil {
			s.mu.Lock()
			stale := s.epoch != epoch
			s.mu.Unlock()
			if stale {
				return
			}

			s.transcript.ClearPending()
			s.emitEvent(events.NewPendingReplyChanged(false))
			logger.Warn("failed to send user text", "error", err)
		}
	}()
}

// handleReplyStream consumes one agent reply stream. The stream is read to
// completion before acting: one stream is one complete logical reply. A
// reply is accepted from the resolved agent, or, while no agent is
// resolved, from any participant other than the local user, so the local
// echo of an outbound message is never misread as a reply.
func (s *Session) handleReplyStream(r io.Reader, sender room.Participant) {
	data, err := io.ReadAll(r)
	if err != nil {
		logger.Warn("failed to read reply stream", "error", err)
		return
	}
	text := strings.TrimSpace(string(data))

	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	agent := s.agentIdentity
	local := s.localIdentity
	s.mu.Unlock()

	accepted := false
	if agent != "" {
		accepted = sender.Identity == agent
	} else {
		accepted = sender.Identity != local
	}
	if !accepted || text == "" {
		return
	}

	s.transcript.ClearPending()
	s.emitEvent(events.NewPendingReplyChanged(false))

	s.transcript.Append(RoleAgent, text)
	s.emitEvent(events.NewTranscriptAppended(string(RoleAgent), text))
}
