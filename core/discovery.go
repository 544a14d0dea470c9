package session

import (
	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

// scanRoster looks for an agent among the participants already present
// right after the join. If none is there the session enters the waiting
// display state and starts the bounded discovery timer.
func (s *Session) scanRoster() {
	for _, participant := range s.room.Roster() {
		if participant.IsAgent() {
			s.resolveAgent(participant)
			return
		}
	}

	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	s.agentState = AgentWaiting
	epoch := s.epoch
	s.agentWaitTimer.stop()
	s.agentWaitTimer = startTimer(s.intervals.AgentWait, func() {
		s.handleAgentWaitExpired(epoch)
	})
	s.mu.Unlock()

	s.emitEvent(events.NewAgentStateChanged("", AgentWaiting))
}

// handleAgentWaitExpired marks the agent as not running. This is a display
// state only: a later join still resolves normally and replaces it.
func (s *Session) handleAgentWaitExpired(epoch int) {
	s.mu.Lock()
	if s.epoch != epoch || s.agentIdentity != "" {
		s.mu.Unlock()
		return
	}
	s.agentState = AgentNotFound
	s.mu.Unlock()

	s.emitEvent(events.NewAgentStateChanged("", AgentNotFound))
}

func (s *Session) handleParticipantJoined(participant room.Participant) {
	if !participant.IsAgent() {
		return
	}
	s.resolveAgent(participant)
}

// resolveAgent tracks the given participant as the agent, cancels the
// discovery timer, and pushes the current instruction string so a freshly
// joined agent starts from it.
func (s *Session) resolveAgent(participant room.Participant) {
	s.mu.Lock()
	s.agentWaitTimer.stop()
	s.agentWaitTimer = nil
	s.agentIdentity = participant.Identity
	state := participant.Attributes[room.AttrAgentState]
	if state == "" {
		state = AgentConnected
	}
	s.agentState = state
	s.mu.Unlock()

	s.emitEvent(events.NewAgentStateChanged(participant.Identity, state))

	s.pushPrompt()
}

// handleParticipantLeft clears the agent reference on the tracked agent's
// departure. Unrelated participants are ignored.
func (s *Session) handleParticipantLeft(participant room.Participant) {
	s.mu.Lock()
	if participant.Identity == "" || participant.Identity != s.agentIdentity {
		s.mu.Unlock()
		return
	}
	s.agentIdentity = ""
	s.agentState = AgentDisconnected
	s.mu.Unlock()

	s.emitEvent(events.NewAgentStateChanged("", AgentDisconnected))
}

// handleAttributesChanged projects a recognized agent state attribute
// verbatim into the display state.
func (s *Session) handleAttributesChanged(identity string, attributes map[string]string) {
	s.mu.Lock()
	if identity == "" || identity != s.agentIdentity {
		s.mu.Unlock()
		return
	}
	state, ok := attributes[room.AttrAgentState]
	if !ok || state == "" {
		s.mu.Unlock()
		return
	}
	s.agentState = state
	s.mu.Unlock()

	s.emitEvent(events.NewAgentStateChanged(identity, state))
}

func (s *Session) handleTrackSubscribed(participant room.Participant, track room.Track) {
	s.forwardAgentTrack(participant, track, true)
}

func (s *Session) handleTrackUnsubscribed(participant room.Participant, track room.Track) {
	s.forwardAgentTrack(participant, track, false)
}

func (s *Session) forwardAgentTrack(participant room.Participant, track room.Track, subscribed bool) {
	s.mu.Lock()
	tracked := participant.Identity != "" && participant.Identity == s.agentIdentity
	s.mu.Unlock()
	if !tracked {
		return
	}

	s.emitEvent(events.NewAgentTrackChanged(participant.Identity, track.SID, string(track.Kind), subscribed))
}
