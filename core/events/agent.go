package events

const (
	// KindAgentStateChanged identifies tracked-agent display state changes.
	KindAgentStateChanged Kind = "agent.state_changed"
	// KindAgentTrackChanged identifies tracked-agent media track changes.
	KindAgentTrackChanged Kind = "agent.track_changed"
)

// AgentStateChanged carries the tracked agent's display state. Identity is
// empty while no agent is resolved. State is projected verbatim from remote
// attributes when one is reported, so unknown values pass through.
type AgentStateChanged struct {
	Base
	Identity string
	State    string
}

// NewAgentStateChanged creates an agent display state event.
func NewAgentStateChanged(identity, state string) AgentStateChanged {
	return AgentStateChanged{Base: NewBase(KindAgentStateChanged), Identity: identity, State: state}
}

// AgentTrackChanged marks a media track of the tracked agent being
// subscribed or unsubscribed. Front-ends use it to start and stop audio
// playback; the session core never touches the media itself.
type AgentTrackChanged struct {
	Base
	Identity   string
	TrackSID   string
	TrackKind  string
	Subscribed bool
}

// NewAgentTrackChanged creates an agent track event.
func NewAgentTrackChanged(identity, trackSID, trackKind string, subscribed bool) AgentTrackChanged {
	return AgentTrackChanged{
		Base:       NewBase(KindAgentTrackChanged),
		Identity:   identity,
		TrackSID:   trackSID,
		TrackKind:  trackKind,
		Subscribed: subscribed,
	}
}
