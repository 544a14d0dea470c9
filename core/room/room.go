// Package room defines the real-time room abstraction the session
// orchestrator consumes: connection lifecycle, participant events, reliable
// text channels with topic routing, and participant-addressed remote calls.
//
// The package carries no transport of its own; implementations live in
// subpackages (wsroom provides a websocket signaling client). Media tracks
// surface as track events only.
package room

import (
	"context"
	"io"
)

// Protocol constants shared by the orchestrator and the remote agent.
const (
	// TopicChat is the reliable text topic for outbound user messages.
	TopicChat = "lk.chat"
	// TopicTranscription is the streamed text topic for agent replies.
	TopicTranscription = "lk.transcription"

	// MethodUpdatePrompt is the remote call updating the agent's instructions.
	MethodUpdatePrompt = "update_system_prompt"
	// MethodInterrupt is the remote call aborting the agent's current reply.
	MethodInterrupt = "interrupt"

	// AttrAgentState is the participant attribute the agent publishes its
	// conversational state under ("listening", "thinking", "speaking").
	AttrAgentState = "lk.agent.state"
)

// ConnectionState reports the transport-level room connection state.
type ConnectionState string

const (
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionReconnecting ConnectionState = "reconnecting"
)

// ParticipantKind classifies a participant by capability.
type ParticipantKind string

const (
	ParticipantStandard ParticipantKind = "standard"
	ParticipantAgent    ParticipantKind = "agent"
)

// Participant is a point-in-time view of a room member.
type Participant struct {
	Identity   string
	Kind       ParticipantKind
	Attributes map[string]string
}

// IsAgent reports whether the participant carries the agent capability tag.
func (p Participant) IsAgent() bool { return p.Kind == ParticipantAgent }

// TrackKind classifies a published media track.
type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// Track describes a remote media track surfaced through track events.
type Track struct {
	SID  string
	Kind TrackKind
}

// StreamHandler consumes one inbound text stream. The reader delivers the
// stream incrementally and returns io.EOF once the remote side closes it.
type StreamHandler func(r io.Reader, sender Participant)

// RPCRequest is a synchronous remote call addressed to one participant.
type RPCRequest struct {
	DestinationIdentity string
	Method              string
	Payload             string
}

// Client is the room transport consumed by the session orchestrator.
//
// Event callbacks are supplied as ConnectOptions and stream handlers are
// registered before Connect, so no event fired during the join can be missed
// for lack of a subscriber.
type Client interface {
	Connect(ctx context.Context, url, token string, opts ...ConnectOption) error
	Disconnect()

	SendText(ctx context.Context, topic, text string) error
	RegisterStreamHandler(topic string, handler StreamHandler)
	PerformRPC(ctx context.Context, req RPCRequest) (string, error)

	// Roster returns the participants present at call time, excluding the
	// local participant.
	Roster() []Participant
	LocalIdentity() string
}
