// Package session implements the client-side real-time agent session
// orchestrator: room connection lifecycle, agent discovery and state
// tracking, the speech capture pipeline, the message exchange pipeline, and
// instruction-string synchronization to the agent.
//
// All orchestrator state lives in one Session value. Handlers fire from
// room-client goroutines, recognition callbacks, and timers; every handler
// takes the session mutex, reads a consistent snapshot, mutates, and emits
// events only after releasing the lock, so a callback is free to call back
// into the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
	"github.com/voxlink-dev/voicelink/core/speech"
)

// State is the session's connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Agent display states the session sets itself. Remote attribute values
// ("listening", "thinking", "speaking", anything else the agent reports)
// are projected verbatim alongside these.
const (
	AgentWaiting      = "waiting"
	AgentConnected    = "connected"
	AgentDisconnected = "disconnected"
	AgentNotFound     = "not-found"
	AgentListening    = "listening"
	AgentThinking     = "thinking"
	AgentSpeaking     = "speaking"
)

// Prompt push display statuses.
const (
	PromptStatusIdle   = "idle"
	PromptStatusSaved  = "saved"
	PromptStatusFailed = "failed"
)

var (
	ErrAlreadyConnected = errors.New("session already connected")
	ErrNoRoomClient     = errors.New("no room client configured")
	ErrNoTokenClient    = errors.New("no token client configured")
)

// Session is the single owned orchestrator state. One Session supports one
// active room connection at a time; the prompt string and the transcript
// survive disconnect/reconnect cycles.
type Session struct {
	mu sync.Mutex

	state         State
	localIdentity string
	agentIdentity string
	agentState    string
	listening     bool

	// epoch is bumped on every teardown so resolution handlers of in-flight
	// operations can detect a stale connection and no-op.
	epoch int

	utterance utteranceBuffer

	promptText   string
	promptStatus string

	debounceTimer    *timer
	agentWaitTimer   *timer
	statusClearTimer *timer

	transcript *Transcript

	room   room.Client
	engine speech.Engine
	tokens TokenClient

	intervals   Intervals
	emitEvent   eventEmitter
	baseContext context.Context
}

func New(opts ...SessionOption) *Session {
	s := &Session{
		state:        StateDisconnected,
		promptStatus: PromptStatusIdle,
		transcript:   NewTranscript(),
		intervals:    defaultIntervals(),
		emitEvent:    noopEventEmitter,
		baseContext:  context.Background(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Connect obtains a join grant for a freshly generated local identity,
// registers all event handlers, joins the room, and scans the roster for an
// already-present agent. A connect failure reverts the session to
// disconnected and is returned to the caller; it is never retried silently.
//
// ctx outlives the call: it is the base context for the connection's sends,
// remote calls, and recognition sessions.
func (s *Session) Connect(ctx context.Context, opts ...ConnectOption) error {
	if s.room == nil {
		return ErrNoRoomClient
	}
	if s.tokens == nil {
		return ErrNoTokenClient
	}

	options := ConnectOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.localIdentity = "user-" + uuid.NewString()
	s.emitEvent = newCallbackEventEmitter(options)
	s.baseContext = ctx
	epoch := s.epoch
	s.mu.Unlock()

	s.emitEvent(events.NewConnectionStateChanged(string(StateConnecting), nil))

	ctx, span := tracer.Start(ctx, "session connect")
	defer span.End()

	grant, err := s.tokens.Token(ctx, s.LocalIdentity())
	if err != nil {
		return s.failConnect(epoch, span, fmt.Errorf("failed to obtain join grant: %w", err))
	}

	s.seedPrompt(ctx)

	// Handlers must be in place before the join begins: events fired
	// synchronously while joining would otherwise be lost.
	s.room.RegisterStreamHandler(room.TopicTranscription, s.handleReplyStream)
	listenOpts := []room.ConnectOption{
		room.WithConnectionStateCallback(s.handleRoomConnectionState),
		room.WithParticipantJoinedCallback(s.handleParticipantJoined),
		room.WithParticipantLeftCallback(s.handleParticipantLeft),
		room.WithAttributesChangedCallback(s.handleAttributesChanged),
		room.WithTrackSubscribedCallback(s.handleTrackSubscribed),
		room.WithTrackUnsubscribedCallback(s.handleTrackUnsubscribed),
	}

	if err := s.room.Connect(ctx, grant.URL, grant.Token, listenOpts...); err != nil {
		return s.failConnect(epoch, span, fmt.Errorf("failed to join room: %w", err))
	}

	s.mu.Lock()
	if s.epoch != epoch || s.state != StateConnecting {
		// Torn down while the join was in flight.
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnected
	s.mu.Unlock()

	s.emitEvent(events.NewConnectionStateChanged(string(StateConnected), nil))

	// The roster scan happens only after the join resolved; agents joining
	// earlier were delivered through the join handler instead.
	s.scanRoster()

	return nil
}

func (s *Session) failConnect(epoch int, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	s.mu.Lock()
	if s.epoch == epoch && s.state == StateConnecting {
		s.state = StateDisconnected
	}
	s.mu.Unlock()

	s.emitEvent(events.NewConnectionStateChanged(string(StateDisconnected), err))
	return err
}

// seedPrompt populates an empty prompt with the service's default
// instruction string. A local edit always wins; failures are ignored.
func (s *Session) seedPrompt(ctx context.Context) {
	s.mu.Lock()
	empty := s.promptText == ""
	s.mu.Unlock()
	if !empty {
		return
	}

	config, err := s.tokens.Config(ctx)
	if err != nil || config.DefaultSystemPrompt == "" {
		return
	}

	s.mu.Lock()
	if s.promptText == "" {
		s.promptText = config.DefaultSystemPrompt
	}
	s.mu.Unlock()
}

// Disconnect tears the session down: cancels the agent-wait timer, stops
// the speech capture pipeline, leaves the room, and resets all
// per-connection state. The prompt string and the transcript survive.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.state = StateDisconnected
	s.agentWaitTimer.stop()
	s.agentWaitTimer = nil
	wasListening := s.listening
	s.listening = false
	s.utterance = utteranceBuffer{}
	s.agentIdentity = ""
	s.agentState = ""
	s.mu.Unlock()

	if wasListening && s.engine != nil {
		s.engine.Abort()
	}

	s.transcript.ClearInterim()
	s.transcript.ClearPending()

	s.room.Disconnect()

	if wasListening {
		s.emitEvent(events.NewListeningStateChanged(false))
	}
	s.emitEvent(events.NewTranscriptInterimUpdated(""))
	s.emitEvent(events.NewPendingReplyChanged(false))
	s.emitEvent(events.NewAgentStateChanged("", ""))
	s.emitEvent(events.NewConnectionStateChanged(string(StateDisconnected), nil))
}

func (s *Session) handleRoomConnectionState(state room.ConnectionState) {
	s.mu.Lock()
	// The connect path owns its own transitions; room events only matter
	// for an established connection.
	if s.state == StateDisconnected || s.state == StateConnecting {
		s.mu.Unlock()
		return
	}

	var next State
	switch state {
	case room.ConnectionReconnecting:
		next = StateReconnecting
	case room.ConnectionConnected:
		next = StateConnected
	case room.ConnectionDisconnected:
		s.mu.Unlock()
		s.Disconnect()
		return
	default:
		s.mu.Unlock()
		return
	}

	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()

	s.emitEvent(events.NewConnectionStateChanged(string(next), nil))
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LocalIdentity returns the identity used for the current connection, empty
// before the first connect.
func (s *Session) LocalIdentity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localIdentity
}

// AgentIdentity returns the resolved agent identity, empty while none is
// tracked.
func (s *Session) AgentIdentity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentIdentity
}

// AgentState returns the agent display state.
func (s *Session) AgentState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentState
}

// IsListening reports whether the speech capture pipeline is active.
func (s *Session) IsListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Transcript returns the session transcript for snapshotting.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}
