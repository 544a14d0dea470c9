package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

func TestConnectRegistersHandlersBeforeJoining(t *testing.T) {
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient)
	defer s.Disconnect()

	if s.State() != StateConnected {
		t.Fatalf("expected connected state, got %q", s.State())
	}

	if roomClient.streamHandlers[room.TopicTranscription] == nil {
		t.Fatalf("expected a reply stream handler on %q", room.TopicTranscription)
	}

	opts := roomClient.connectOptions()
	if opts.ConnectionStateCallback == nil {
		t.Fatalf("expected connection state callback to be registered")
	}
	if opts.ParticipantJoinedCallback == nil || opts.ParticipantLeftCallback == nil {
		t.Fatalf("expected participant callbacks to be registered")
	}
	if opts.AttributesChangedCallback == nil {
		t.Fatalf("expected attributes callback to be registered")
	}
}

func TestConnectGeneratesFreshLocalIdentity(t *testing.T) {
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient)

	first := s.LocalIdentity()
	if !strings.HasPrefix(first, "user-") {
		t.Fatalf("expected a user-prefixed identity, got %q", first)
	}

	s.Disconnect()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("expected reconnect to succeed, got %v", err)
	}
	defer s.Disconnect()

	if second := s.LocalIdentity(); second == first {
		t.Fatalf("expected a fresh identity per connection, got %q twice", first)
	}
}

func TestConnectWithoutCollaboratorsFails(t *testing.T) {
	s := New(WithTokenClient(&tokenClientStub{}))
	if err := s.Connect(context.Background()); !errors.Is(err, ErrNoRoomClient) {
		t.Fatalf("expected ErrNoRoomClient, got %v", err)
	}

	s = New(WithRoomClient(&roomClientStub{}))
	if err := s.Connect(context.Background()); !errors.Is(err, ErrNoTokenClient) {
		t.Fatalf("expected ErrNoTokenClient, got %v", err)
	}
}

func TestConnectWhileConnectedFails(t *testing.T) {
	s, _ := connectedSession(t, &roomClientStub{})
	defer s.Disconnect()

	if err := s.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}
}

func TestConnectTokenFailureRevertsToDisconnected(t *testing.T) {
	tokenFailure := errors.New("token service down")
	s := New(
		WithRoomClient(&roomClientStub{}),
		WithTokenClient(&tokenClientStub{tokenErr: tokenFailure}),
	)

	recorder := &eventRecorder{}
	err := s.Connect(context.Background(), WithEventCallback(recorder.record))
	if !errors.Is(err, tokenFailure) {
		t.Fatalf("expected the token failure to surface, got %v", err)
	}
	if s.State() != StateDisconnected {
		t.Fatalf("expected disconnected state after failure, got %q", s.State())
	}

	var failureEvent *events.ConnectionStateChanged
	for _, event := range recorder.all() {
		if typedEvent, ok := event.(events.ConnectionStateChanged); ok && typedEvent.Err != nil {
			failureEvent = &typedEvent
		}
	}
	if failureEvent == nil {
		t.Fatalf("expected a connection event carrying the failure")
	}
	if failureEvent.State != string(StateDisconnected) {
		t.Fatalf("expected the failure event to report disconnected, got %q", failureEvent.State)
	}
}

func TestConnectJoinFailureRevertsToDisconnected(t *testing.T) {
	joinFailure := errors.New("room unreachable")
	s := New(
		WithRoomClient(&roomClientStub{connectErr: joinFailure}),
		WithTokenClient(&tokenClientStub{}),
	)

	if err := s.Connect(context.Background()); !errors.Is(err, joinFailure) {
		t.Fatalf("expected the join failure to surface, got %v", err)
	}
	if s.State() != StateDisconnected {
		t.Fatalf("expected disconnected state after failure, got %q", s.State())
	}
}

func TestDisconnectResetsConnectionStateButKeepsTranscript(t *testing.T) {
	roomClient := &roomClientStub{
		roster: []room.Participant{agentParticipant("agent-1", nil)},
	}
	s, recorder := connectedSession(t, roomClient)

	s.SendUserText("hello")
	waitUntil(t, "user text to be sent", func() bool {
		return len(roomClient.sentTexts()) == 1
	})

	s.Disconnect()

	if s.State() != StateDisconnected {
		t.Fatalf("expected disconnected state, got %q", s.State())
	}
	if s.AgentIdentity() != "" || s.AgentState() != "" {
		t.Fatalf("expected agent tracking to be cleared, got %q/%q", s.AgentIdentity(), s.AgentState())
	}
	if roomClient.disconnects != 1 {
		t.Fatalf("expected one room disconnect, got %d", roomClient.disconnects)
	}

	view := s.Transcript().Snapshot()
	if len(view.Entries) != 1 || view.Entries[0].Text != "hello" {
		t.Fatalf("expected the transcript to survive disconnect, got %+v", view.Entries)
	}
	if view.PendingReply || view.Interim != "" {
		t.Fatalf("expected pending and interim entries to be cleared on disconnect")
	}

	if recorder.count(events.KindConnectionStateChanged) < 3 {
		t.Fatalf("expected connecting, connected and disconnected events, got %d", recorder.count(events.KindConnectionStateChanged))
	}

	// A second disconnect is a no-op.
	s.Disconnect()
	if roomClient.disconnects != 1 {
		t.Fatalf("expected disconnect to be idempotent, got %d room disconnects", roomClient.disconnects)
	}
}

func TestRoomReconnectCycleTracksState(t *testing.T) {
	roomClient := &roomClientStub{}
	s, recorder := connectedSession(t, roomClient)
	defer s.Disconnect()

	opts := roomClient.connectOptions()

	opts.ConnectionStateCallback(room.ConnectionReconnecting)
	if s.State() != StateReconnecting {
		t.Fatalf("expected reconnecting state, got %q", s.State())
	}

	opts.ConnectionStateCallback(room.ConnectionConnected)
	if s.State() != StateConnected {
		t.Fatalf("expected connected state after recovery, got %q", s.State())
	}

	// Repeating the current state emits nothing new.
	before := recorder.count(events.KindConnectionStateChanged)
	opts.ConnectionStateCallback(room.ConnectionConnected)
	if recorder.count(events.KindConnectionStateChanged) != before {
		t.Fatalf("expected no event for an unchanged state")
	}
}

func TestRoomDisconnectTearsSessionDown(t *testing.T) {
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient)

	roomClient.connectOptions().ConnectionStateCallback(room.ConnectionDisconnected)

	if s.State() != StateDisconnected {
		t.Fatalf("expected a terminal room disconnect to tear the session down, got %q", s.State())
	}
	if roomClient.disconnects != 1 {
		t.Fatalf("expected the room client to be released, got %d disconnects", roomClient.disconnects)
	}
}

func TestSeedPromptPopulatesEmptyPromptOnly(t *testing.T) {
	tokens := &tokenClientStub{}
	tokens.config.DefaultSystemPrompt = "You are a helpful assistant."

	s := New(
		WithRoomClient(&roomClientStub{}),
		WithTokenClient(tokens),
		WithIntervals(testIntervals()),
	)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	if s.Prompt() != "You are a helpful assistant." {
		t.Fatalf("expected the default instruction string, got %q", s.Prompt())
	}
	s.Disconnect()

	// A local edit wins over the default on the next connect.
	s.SetPrompt("custom prompt")
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("expected reconnect to succeed, got %v", err)
	}
	defer s.Disconnect()
	if s.Prompt() != "custom prompt" {
		t.Fatalf("expected the local edit to survive, got %q", s.Prompt())
	}
}
