package session

import (
	"errors"
	"testing"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
	"github.com/voxlink-dev/voicelink/core/speech"
)

func TestStartListeningOpensRecognitionSession(t *testing.T) {
	engine := &engineStub{}
	s, recorder := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	if !s.IsListening() {
		t.Fatalf("expected the listening flag to be set")
	}
	if engine.startCount() != 1 {
		t.Fatalf("expected one recognition session, got %d", engine.startCount())
	}
	if recorder.count(events.KindListeningStateChanged) != 1 {
		t.Fatalf("expected one listening event, got %d", recorder.count(events.KindListeningStateChanged))
	}

	// Starting again while active is a no-op.
	if err := s.StartListening(); err != nil {
		t.Fatalf("expected a repeat start to be a no-op, got %v", err)
	}
	if engine.startCount() != 1 {
		t.Fatalf("expected no second recognition session, got %d", engine.startCount())
	}
}

func TestStartListeningWithoutEngineOrConnectionIsNoOp(t *testing.T) {
	s, _ := connectedSession(t, &roomClientStub{})
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected a no-op without an engine, got %v", err)
	}
	if s.IsListening() {
		t.Fatalf("expected listening to stay off without an engine")
	}

	engine := &engineStub{}
	disconnected := New(
		WithRoomClient(&roomClientStub{}),
		WithTokenClient(&tokenClientStub{}),
		WithSpeechEngine(engine),
	)
	if err := disconnected.StartListening(); err != nil {
		t.Fatalf("expected a no-op while disconnected, got %v", err)
	}
	if engine.startCount() != 0 {
		t.Fatalf("expected no recognition session while disconnected")
	}
}

func TestStartListeningFailureRevertsFlag(t *testing.T) {
	engine := &engineStub{startErr: errors.New("microphone unavailable")}
	s, _ := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err == nil {
		t.Fatalf("expected the start failure to surface")
	}
	if s.IsListening() {
		t.Fatalf("expected the listening flag to be reverted on failure")
	}
}

func TestInterimResultsUpdateLiveEntry(t *testing.T) {
	engine := &engineStub{}
	s, recorder := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	engine.deliverResults([]speech.Result{{Text: "hel"}})
	engine.deliverResults([]speech.Result{{Text: "hello th"}})

	view := s.Transcript().Snapshot()
	if view.Interim != "hello th" {
		t.Fatalf("expected the interim entry to be replaced in place, got %q", view.Interim)
	}
	if len(view.Entries) != 0 {
		t.Fatalf("expected no finalized entries from interim results, got %+v", view.Entries)
	}

	interims := []string{}
	for _, event := range recorder.all() {
		if typedEvent, ok := event.(events.TranscriptInterimUpdated); ok {
			interims = append(interims, typedEvent.Transcript)
		}
	}
	if len(interims) != 2 || interims[0] != "hel" || interims[1] != "hello th" {
		t.Fatalf("expected interim updates [\"hel\" \"hello th\"], got %v", interims)
	}
}

func TestFinalResultEmitsOneUserMessage(t *testing.T) {
	engine := &engineStub{}
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	engine.deliverResults([]speech.Result{{Text: "turn on the"}})
	engine.deliverResults([]speech.Result{
		{Text: "turn on the lights", Final: true},
	})

	view := s.Transcript().Snapshot()
	if len(view.Entries) != 1 {
		t.Fatalf("expected exactly one finalized entry, got %+v", view.Entries)
	}
	if view.Entries[0].Role != RoleUser || view.Entries[0].Text != "turn on the lights" {
		t.Fatalf("unexpected entry: %+v", view.Entries[0])
	}
	if view.Interim != "" {
		t.Fatalf("expected the interim entry to be cleared on finalization, got %q", view.Interim)
	}
	if !view.PendingReply {
		t.Fatalf("expected the reply placeholder after the send")
	}

	waitUntil(t, "the finalized text to be sent", func() bool {
		return len(roomClient.sentTexts()) == 1
	})
	if sent := roomClient.sentTexts()[0]; sent.topic != room.TopicChat || sent.text != "turn on the lights" {
		t.Fatalf("unexpected send: %+v", sent)
	}
}

func TestFinalSegmentsAreConcatenated(t *testing.T) {
	engine := &engineStub{}
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	engine.deliverResults([]speech.Result{
		{Text: "turn on", Final: true},
		{Text: "the lights", Final: true},
	})

	waitUntil(t, "the finalized text to be sent", func() bool {
		return len(roomClient.sentTexts()) == 1
	})
	if sent := roomClient.sentTexts()[0]; sent.text != "turn on the lights" {
		t.Fatalf("expected the final segments to be joined, got %q", sent.text)
	}
}

func TestWhitespaceOnlyFinalIsDropped(t *testing.T) {
	engine := &engineStub{}
	roomClient := &roomClientStub{}
	s, _ := connectedSession(t, roomClient, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	engine.deliverResults([]speech.Result{{Text: "   ", Final: true}})

	if view := s.Transcript().Snapshot(); len(view.Entries) != 0 {
		t.Fatalf("expected whitespace-only finals to be dropped, got %+v", view.Entries)
	}
	if len(roomClient.sentTexts()) != 0 {
		t.Fatalf("expected nothing to be sent")
	}
}

func TestRecognitionEndRestartsWhileListening(t *testing.T) {
	engine := &engineStub{}
	s, _ := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	engine.deliverEnd()
	if engine.startCount() != 2 {
		t.Fatalf("expected a restart after the end callback, got %d starts", engine.startCount())
	}
	if !s.IsListening() {
		t.Fatalf("expected listening to stay on across restarts")
	}
}

func TestStopListeningAbortsWithoutRestart(t *testing.T) {
	engine := &engineStub{}
	s, recorder := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	engine.deliverResults([]speech.Result{{Text: "half an utter"}})

	s.StopListening()

	if s.IsListening() {
		t.Fatalf("expected the listening flag to be cleared")
	}
	if engine.abortCount() != 1 {
		t.Fatalf("expected one abort, got %d", engine.abortCount())
	}
	if view := s.Transcript().Snapshot(); view.Interim != "" {
		t.Fatalf("expected the interim entry to be discarded, got %q", view.Interim)
	}

	// The abort's own termination must not restart the session.
	engine.deliverEnd()
	if engine.startCount() != 1 {
		t.Fatalf("expected no restart after an explicit stop, got %d starts", engine.startCount())
	}

	// Stop again: idempotent.
	s.StopListening()
	if engine.abortCount() != 1 {
		t.Fatalf("expected stop to be idempotent, got %d aborts", engine.abortCount())
	}

	listeningEvents := []bool{}
	for _, event := range recorder.all() {
		if typedEvent, ok := event.(events.ListeningStateChanged); ok {
			listeningEvents = append(listeningEvents, typedEvent.Listening)
		}
	}
	if len(listeningEvents) != 2 || !listeningEvents[0] || listeningEvents[1] {
		t.Fatalf("expected listening events [true false], got %v", listeningEvents)
	}
}

func TestResultsAfterStopAreIgnored(t *testing.T) {
	engine := &engineStub{}
	s, _ := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}
	s.StopListening()

	engine.deliverResults([]speech.Result{{Text: "stale", Final: true}})

	if view := s.Transcript().Snapshot(); len(view.Entries) != 0 || view.Interim != "" {
		t.Fatalf("expected stale results to be dropped, got %+v", view)
	}
}

func TestRestartTreatsActiveSessionAsSuccess(t *testing.T) {
	engine := &engineStub{}
	s, _ := connectedSession(t, &roomClientStub{}, WithSpeechEngine(engine))
	defer s.Disconnect()

	if err := s.StartListening(); err != nil {
		t.Fatalf("expected listening to start, got %v", err)
	}

	// The engine still reports the session active when the end callback
	// races a new utterance; the restart treats that as success.
	engine.mu.Lock()
	callback := engine.opts.EndCallback
	engine.mu.Unlock()
	callback()

	if !s.IsListening() {
		t.Fatalf("expected listening to stay on when the session is already active")
	}
}
