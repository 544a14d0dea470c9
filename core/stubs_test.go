package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
	"github.com/voxlink-dev/voicelink/core/speech"
	"github.com/voxlink-dev/voicelink/core/token"
)

type sentText struct {
	topic string
	text  string
}

type roomClientStub struct {
	mu sync.Mutex

	connectErr  error
	sendTextErr error
	// sendTextBlock, when set, holds SendText until it is closed.
	sendTextBlock chan struct{}
	rpcErr        error
	rpcResponse   string
	roster        []room.Participant

	connects       int
	disconnects    int
	opts           room.ConnectOptions
	streamHandlers map[string]room.StreamHandler
	sent           []sentText
	rpcs           []room.RPCRequest
}

func (c *roomClientStub) Connect(_ context.Context, _, _ string, opts ...room.ConnectOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectErr != nil {
		return c.connectErr
	}
	c.opts = room.ConnectOptions{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return nil
}

func (c *roomClientStub) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
}

func (c *roomClientStub) SendText(_ context.Context, topic, text string) error {
	c.mu.Lock()
	block := c.sendTextBlock
	c.mu.Unlock()
	if block != nil {
		<-block
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendTextErr != nil {
		return c.sendTextErr
	}
	c.sent = append(c.sent, sentText{topic: topic, text: text})
	return nil
}

func (c *roomClientStub) RegisterStreamHandler(topic string, handler room.StreamHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streamHandlers == nil {
		c.streamHandlers = map[string]room.StreamHandler{}
	}
	c.streamHandlers[topic] = handler
}

func (c *roomClientStub) PerformRPC(_ context.Context, req room.RPCRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpcErr != nil {
		return "", c.rpcErr
	}
	c.rpcs = append(c.rpcs, req)
	return c.rpcResponse, nil
}

func (c *roomClientStub) Roster() []room.Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster
}

func (c *roomClientStub) LocalIdentity() string { return "" }

func (c *roomClientStub) sentTexts() []sentText {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentText{}, c.sent...)
}

func (c *roomClientStub) rpcCalls() []room.RPCRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]room.RPCRequest{}, c.rpcs...)
}

func (c *roomClientStub) connectOptions() room.ConnectOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

type engineStub struct {
	mu sync.Mutex

	startErr error
	starts   int
	aborts   int
	active   bool
	opts     speech.Options
}

func (e *engineStub) Start(_ context.Context, opts ...speech.Option) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		return e.startErr
	}
	if e.active {
		return speech.ErrAlreadyActive
	}
	e.active = true
	e.opts = speech.Options{}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return nil
}

func (e *engineStub) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborts++
	e.active = false
}

func (e *engineStub) deliverResults(results []speech.Result) {
	e.mu.Lock()
	callback := e.opts.ResultsCallback
	e.mu.Unlock()
	if callback != nil {
		callback(results)
	}
}

func (e *engineStub) deliverEnd() {
	e.mu.Lock()
	callback := e.opts.EndCallback
	e.active = false
	e.mu.Unlock()
	if callback != nil {
		callback()
	}
}

func (e *engineStub) startCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

func (e *engineStub) abortCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aborts
}

type tokenClientStub struct {
	tokenErr  error
	configErr error
	config    token.AppConfig
}

func (c *tokenClientStub) Token(_ context.Context, identity string) (token.JoinGrant, error) {
	if c.tokenErr != nil {
		return token.JoinGrant{}, c.tokenErr
	}
	return token.JoinGrant{Token: "grant-" + identity, URL: "ws://room.test"}, nil
}

func (c *tokenClientStub) Config(_ context.Context) (token.AppConfig, error) {
	if c.configErr != nil {
		return token.AppConfig{}, c.configErr
	}
	return c.config, nil
}

// eventRecorder collects every session event for later assertions.
type eventRecorder struct {
	mu       sync.Mutex
	recorded []events.Event
}

func (r *eventRecorder) record(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, event)
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event{}, r.recorded...)
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, event := range r.all() {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

func testIntervals() Intervals {
	return Intervals{
		Debounce:    20 * time.Millisecond,
		AgentWait:   40 * time.Millisecond,
		SavedClear:  30 * time.Millisecond,
		FailedClear: 30 * time.Millisecond,
	}
}

func waitUntil(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func agentParticipant(identity string, attributes map[string]string) room.Participant {
	return room.Participant{Identity: identity, Kind: room.ParticipantAgent, Attributes: attributes}
}

func connectedSession(t *testing.T, roomClient *roomClientStub, extra ...SessionOption) (*Session, *eventRecorder) {
	t.Helper()

	opts := append([]SessionOption{
		WithRoomClient(roomClient),
		WithTokenClient(&tokenClientStub{}),
		WithIntervals(testIntervals()),
	}, extra...)

	s := New(opts...)
	recorder := &eventRecorder{}
	if err := s.Connect(context.Background(), WithEventCallback(recorder.record)); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}
	return s, recorder
}
