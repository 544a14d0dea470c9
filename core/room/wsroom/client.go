// Package wsroom implements the room.Client contract over a websocket
// signaling connection. Text frames carry the room protocol (participant
// events, topic-routed text, chunked text streams, remote calls); binary
// frames carry raw audio for the subscribed agent track and are handed to
// an optional audio handler untouched.
package wsroom

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/voxlink-dev/voicelink/core/room"
)

const (
	joinTimeout       = 10 * time.Second
	defaultRPCTimeout = 10 * time.Second

	reconnectAttempts = 5
	reconnectBackoff  = 500 * time.Millisecond
)

type rpcResult struct {
	payload string
	err     error
}

type Client struct {
	dialer *websocket.Dialer

	connMu sync.Mutex // guards conn and writes
	conn   *websocket.Conn

	url   string
	token string
	opts  room.ConnectOptions

	closed atomic.Bool

	rosterMu      sync.Mutex
	roster        map[string]room.Participant
	localIdentity string

	handlersMu     sync.Mutex
	streamHandlers map[string]room.StreamHandler
	streams        map[string]*streamState

	rpcID     atomic.Uint64
	pendingMu sync.Mutex
	pending   map[uint64]chan rpcResult

	audioHandler func(frame []byte)
}

type streamState struct {
	stream *textStream
	sender room.Participant
	topic  string
}

type ClientOption func(*Client)

// WithDialer overrides the websocket dialer, mainly for tests.
func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = dialer
	}
}

// WithTrackAudioHandler registers a consumer for binary audio frames of the
// subscribed agent track.
func WithTrackAudioHandler(handler func(frame []byte)) ClientOption {
	return func(c *Client) {
		c.audioHandler = handler
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		dialer:         websocket.DefaultDialer,
		roster:         map[string]room.Participant{},
		streamHandlers: map[string]room.StreamHandler{},
		streams:        map[string]*streamState{},
		pending:        map[uint64]chan rpcResult{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ room.Client = (*Client)(nil)

// Connect dials the room service, waits for the join acknowledgement
// carrying the initial roster, and starts the read loop. Event callbacks
// from opts are in place before the dial, so events delivered with the join
// are never dropped.
func (c *Client) Connect(ctx context.Context, url, token string, opts ...room.ConnectOption) error {
	options := room.ConnectOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.connMu.Unlock()
		return fmt.Errorf("already connected")
	}
	c.url = url
	c.token = token
	c.opts = options
	c.closed.Store(false)
	c.connMu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readAndProcessMessages(conn)

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := map[string][]string{"Authorization": {"Bearer " + c.token}}
	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial room service: %w", err)
	}

	// The first frame must be the join acknowledgement with the roster.
	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	var joined envelope
	if err := conn.ReadJSON(&joined); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read join acknowledgement: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	if joined.Type != typeJoined {
		conn.Close()
		return nil, fmt.Errorf("unexpected message %q before join acknowledgement", joined.Type)
	}

	c.rosterMu.Lock()
	c.localIdentity = joined.LocalIdentity
	c.roster = map[string]room.Participant{}
	for _, wp := range joined.Participants {
		participant := wp.toParticipant()
		if participant.Identity != c.localIdentity {
			c.roster[participant.Identity] = participant
		}
	}
	c.rosterMu.Unlock()

	return conn, nil
}

// Disconnect leaves the room and fails all outstanding remote calls. It is
// safe to call repeatedly.
func (c *Client) Disconnect() {
	c.closed.Store(true)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	c.failPendingRPCs(fmt.Errorf("room connection closed"))
}

func (c *Client) SendText(ctx context.Context, topic, text string) error {
	return c.writeEnvelope(envelope{Type: typeSendText, Topic: topic, Text: text})
}

func (c *Client) RegisterStreamHandler(topic string, handler room.StreamHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.streamHandlers[topic] = handler
}

// PerformRPC issues a remote call and waits for its result. A context
// without a deadline gets the default call timeout.
func (c *Client) PerformRPC(ctx context.Context, req room.RPCRequest) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultRPCTimeout)
		defer cancel()
	}

	id := c.rpcID.Add(1)
	resultCh := make(chan rpcResult, 1)

	c.pendingMu.Lock()
	c.pending[id] = resultCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.writeEnvelope(envelope{
		Type:                typeRPC,
		RPCID:               id,
		DestinationIdentity: req.DestinationIdentity,
		Method:              req.Method,
		Payload:             req.Payload,
	}); err != nil {
		return "", err
	}

	select {
	case result := <-resultCh:
		return result.payload, result.err
	case <-ctx.Done():
		return "", fmt.Errorf("remote call timed out: %w", ctx.Err())
	}
}

func (c *Client) Roster() []room.Participant {
	c.rosterMu.Lock()
	defer c.rosterMu.Unlock()

	participants := make([]room.Participant, 0, len(c.roster))
	for _, participant := range c.roster {
		participants = append(participants, participant)
	}
	return participants
}

func (c *Client) LocalIdentity() string {
	c.rosterMu.Lock()
	defer c.rosterMu.Unlock()
	return c.localIdentity
}

func (c *Client) writeEnvelope(env envelope) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("failed to write to room socket: %w", err)
	}
	return nil
}

func (c *Client) readAndProcessMessages(conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if c.closed.Load() {
				return
			}
			c.reconnect()
			return
		}

		if msgType == websocket.BinaryMessage {
			if c.audioHandler != nil {
				c.audioHandler(msg)
			}
			continue
		}

		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			logger.Warn("failed to unmarshal room message", "error", err)
			continue
		}

		c.processEnvelope(env)
	}
}

// reconnect redials with backoff after an unexpected connection loss. The
// roster is rebuilt from the new join acknowledgement.
func (c *Client) reconnect() {
	c.connMu.Lock()
	c.conn = nil
	c.connMu.Unlock()

	if c.opts.ConnectionStateCallback != nil {
		c.opts.ConnectionStateCallback(room.ConnectionReconnecting)
	}

	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		if c.closed.Load() {
			return
		}
		time.Sleep(time.Duration(attempt) * reconnectBackoff)

		ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
		conn, err := c.dial(ctx)
		cancel()
		if err != nil {
			logger.Warn("room reconnect attempt failed", "attempt", attempt, "error", err)
			continue
		}

		c.connMu.Lock()
		c.conn = conn
		c.connMu.Unlock()

		go c.readAndProcessMessages(conn)

		if c.opts.ConnectionStateCallback != nil {
			c.opts.ConnectionStateCallback(room.ConnectionConnected)
		}
		return
	}

	c.failPendingRPCs(fmt.Errorf("room connection lost"))
	if c.opts.ConnectionStateCallback != nil {
		c.opts.ConnectionStateCallback(room.ConnectionDisconnected)
	}
}

func (c *Client) processEnvelope(env envelope) {
	switch env.Type {
	case typeParticipantJoined:
		if env.Participant == nil {
			return
		}
		participant := env.Participant.toParticipant()
		c.rosterMu.Lock()
		c.roster[participant.Identity] = participant
		c.rosterMu.Unlock()
		if c.opts.ParticipantJoinedCallback != nil {
			c.opts.ParticipantJoinedCallback(participant)
		}

	case typeParticipantLeft:
		if env.Participant == nil {
			return
		}
		participant := env.Participant.toParticipant()
		c.rosterMu.Lock()
		delete(c.roster, participant.Identity)
		c.rosterMu.Unlock()
		if c.opts.ParticipantLeftCallback != nil {
			c.opts.ParticipantLeftCallback(participant)
		}

	case typeAttributesChanged:
		c.rosterMu.Lock()
		if participant, ok := c.roster[env.Identity]; ok {
			participant.Attributes = env.Attributes
			c.roster[env.Identity] = participant
		}
		c.rosterMu.Unlock()
		if c.opts.AttributesChangedCallback != nil {
			c.opts.AttributesChangedCallback(env.Identity, env.Attributes)
		}

	case typeTrackSubscribed:
		if env.Participant == nil {
			return
		}
		if c.opts.TrackSubscribedCallback != nil {
			c.opts.TrackSubscribedCallback(env.Participant.toParticipant(), env.Track.toTrack())
		}

	case typeTrackUnsubscribed:
		if env.Participant == nil {
			return
		}
		if c.opts.TrackUnsubscribedCallback != nil {
			c.opts.TrackUnsubscribedCallback(env.Participant.toParticipant(), env.Track.toTrack())
		}

	case typeStreamBegin:
		c.beginStream(env)

	case typeStreamChunk:
		c.handlersMu.Lock()
		state, ok := c.streams[env.StreamID]
		c.handlersMu.Unlock()
		if ok {
			state.stream.push(env.Text)
		}

	case typeStreamEnd:
		c.handlersMu.Lock()
		state, ok := c.streams[env.StreamID]
		delete(c.streams, env.StreamID)
		c.handlersMu.Unlock()
		if ok {
			state.stream.end()
		}

	case typeRPCResult:
		c.pendingMu.Lock()
		resultCh, ok := c.pending[env.RPCID]
		c.pendingMu.Unlock()
		if !ok {
			return
		}
		result := rpcResult{payload: env.Payload}
		if env.Error != "" {
			result.err = fmt.Errorf("remote call rejected: %s", env.Error)
		}
		select {
		case resultCh <- result:
		default:
		}
	}
}

func (c *Client) beginStream(env envelope) {
	c.handlersMu.Lock()
	handler, registered := c.streamHandlers[env.Topic]
	if !registered {
		c.handlersMu.Unlock()
		return
	}

	state := &streamState{stream: newTextStream(), topic: env.Topic}
	if env.Sender != nil {
		state.sender = env.Sender.toParticipant()
	}
	c.streams[env.StreamID] = state
	c.handlersMu.Unlock()

	// The handler owns the reader; it blocks on Read until chunks arrive
	// and returns once it has consumed the stream to completion.
	go handler(state.stream, state.sender)
}

func (c *Client) failPendingRPCs(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, resultCh := range c.pending {
		select {
		case resultCh <- rpcResult{err: err}:
		default:
		}
		delete(c.pending, id)
	}
}
