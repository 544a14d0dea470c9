// Package deepgram implements the speech.Engine contract on top of the
// Deepgram live transcription websocket. Interim results stream continuously;
// finalized segments are accumulated and delivered as one final result when
// Deepgram reports the end of the utterance, so one utterance produces one
// final update.
package deepgram

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/voxlink-dev/voicelink/core/audio"
)

// Client is a restartable Deepgram recognition session. One Client supports
// at most one active session at a time; Start during an active session
// returns speech.ErrAlreadyActive.
type Client struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	capture audio.Capture

	accumulatedTranscript string
	unendedSegment        bool
	aborted               bool

	lastMsgTs time.Time
}

type ClientOption func(*Client)

// WithCapture attaches a microphone backend. The client starts capture when
// a session opens and stops it when the session terminates, feeding frames
// straight into the socket.
func WithCapture(capture audio.Capture) ClientOption {
	return func(c *Client) {
		c.capture = capture
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendAudio forwards one raw audio frame to the active session. Callers
// wiring their own capture use this instead of WithCapture.
func (c *Client) SendAudio(audio []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("no active recognition session")
	}

	c.lastMsgTs = time.Now()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram socket: %w", err)
	}
	return nil
}

// Abort terminates the active session. The termination is reported through
// the error callback with the aborted class before the end callback fires.
func (c *Client) Abort() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}

	c.aborted = true
	_ = c.conn.Close()
}
