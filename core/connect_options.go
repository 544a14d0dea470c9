package session

import (
	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

// ConnectOptions collects the callbacks a front-end registers for session
// events. All callbacks are optional. Registration happens before the room
// join begins, so no event fired during the join is dropped.
type ConnectOptions struct {
	onConnectionState func(state State, err error)
	onAgentState      func(identity, state string)
	onAgentTrack      func(identity string, track room.Track, subscribed bool)
	onListening       func(listening bool)
	onTranscriptEntry func(role Role, text string)
	onInterim         func(text string)
	onPendingReply    func(pending bool)
	onPromptStatus    func(status string)
	onEvent           func(event events.Event)
}

type ConnectOption func(*ConnectOptions)

func WithConnectionStateCallback(callback func(state State, err error)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onConnectionState = callback
	}
}

func WithAgentStateCallback(callback func(identity, state string)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onAgentState = callback
	}
}

func WithAgentTrackCallback(callback func(identity string, track room.Track, subscribed bool)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onAgentTrack = callback
	}
}

func WithListeningCallback(callback func(listening bool)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onListening = callback
	}
}

func WithTranscriptEntryCallback(callback func(role Role, text string)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onTranscriptEntry = callback
	}
}

func WithInterimCallback(callback func(text string)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onInterim = callback
	}
}

func WithPendingReplyCallback(callback func(pending bool)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onPendingReply = callback
	}
}

func WithPromptStatusCallback(callback func(status string)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onPromptStatus = callback
	}
}

// WithEventCallback registers a catch-all receiving every session event
// after the typed callbacks. Front-ends driving a render loop from a single
// mailbox use this instead of the individual callbacks.
func WithEventCallback(callback func(event events.Event)) ConnectOption {
	return func(o *ConnectOptions) {
		o.onEvent = callback
	}
}
