package room

// ConnectOptions collects the event callbacks a client invokes for room
// events. All callbacks are optional; a nil callback drops the event.
type ConnectOptions struct {
	ConnectionStateCallback   func(state ConnectionState)
	ParticipantJoinedCallback func(participant Participant)
	ParticipantLeftCallback   func(participant Participant)
	AttributesChangedCallback func(identity string, attributes map[string]string)
	TrackSubscribedCallback   func(participant Participant, track Track)
	TrackUnsubscribedCallback func(participant Participant, track Track)
}

type ConnectOption func(*ConnectOptions)

func WithConnectionStateCallback(callback func(state ConnectionState)) ConnectOption {
	return func(o *ConnectOptions) {
		o.ConnectionStateCallback = callback
	}
}

func WithParticipantJoinedCallback(callback func(participant Participant)) ConnectOption {
	return func(o *ConnectOptions) {
		o.ParticipantJoinedCallback = callback
	}
}

func WithParticipantLeftCallback(callback func(participant Participant)) ConnectOption {
	return func(o *ConnectOptions) {
		o.ParticipantLeftCallback = callback
	}
}

func WithAttributesChangedCallback(callback func(identity string, attributes map[string]string)) ConnectOption {
	return func(o *ConnectOptions) {
		o.AttributesChangedCallback = callback
	}
}

func WithTrackSubscribedCallback(callback func(participant Participant, track Track)) ConnectOption {
	return func(o *ConnectOptions) {
		o.TrackSubscribedCallback = callback
	}
}

func WithTrackUnsubscribedCallback(callback func(participant Participant, track Track)) ConnectOption {
	return func(o *ConnectOptions) {
		o.TrackUnsubscribedCallback = callback
	}
}
