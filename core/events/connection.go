package events

const (
	// KindConnectionStateChanged identifies room connection transitions.
	KindConnectionStateChanged Kind = "connection.state_changed"
)

// ConnectionStateChanged marks a room connection transition. State carries
// the session-level state name ("disconnected", "connecting", "connected",
// "reconnecting"); Err is non-nil only for a failed connect attempt.
type ConnectionStateChanged struct {
	Base
	State string
	Err   error
}

// NewConnectionStateChanged creates a connection transition event.
func NewConnectionStateChanged(state string, err error) ConnectionStateChanged {
	return ConnectionStateChanged{Base: NewBase(KindConnectionStateChanged), State: state, Err: err}
}
