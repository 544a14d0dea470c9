package events

const (
	// KindListeningStateChanged identifies speech capture start/stop.
	KindListeningStateChanged Kind = "listening.state_changed"
)

// ListeningStateChanged marks speech capture being started or stopped.
type ListeningStateChanged struct {
	Base
	Listening bool
}

// NewListeningStateChanged creates a listening state event.
func NewListeningStateChanged(listening bool) ListeningStateChanged {
	return ListeningStateChanged{Base: NewBase(KindListeningStateChanged), Listening: listening}
}
