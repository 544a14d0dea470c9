package session

import (
	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/room"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts ConnectOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.ConnectionStateChanged:
			if opts.onConnectionState != nil {
				opts.onConnectionState(State(typedEvent.State), typedEvent.Err)
			}
		case events.AgentStateChanged:
			if opts.onAgentState != nil {
				opts.onAgentState(typedEvent.Identity, typedEvent.State)
			}
		case events.AgentTrackChanged:
			if opts.onAgentTrack != nil {
				opts.onAgentTrack(typedEvent.Identity,
					room.Track{SID: typedEvent.TrackSID, Kind: room.TrackKind(typedEvent.TrackKind)},
					typedEvent.Subscribed)
			}
		case events.ListeningStateChanged:
			if opts.onListening != nil {
				opts.onListening(typedEvent.Listening)
			}
		case events.TranscriptAppended:
			if opts.onTranscriptEntry != nil {
				opts.onTranscriptEntry(Role(typedEvent.Role), typedEvent.Text)
			}
		case events.TranscriptInterimUpdated:
			if opts.onInterim != nil {
				opts.onInterim(typedEvent.Transcript)
			}
		case events.PendingReplyChanged:
			if opts.onPendingReply != nil {
				opts.onPendingReply(typedEvent.Pending)
			}
		case events.PromptPushStateChanged:
			if opts.onPromptStatus != nil {
				opts.onPromptStatus(typedEvent.Status)
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}
