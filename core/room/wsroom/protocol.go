package wsroom

import "github.com/voxlink-dev/voicelink/core/room"

// Wire envelope. Text frames carry one JSON envelope each; binary frames
// carry raw audio for the subscribed agent track.
type envelope struct {
	Type string `json:"type"`

	// joined
	LocalIdentity string            `json:"local_identity,omitempty"`
	Participants  []wireParticipant `json:"participants,omitempty"`

	// participant_joined / participant_left / attributes_changed /
	// track_subscribed / track_unsubscribed
	Participant *wireParticipant  `json:"participant,omitempty"`
	Identity    string            `json:"identity,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Track       *wireTrack        `json:"track,omitempty"`

	// send_text / stream_begin / stream_chunk / stream_end
	Topic    string           `json:"topic,omitempty"`
	Text     string           `json:"text,omitempty"`
	StreamID string           `json:"stream_id,omitempty"`
	Sender   *wireParticipant `json:"sender,omitempty"`

	// rpc / rpc_result
	RPCID               uint64 `json:"rpc_id,omitempty"`
	DestinationIdentity string `json:"destination_identity,omitempty"`
	Method              string `json:"method,omitempty"`
	Payload             string `json:"payload,omitempty"`
	Error               string `json:"error,omitempty"`
}

const (
	typeJoined            = "joined"
	typeParticipantJoined = "participant_joined"
	typeParticipantLeft   = "participant_left"
	typeAttributesChanged = "attributes_changed"
	typeTrackSubscribed   = "track_subscribed"
	typeTrackUnsubscribed = "track_unsubscribed"
	typeSendText          = "send_text"
	typeStreamBegin       = "stream_begin"
	typeStreamChunk       = "stream_chunk"
	typeStreamEnd         = "stream_end"
	typeRPC               = "rpc"
	typeRPCResult         = "rpc_result"
)

type wireParticipant struct {
	Identity   string            `json:"identity"`
	Kind       string            `json:"kind,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type wireTrack struct {
	SID  string `json:"sid"`
	Kind string `json:"kind"`
}

func (p wireParticipant) toParticipant() room.Participant {
	kind := room.ParticipantKind(p.Kind)
	if kind == "" {
		kind = room.ParticipantStandard
	}
	return room.Participant{Identity: p.Identity, Kind: kind, Attributes: p.Attributes}
}

func (t *wireTrack) toTrack() room.Track {
	if t == nil {
		return room.Track{}
	}
	return room.Track{SID: t.SID, Kind: room.TrackKind(t.Kind)}
}
