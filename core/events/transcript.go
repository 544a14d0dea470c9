package events

const (
	// KindTranscriptAppended identifies finalized transcript entries.
	KindTranscriptAppended Kind = "transcript.appended"
	// KindTranscriptInterimUpdated identifies mutable interim entry updates.
	KindTranscriptInterimUpdated Kind = "transcript.interim_updated"
	// KindPendingReplyChanged identifies reply placeholder changes.
	KindPendingReplyChanged Kind = "transcript.pending_reply_changed"
)

// TranscriptAppended carries a finalized transcript entry.
type TranscriptAppended struct {
	Base
	Role string
	Text string
}

// NewTranscriptAppended creates a finalized transcript entry event.
func NewTranscriptAppended(role, text string) TranscriptAppended {
	return TranscriptAppended{Base: NewBase(KindTranscriptAppended), Role: role, Text: text}
}

// TranscriptInterimUpdated carries the mutable interim entry snapshot. An
// empty transcript means the interim entry was cleared.
type TranscriptInterimUpdated struct {
	Base
	Transcript string
}

// NewTranscriptInterimUpdated creates an interim entry update event.
func NewTranscriptInterimUpdated(transcript string) TranscriptInterimUpdated {
	return TranscriptInterimUpdated{Base: NewBase(KindTranscriptInterimUpdated), Transcript: transcript}
}

// PendingReplyChanged marks the reply placeholder being shown or removed.
type PendingReplyChanged struct {
	Base
	Pending bool
}

// NewPendingReplyChanged creates a reply placeholder event.
func NewPendingReplyChanged(pending bool) PendingReplyChanged {
	return PendingReplyChanged{Base: NewBase(KindPendingReplyChanged), Pending: pending}
}
