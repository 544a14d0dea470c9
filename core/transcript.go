package session

import (
	"sync"

	"github.com/jinzhu/copier"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Entry is one finalized transcript message.
type Entry struct {
	Role Role
	Text string
}

// TranscriptView is a point-in-time view of the transcript: the finalized
// entries, the mutable interim entry (empty when absent), and whether the
// reply placeholder is shown.
type TranscriptView struct {
	Entries      []Entry
	Interim      string
	PendingReply bool
}

// Transcript is the ordered message log. Entries are append-only; the
// interim entry is replaced in place until finalized; the reply placeholder
// is a single flag, shown on send and removed on the first accepted reply.
//
// The transcript is process-wide: it survives disconnect/reconnect cycles.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	interim string
	pending bool
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(role Role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Role: role, Text: text})
}

func (t *Transcript) SetInterim(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interim = text
}

func (t *Transcript) ClearInterim() {
	t.SetInterim("")
}

// ShowPending shows the reply placeholder. A placeholder already shown is
// replaced, never stacked.
func (t *Transcript) ShowPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = true
}

func (t *Transcript) ClearPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
}

// Snapshot returns a deep copy of the transcript state, safe to hold across
// further mutation.
func (t *Transcript) Snapshot() TranscriptView {
	t.mu.Lock()
	defer t.mu.Unlock()

	var entries []Entry
	copier.Copy(&entries, t.entries)

	return TranscriptView{Entries: entries, Interim: t.interim, PendingReply: t.pending}
}
