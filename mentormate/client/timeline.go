package client

import (
	"time"

	"mentormate/mentormate/sources/psql/models"

	"github.com/google/uuid"
)

// Entry is one row of the client's conversation list. Pending entries
// are optimistic echoes awaiting the server round-trip; Failed entries
// keep the user's text visible after an unsuccessful send.
type Entry struct {
	ID            string
	Role          string
	Text          string
	CreatedAt     time.Time
	Audio         []byte
	Pending       bool
	Failed        bool
	FailureReason string
}

// Timeline is the ordered message list shared by both panes. It is a
// value; every transition returns a new Timeline, which keeps the
// reconciliation logic independently testable.
type Timeline struct {
	entries []Entry
}

// NewTimeline seeds the list from persisted history.
func NewTimeline(history []models.Message) Timeline {
	entries := make([]Entry, 0, len(history))
	for _, msg := range history {
		entries = append(entries, FromMessage(msg, nil))
	}
	return Timeline{entries: entries}
}

// FromMessage converts a persisted record into a client entry, optionally
// attaching the in-flight audio payload.
func FromMessage(msg models.Message, audio []byte) Entry {
	return Entry{
		ID:        msg.ID.String(),
		Role:      msg.Role,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		Audio:     audio,
	}
}

// InsertOptimistic appends a pending local echo of the user's input and
// returns its transient id for later reconciliation.
func (t Timeline) InsertOptimistic(text string) (Timeline, string) {
	tempID := "local-" + uuid.NewString()
	entry := Entry{
		ID:        tempID,
		Role:      models.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
		Pending:   true,
	}
	next := make([]Entry, 0, len(t.entries)+1)
	next = append(next, t.entries...)
	next = append(next, entry)
	return Timeline{entries: next}, tempID
}

// Reconcile replaces the placeholder with the authoritative pair. The
// returned entry is the mentor message when it was newly added, so the
// caller can trigger playback exactly once; it is nil otherwise.
func (t Timeline) Reconcile(tempID string, user, mentor Entry) (Timeline, *Entry) {
	next := make([]Entry, 0, len(t.entries)+1)
	for _, e := range t.entries {
		if e.ID == tempID {
			continue
		}
		next = append(next, e)
	}

	seen := make(map[string]bool, len(next))
	for _, e := range next {
		seen[e.ID] = true
	}

	var added *Entry
	if !seen[user.ID] {
		next = append(next, user)
	}
	if !seen[mentor.ID] {
		next = append(next, mentor)
		added = &next[len(next)-1]
	}
	return Timeline{entries: next}, added
}

// MarkFailed flags the placeholder so the typed text stays visible
// instead of silently disappearing.
func (t Timeline) MarkFailed(tempID, reason string) Timeline {
	next := make([]Entry, len(t.entries))
	copy(next, t.entries)
	for i := range next {
		if next[i].ID == tempID {
			next[i].Pending = false
			next[i].Failed = true
			next[i].FailureReason = reason
		}
	}
	return Timeline{entries: next}
}

// Entries returns the full ordered list.
func (t Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t Timeline) Len() int { return len(t.entries) }

// MinePane is the user-side derived view: everything that is not the
// mentor, including pending and failed echoes.
func (t Timeline) MinePane() []Entry {
	return t.filter(func(e Entry) bool { return e.Role != models.RoleMentor })
}

// MentorPane is the mentor-side derived view.
func (t Timeline) MentorPane() []Entry {
	return t.filter(func(e Entry) bool { return e.Role == models.RoleMentor })
}

func (t Timeline) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
