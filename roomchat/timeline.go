package roomchat

// Entry is one displayable item in the message timeline.
type Entry struct {
	Text      string
	Author    string
	IsOwn     bool
	IsSystem  bool
	Timestamp string
}

// Timeline is the append-only ordered log of chat and system entries for one
// room session. Entries are never mutated or removed once appended; the only
// way the log shrinks is the full session reset on disconnect.
type Timeline struct {
	entries []Entry
}

func (t *Timeline) append(e Entry) {
	t.entries = append(t.entries, e)
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the log in insertion order.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) reset() {
	t.entries = nil
}
