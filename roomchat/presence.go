package roomchat

import "strings"

const (
	joinedMarker = " joined the room"
	leftMarker   = " left the room"
)

// RosterEntry is one user believed to be present in the room.
type RosterEntry struct {
	Username string
	IsSelf   bool
}

// Roster is the live set of usernames present in the room, keyed by
// username. There is no presence message in the protocol; membership is
// inferred from the free text of system notices plus local
// self-registration. That coupling to notification wording is fragile but it
// is the contract the server actually offers, so it is kept as-is.
type Roster struct {
	entries []RosterEntry
}

// observe updates the roster from one system notice. Returns true when the
// roster changed.
func (r *Roster) observe(text string, self string) bool {
	if i := strings.Index(text, joinedMarker); i >= 0 {
		name := text[:i]
		return r.add(name, name == self)
	}
	if i := strings.Index(text, leftMarker); i >= 0 {
		return r.remove(text[:i])
	}
	return false
}

// add inserts a user if not already present. Repeated join notices for the
// same name are no-ops.
func (r *Roster) add(username string, isSelf bool) bool {
	for _, e := range r.entries {
		if e.Username == username {
			return false
		}
	}
	r.entries = append(r.entries, RosterEntry{Username: username, IsSelf: isSelf})
	return true
}

func (r *Roster) remove(username string) bool {
	for i, e := range r.entries {
		if e.Username == username {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// setSelf pins the local user at the front of the roster, dropping any stale
// self entry recorded under a previous name.
func (r *Roster) setSelf(username string) {
	kept := make([]RosterEntry, 0, len(r.entries)+1)
	kept = append(kept, RosterEntry{Username: username, IsSelf: true})
	for _, e := range r.entries {
		if e.Username != username && !e.IsSelf {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Len returns the number of users in the roster.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Contains reports whether username is in the roster.
func (r *Roster) Contains(username string) bool {
	for _, e := range r.entries {
		if e.Username == username {
			return true
		}
	}
	return false
}

// Entries returns a copy of the roster, local user first.
func (r *Roster) Entries() []RosterEntry {
	out := make([]RosterEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Roster) reset() {
	r.entries = nil
}
