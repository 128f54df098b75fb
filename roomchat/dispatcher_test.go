package roomchat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
}

// joinedSession simulates a session that has sent create/join as "alice"
// and received the confirming system notice for room "general".
func joinedSession() *Session {
	s := newSession(fixedClock)
	s.pending = "alice"
	s.confirmRoom("general")
	return s
}

func mustEnvelope(t *testing.T, kind string, payload any) Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	return Envelope{Type: kind, Payload: raw}
}

func TestDispatchChat(t *testing.T) {
	t.Run("appends entry for another user", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		var got Entry
		d.SetOnEntry(func(e Entry) { got = e })

		d.Dispatch(mustEnvelope(t, "chat", ChatPayload{Message: "hi", Username: "bob"}), s)

		assert.Equal(t, 1, s.timeline.Len())
		assert.Equal(t, "hi", got.Text)
		assert.Equal(t, "bob", got.Author)
		assert.False(t, got.IsOwn)
		assert.False(t, got.IsSystem)
		assert.Equal(t, "12:30:45", got.Timestamp)
	})

	t.Run("suppresses echo of own message", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "chat", ChatPayload{Message: "hi", Username: "alice"}), s)

		assert.Equal(t, 0, s.timeline.Len())
	})

	t.Run("suppresses echo against pending identity before confirmation", func(t *testing.T) {
		s := newSession(fixedClock)
		s.pending = "alice"
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "chat", ChatPayload{Message: "hi", Username: "alice"}), s)

		assert.Equal(t, 0, s.timeline.Len())
	})

	t.Run("missing username becomes Anonymous", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "chat", ChatPayload{Message: "hi"}), s)

		entries := s.timeline.Entries()
		assert.Len(t, entries, 1)
		assert.Equal(t, "Anonymous", entries[0].Author)
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(Envelope{Type: "chat", Payload: json.RawMessage(`"not an object"`)}, s)

		assert.Equal(t, 0, s.timeline.Len())
	})
}

func TestDispatchSystem(t *testing.T) {
	t.Run("roomId confirms room and registers self", func(t *testing.T) {
		s := newSession(fixedClock)
		s.pending = "alice"
		var d Dispatcher
		var confirmedRoom string
		d.SetOnRoomConfirmed(func(id string) { confirmedRoom = id })

		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "room general created", RoomID: "general"}), s)

		assert.Equal(t, "general", s.Room())
		assert.Equal(t, "alice", s.Self())
		assert.Equal(t, "general", confirmedRoom)
		assert.Equal(t, []RosterEntry{{Username: "alice", IsSelf: true}}, s.roster.Entries())

		entries := s.timeline.Entries()
		assert.Len(t, entries, 1)
		assert.Equal(t, "room general created", entries[0].Text)
		assert.Equal(t, "System", entries[0].Author)
		assert.True(t, entries[0].IsSystem)
	})

	t.Run("repeated room confirmation is idempotent", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "welcome back", RoomID: "general"}), s)
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "welcome back", RoomID: "general"}), s)

		assert.Equal(t, "general", s.Room())
		assert.Equal(t, 1, s.roster.Len())
	})

	t.Run("join notice adds user once", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		var rosters int
		d.SetOnRoster(func([]RosterEntry) { rosters++ })

		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "bob joined the room"}), s)
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "bob joined the room"}), s)

		assert.True(t, s.roster.Contains("bob"))
		assert.Equal(t, 2, s.roster.Len())
		assert.Equal(t, 1, rosters)
		assert.Equal(t, 2, s.timeline.Len())
	})

	t.Run("left notice removes user", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "bob joined the room"}), s)
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "bob left the room"}), s)

		assert.False(t, s.roster.Contains("bob"))
	})

	t.Run("left notice without prior join has no roster effect", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "carol left the room"}), s)

		assert.False(t, s.roster.Contains("carol"))
		assert.Equal(t, 1, s.roster.Len())
	})

	t.Run("notice without presence pattern only appends entry", func(t *testing.T) {
		s := joinedSession()
		var d Dispatcher
		d.Dispatch(mustEnvelope(t, "system", SystemPayload{Message: "server restarting soon"}), s)

		assert.Equal(t, 1, s.roster.Len())
		assert.Equal(t, 1, s.timeline.Len())
	})
}

func TestDispatchError(t *testing.T) {
	s := joinedSession()
	s.roster.add("bob", false)
	var d Dispatcher
	var got error
	d.SetOnError(func(err error) { got = err })

	d.Dispatch(mustEnvelope(t, "error", ErrorPayload{Message: "room full"}), s)

	assert.Error(t, got)
	assert.True(t, IsProtocolError(got))
	assert.Contains(t, got.Error(), "room full")

	// Session, roster and timeline untouched.
	assert.Equal(t, "general", s.Room())
	assert.Equal(t, 2, s.roster.Len())
	assert.Equal(t, 0, s.timeline.Len())
}

func TestDispatchUnknownKind(t *testing.T) {
	s := joinedSession()
	var d Dispatcher
	var fired bool
	d.SetOnEntry(func(Entry) { fired = true })
	d.SetOnError(func(error) { fired = true })

	d.Dispatch(mustEnvelope(t, "typing", map[string]string{"username": "bob"}), s)

	assert.False(t, fired)
	assert.Equal(t, 0, s.timeline.Len())
}
