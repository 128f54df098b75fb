package roomchat

import "time"

const timestampLayout = "15:04:05"

// Session holds all state owned by one connection: room membership, the
// local identity, the roster, and the timeline. Everything here is reset as
// a unit when a new connection attempt begins or the current one closes —
// room and self are only ever both set or both absent.
type Session struct {
	room     string
	self     string
	pending  string // identity sent with create/join, promoted on confirm
	roster   Roster
	timeline Timeline
	now      func() time.Time
}

func newSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now}
}

// Room returns the server-confirmed room id, or "" before confirmation.
func (s *Session) Room() string { return s.room }

// Self returns the local identity, or "" before the room is confirmed.
func (s *Session) Self() string { return s.self }

// Joined reports whether room membership has been confirmed.
func (s *Session) Joined() bool { return s.room != "" }

// confirmRoom records the room id carried by a system notice and promotes
// the pending identity. Idempotent: the server may send the confirming
// notice zero or more times.
func (s *Session) confirmRoom(roomID string) {
	s.room = roomID
	if s.pending != "" {
		s.self = s.pending
	}
	if s.self != "" {
		s.roster.setSelf(s.self)
	}
}

func (s *Session) appendChat(text, author string, isOwn bool) Entry {
	e := Entry{
		Text:      text,
		Author:    author,
		IsOwn:     isOwn,
		Timestamp: s.now().Format(timestampLayout),
	}
	s.timeline.append(e)
	return e
}

func (s *Session) appendSystem(text string) Entry {
	e := Entry{
		Text:      text,
		Author:    "System",
		IsSystem:  true,
		Timestamp: s.now().Format(timestampLayout),
	}
	s.timeline.append(e)
	return e
}

// identity is the name used for echo suppression and roster self-marking.
// The pending name counts from the moment the join/create envelope goes out,
// before the server has confirmed the room.
func (s *Session) identity() string {
	if s.self != "" {
		return s.self
	}
	return s.pending
}

// reset clears room, identity, roster and timeline together.
func (s *Session) reset() {
	s.room = ""
	s.self = ""
	s.pending = ""
	s.roster.reset()
	s.timeline.reset()
}
