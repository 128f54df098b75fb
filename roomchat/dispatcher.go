package roomchat

import "encoding/json"

// Dispatcher classifies inbound envelopes and applies them to the session:
// chat envelopes land on the timeline unless they are echoes of the local
// user's own messages, system notices update room membership and feed the
// roster inference, error envelopes are surfaced without touching state.
// Envelopes are processed one at a time, in arrival order, exactly once.
type Dispatcher struct {
	onEntry  func(Entry)
	onRoster func([]RosterEntry)
	onRoom   func(string)
	onError  func(error)
}

func (d *Dispatcher) SetOnEntry(fn func(Entry))          { d.onEntry = fn }
func (d *Dispatcher) SetOnRoster(fn func([]RosterEntry)) { d.onRoster = fn }
func (d *Dispatcher) SetOnRoomConfirmed(fn func(string)) { d.onRoom = fn }
func (d *Dispatcher) SetOnError(fn func(error))          { d.onError = fn }

// Dispatch applies one envelope to the session. Unrecognized kinds and
// payloads that do not decode are dropped silently.
func (d *Dispatcher) Dispatch(env Envelope, s *Session) {
	switch env.Type {
	case kindChat:
		var p ChatPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		d.chat(p, s)
	case kindSystem:
		var p SystemPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		d.system(p, s)
	case kindError:
		var p ErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		d.fireError(NewError(ErrorProtocol, p.Message))
	}
}

func (d *Dispatcher) chat(p ChatPayload, s *Session) {
	// The server echoes chat back to everyone in the room, sender included.
	// The sender's copy was already appended at send time.
	if p.Username != "" && p.Username == s.identity() {
		return
	}
	author := p.Username
	if author == "" {
		author = "Anonymous"
	}
	d.fireEntry(s.appendChat(p.Message, author, false))
}

func (d *Dispatcher) system(p SystemPayload, s *Session) {
	if p.RoomID != "" {
		s.confirmRoom(p.RoomID)
		if d.onRoom != nil {
			d.onRoom(p.RoomID)
		}
		d.fireRoster(s)
	}
	if s.roster.observe(p.Message, s.identity()) {
		d.fireRoster(s)
	}
	d.fireEntry(s.appendSystem(p.Message))
}

func (d *Dispatcher) fireEntry(e Entry) {
	if d.onEntry != nil {
		d.onEntry(e)
	}
}

func (d *Dispatcher) fireRoster(s *Session) {
	if d.onRoster != nil {
		d.onRoster(s.roster.Entries())
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
