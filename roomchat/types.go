package roomchat

import "encoding/json"

const (
	kindCreate = "create"
	kindJoin   = "join"
	kindChat   = "chat"
	kindSystem = "system"
	kindError  = "error"
)

// Envelope is the wire message shape in both directions: a kind tag plus a
// kind-specific payload. Outbound payloads are typed structs; inbound
// payloads stay raw until the dispatcher knows the kind.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is sent with create and join envelopes.
type JoinPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// ChatPayload carries one chat message. Username is set only on inbound
// envelopes; the server fills it in when relaying.
type ChatPayload struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// SystemPayload carries a server notification. RoomID is present on the
// notice that confirms room membership after create/join.
type SystemPayload struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId,omitempty"`
}

// ErrorPayload carries a server-reported failure.
type ErrorPayload struct {
	Message string `json:"message"`
}

func newEnvelope(kind string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: kind, Payload: raw}, nil
}
