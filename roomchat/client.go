package roomchat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/roomchat/roomchat-go/roomchat/internal"

	"github.com/coder/websocket"
)

// Client owns one WebSocket session with a chat room server. It moves
// through Disconnected -> Connecting -> Connected; any exit from Connected
// is terminal for that connection and wipes the session, roster and
// timeline. A new Open call is required to try again.
//
// Callbacks are invoked from the client's event loop with snapshot values
// and must not call back into the Client.
type Client struct {
	cfg        Config
	logger     Logger
	dispatcher Dispatcher

	mu      sync.Mutex
	state   ConnectionState
	session *Session
	conn    *internal.Conn
	writeCh chan Envelope
	cancel  context.CancelFunc

	onClosed func()
	onState  func(ConnectionState)
}

// NewClient constructs a client with the provided config. Use
// DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		logger:  noopLogger{},
		session: newSession(time.Now),
	}
}

// SetLogger overrides the logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// OnEntry registers a callback for new timeline entries, own echoes
// included.
func (c *Client) OnEntry(fn func(Entry)) { c.dispatcher.SetOnEntry(fn) }

// OnRoster registers a callback fired with a roster snapshot whenever
// membership changes.
func (c *Client) OnRoster(fn func([]RosterEntry)) { c.dispatcher.SetOnRoster(fn) }

// OnRoomConfirmed registers a callback for the server-confirmed room id.
func (c *Client) OnRoomConfirmed(fn func(string)) { c.dispatcher.SetOnRoomConfirmed(fn) }

// OnError registers a callback for transport and protocol errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// OnClosed registers a callback fired once per connection after the session
// state has been wiped.
func (c *Client) OnClosed(fn func()) { c.onClosed = fn }

// OnStateChange registers a callback for connection state transitions.
func (c *Client) OnStateChange(fn func(ConnectionState)) { c.onState = fn }

// Open dials the server and, once the socket is open, sends exactly one
// create or join envelope carrying roomID and username. Any still-active
// previous session is torn down first; only one session exists at a time.
func (c *Client) Open(ctx context.Context, roomID, username string, isCreate bool) error {
	if c.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}
	if roomID == "" || username == "" {
		return NewError(ErrorInvalidConfig, "room id and username are required")
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "bad URL", err)
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.teardownLocked("superseded by new open")
	}
	c.session.reset()
	c.session.pending = username
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	dialCtx := ctx
	if c.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.DialTimeout)
		defer cancel()
	}
	ws, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		c.mu.Lock()
		c.session.reset()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return WrapError(ErrorTransport, "dial failed", err)
	}

	conn := internal.NewConn(ws, c.cfg.WriteTimeout)

	kind := kindJoin
	if isCreate {
		kind = kindCreate
	}
	env, err := newEnvelope(kind, JoinPayload{RoomID: roomID, Username: username})
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		c.mu.Lock()
		c.session.reset()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return WrapError(ErrorSerialization, "encode handshake", err)
	}
	data, _ := json.Marshal(env)
	if err := conn.Write(ctx, data); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		c.mu.Lock()
		c.session.reset()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return WrapError(ErrorTransport, "send handshake", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.conn = conn
	c.writeCh = make(chan Envelope, 16)
	c.cancel = cancel
	c.setStateLocked(StateConnected)
	writeCh := c.writeCh
	c.mu.Unlock()

	c.logger.Info("session opened", map[string]any{"room": roomID, "user": username, "create": isCreate})

	go c.readLoop(runCtx, conn)
	go c.writeLoop(runCtx, conn, writeCh)
	return nil
}

// Send transmits one chat envelope and appends the local echo to the
// timeline immediately, without waiting for the server.
func (c *Client) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	switch c.state {
	case StateConnecting:
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "connection not open yet")
	case StateDisconnected:
		c.mu.Unlock()
		return NewError(ErrorNotJoined, "no active session")
	}
	env, err := newEnvelope(kindChat, ChatPayload{Message: text})
	if err != nil {
		c.mu.Unlock()
		return WrapError(ErrorSerialization, "encode chat", err)
	}
	// Fire the echo callback before unlocking, exactly like inbound
	// dispatch does, so callback delivery order always matches timeline
	// insertion order.
	entry := c.session.appendChat(text, c.session.identity(), true)
	c.dispatcher.fireEntry(entry)
	writeCh := c.writeCh
	c.mu.Unlock()

	select {
	case writeCh <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the active connection. Closing the socket is the only
// way to leave a room; the protocol has no leave envelope.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Room returns the server-confirmed room id, or "" when not joined.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Room()
}

// Self returns the local identity, or "" when not joined.
func (c *Client) Self() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Self()
}

// Timeline returns a snapshot of the message timeline.
func (c *Client) Timeline() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.timeline.Entries()
}

// Roster returns a snapshot of the online roster, local user first.
func (c *Client) Roster() []RosterEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.roster.Entries()
}

// readLoop applies inbound envelopes in arrival order. Frames that are not
// JSON or carry no recognized kind are discarded without killing the loop.
func (c *Client) readLoop(ctx context.Context, conn *internal.Conn) {
	defer c.handleClosed(conn)
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if isExpectedDisconnect(ctx, err) {
				return
			}
			c.dispatcher.fireError(WrapError(ErrorTransport, "connection lost", err))
			c.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			c.logger.Debug("dropping malformed frame", map[string]any{"bytes": len(data)})
			continue
		}
		c.mu.Lock()
		c.dispatcher.Dispatch(env, c.session)
		c.mu.Unlock()
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn, writeCh <-chan Envelope) {
	for {
		select {
		case env := <-writeCh:
			data, err := json.Marshal(env)
			if err != nil {
				c.dispatcher.fireError(WrapError(ErrorSerialization, "encode envelope", err))
				continue
			}
			if err := conn.Write(ctx, data); err != nil {
				if !isExpectedDisconnect(ctx, err) {
					c.dispatcher.fireError(WrapError(ErrorTransport, "write failed", err))
					c.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				}
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleClosed runs once per connection when the read loop exits, for both
// graceful closes and transport errors. Session, roster and timeline are
// wiped together. A loop whose connection was already superseded by a new
// Open does nothing.
func (c *Client) handleClosed(conn *internal.Conn) {
	c.mu.Lock()
	if c.conn != conn || c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.conn = nil
	c.session.reset()
	c.setStateLocked(StateDisconnected)
	fn := c.onClosed
	c.mu.Unlock()

	c.logger.Info("session closed", nil)
	if fn != nil {
		fn()
	}
}

// teardownLocked forcibly ends the previous connection before a new open.
// Caller holds c.mu.
func (c *Client) teardownLocked(reason string) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, reason)
		c.conn = nil
	}
	c.session.reset()
	c.setStateLocked(StateDisconnected)
}

func (c *Client) setStateLocked(s ConnectionState) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
