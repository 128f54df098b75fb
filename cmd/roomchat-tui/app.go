package main

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/roomchat/roomchat-go/roomchat"
)

type screen int

const (
	screenJoin screen = iota
	screenChat
)

type joinField int

const (
	fieldRoom joinField = iota
	fieldUser
	fieldCreate
)

// Messages delivered from the client's callbacks into the tea loop.
type (
	entryMsg  struct{ entry roomchat.Entry }
	rosterMsg struct{ roster []roomchat.RosterEntry }
	roomMsg   struct{ room string }
	errMsg    struct{ err error }
	closedMsg struct{}
	openedMsg struct{ err error }
)

type app struct {
	client    *roomchat.Client
	serverURL string
	events    chan tea.Msg

	scr    screen
	width  int
	height int

	// Join form.
	roomInput  textinput.Model
	userInput  textinput.Model
	focused    joinField
	createMode bool
	joining    bool
	notice     string

	// Chat view.
	room         string
	entries      []roomchat.Entry
	roster       []roomchat.RosterEntry
	chatViewport viewport.Model
	messageInput textinput.Model
	vpReady      bool
}

func newApp(client *roomchat.Client, serverURL string) *app {
	roomInput := textinput.New()
	roomInput.Placeholder = "room id"
	roomInput.CharLimit = 64
	roomInput.Width = 32
	roomInput.Focus()

	userInput := textinput.New()
	userInput.Placeholder = "username"
	userInput.CharLimit = 32
	userInput.Width = 32

	messageInput := textinput.New()
	messageInput.Placeholder = "Type a message..."
	messageInput.CharLimit = 1000
	messageInput.Width = 50

	a := &app{
		client:       client,
		serverURL:    serverURL,
		events:       make(chan tea.Msg, 256),
		roomInput:    roomInput,
		userInput:    userInput,
		messageInput: messageInput,
	}

	client.OnEntry(func(e roomchat.Entry) { a.events <- entryMsg{entry: e} })
	client.OnRoster(func(r []roomchat.RosterEntry) { a.events <- rosterMsg{roster: r} })
	client.OnRoomConfirmed(func(id string) { a.events <- roomMsg{room: id} })
	client.OnError(func(err error) { a.events <- errMsg{err: err} })
	client.OnClosed(func() { a.events <- closedMsg{} })
	return a
}

func (a *app) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.waitForEvent())
}

func (a *app) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-a.events }
}

func (a *app) openRoom(room, user string, create bool) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: a.client.Open(context.Background(), room, user, create)}
	}
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layoutChat()
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			_ = a.client.Close()
			return a, tea.Quit
		}
		if a.scr == screenJoin {
			return a.updateJoin(msg)
		}
		return a.updateChat(msg)

	case openedMsg:
		if msg.err != nil {
			a.joining = false
			a.notice = "Failed to connect to chat server: " + msg.err.Error()
		}
		// On success keep showing "Connecting..." until the server confirms
		// the room with a system notice.
		return a, nil

	case roomMsg:
		a.room = msg.room
		a.joining = false
		a.scr = screenChat
		a.messageInput.Focus()
		a.layoutChat()
		return a, a.waitForEvent()

	case entryMsg:
		a.entries = append(a.entries, msg.entry)
		follow := !a.vpReady || a.chatViewport.AtBottom()
		a.refreshViewport()
		if follow {
			a.chatViewport.GotoBottom()
		}
		return a, a.waitForEvent()

	case rosterMsg:
		a.roster = msg.roster
		return a, a.waitForEvent()

	case errMsg:
		a.notice = msg.err.Error()
		return a, a.waitForEvent()

	case closedMsg:
		// Any close wipes the session; back to the join form.
		a.scr = screenJoin
		a.joining = false
		a.room = ""
		a.entries = nil
		a.roster = nil
		a.messageInput.Reset()
		a.roomInput.Focus()
		a.focused = fieldRoom
		return a, a.waitForEvent()
	}

	return a, nil
}

func (a *app) updateJoin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp {
			a.focused = (a.focused + 2) % 3
		} else {
			a.focused = (a.focused + 1) % 3
		}
		a.roomInput.Blur()
		a.userInput.Blur()
		switch a.focused {
		case fieldRoom:
			a.roomInput.Focus()
		case fieldUser:
			a.userInput.Focus()
		}
		return a, nil

	case tea.KeySpace:
		if a.focused == fieldCreate {
			a.toggleCreate()
			return a, nil
		}

	case tea.KeyEnter:
		if a.focused == fieldCreate {
			a.toggleCreate()
			return a, nil
		}
		room := a.roomInput.Value()
		user := a.userInput.Value()
		if room == "" || user == "" || a.joining {
			return a, nil
		}
		a.joining = true
		a.notice = ""
		return a, a.openRoom(room, user, a.createMode)
	}

	var cmd tea.Cmd
	switch a.focused {
	case fieldRoom:
		a.roomInput, cmd = a.roomInput.Update(msg)
	case fieldUser:
		a.userInput, cmd = a.userInput.Update(msg)
	}
	return a, cmd
}

func (a *app) toggleCreate() {
	a.createMode = !a.createMode
	if a.createMode && a.roomInput.Value() == "" {
		// Suggest a fresh room id for new rooms.
		a.roomInput.SetValue(uuid.NewString()[:8])
	}
}

func (a *app) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Leaving is closing the socket; there is no leave envelope.
		_ = a.client.Close()
		return a, nil

	case tea.KeyEnter:
		text := a.messageInput.Value()
		if text == "" {
			return a, nil
		}
		a.messageInput.Reset()
		if err := a.client.Send(context.Background(), text); err != nil {
			a.notice = err.Error()
		} else {
			a.notice = ""
		}
		return a, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.chatViewport, cmd = a.chatViewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.messageInput, cmd = a.messageInput.Update(msg)
	return a, cmd
}
