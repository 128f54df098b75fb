package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/roomchat/roomchat-go/roomchat"
)

func testApp() *app {
	return newApp(roomchat.NewClient(roomchat.DefaultConfig()), "ws://localhost:8080")
}

func TestChatViewRendersErrorNotice(t *testing.T) {
	a := testApp()
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a.Update(roomMsg{room: "general"})
	a.Update(errMsg{err: roomchat.NewError(roomchat.ErrorProtocol, "room full")})

	assert.Contains(t, a.View(), "room full")
}

func TestChatViewRendersSendFailure(t *testing.T) {
	a := testApp()
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a.Update(roomMsg{room: "general"})

	// The client was never opened, so the send fails and the failure must
	// show up in the chat view.
	a.messageInput.SetValue("hello")
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.NotEmpty(t, a.notice)
	assert.Contains(t, a.View(), "no active session")
}

func TestCloseReturnsToJoinFormWithNotice(t *testing.T) {
	a := testApp()
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a.Update(roomMsg{room: "general"})
	a.Update(errMsg{err: roomchat.NewError(roomchat.ErrorTransport, "connection lost")})
	a.Update(closedMsg{})

	assert.Equal(t, screenJoin, a.scr)
	assert.Contains(t, a.View(), "connection lost")
}
