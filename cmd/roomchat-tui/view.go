package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/roomchat/roomchat-go/roomchat"
)

const sidebarWidth = 24

var (
	primaryColor = lipgloss.Color("#7C3AED")
	selfColor    = lipgloss.Color("#10B981")
	mutedColor   = lipgloss.Color("#9CA3AF")
	errorColor   = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginRight(1).
			Width(sidebarWidth)

	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	selfStyle   = lipgloss.NewStyle().Foreground(selfColor).Bold(true)
	authorStyle = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	stampStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

func (a *app) View() string {
	if a.scr == screenJoin {
		return a.viewJoin()
	}
	return a.viewChat()
}

func (a *app) viewJoin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("roomchat") + "\n")
	b.WriteString(mutedStyle.Render(a.serverURL) + "\n\n")
	b.WriteString("Room:     " + a.roomInput.View() + "\n")
	b.WriteString("Name:     " + a.userInput.View() + "\n\n")

	mode := "[ ] create new room"
	if a.createMode {
		mode = "[x] create new room"
	}
	if a.focused == fieldCreate {
		mode = selfStyle.Render(mode)
	}
	b.WriteString(mode + "\n\n")

	switch {
	case a.joining:
		b.WriteString(mutedStyle.Render("Connecting..."))
	case a.notice != "":
		b.WriteString(errorStyle.Render(a.notice))
	default:
		b.WriteString(mutedStyle.Render("tab: next field • enter: join • ctrl+c: quit"))
	}

	form := boxStyle.Render(b.String())
	if a.width == 0 {
		return form
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, form)
}

func (a *app) viewChat() string {
	sidebar := a.viewSidebar()
	statusLine := mutedStyle.Render("enter: send • esc: leave room • ctrl+c: quit")
	if a.notice != "" {
		statusLine = errorStyle.Render(a.notice)
	}
	chat := lipgloss.JoinVertical(lipgloss.Left,
		a.chatViewport.View(),
		a.messageInput.View(),
		statusLine,
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chat)
}

func (a *app) viewSidebar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("#"+a.room) + "\n\n")
	b.WriteString(mutedStyle.Render("online") + "\n")
	for _, u := range a.roster {
		if u.IsSelf {
			b.WriteString(selfStyle.Render("● "+u.Username+" (you)") + "\n")
		} else {
			b.WriteString("● " + u.Username + "\n")
		}
	}
	s := sidebarStyle
	if a.height > 2 {
		s = s.Height(a.height - 2)
	}
	return s.Render(b.String())
}

func (a *app) layoutChat() {
	if a.width == 0 || a.height == 0 {
		return
	}
	w := a.width - sidebarWidth - 4
	if w < 20 {
		w = 20
	}
	h := a.height - 3
	if h < 5 {
		h = 5
	}
	if !a.vpReady {
		a.chatViewport = viewport.New(w, h)
		a.vpReady = true
	} else {
		a.chatViewport.Width = w
		a.chatViewport.Height = h
	}
	a.messageInput.Width = w - 4
	a.refreshViewport()
	a.chatViewport.GotoBottom()
}

func (a *app) refreshViewport() {
	if !a.vpReady {
		return
	}
	lines := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		lines = append(lines, a.renderEntry(e))
	}
	a.chatViewport.SetContent(strings.Join(lines, "\n"))
}

func (a *app) renderEntry(e roomchat.Entry) string {
	stamp := stampStyle.Render(e.Timestamp)
	switch {
	case e.IsSystem:
		return stamp + " " + systemStyle.Render(e.Text)
	case e.IsOwn:
		return stamp + " " + selfStyle.Render(e.Author+":") + " " + e.Text
	default:
		return stamp + " " + authorStyle.Render(e.Author+":") + " " + e.Text
	}
}
