package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

func (m Model) handleAuthKey(msg tea.KeyMsg, register bool) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nextView(ViewFeed)
		return m, nil

	case "ctrl+r":
		if register {
			return m.openAuth(ViewLogin)
		}
		return m.openAuth(ViewRegister)

	case "tab", "shift+tab", "up", "down":
		m.authFocus = 1 - m.authFocus
		if m.authFocus == 0 {
			m.password.Blur()
			return m, m.username.Focus()
		}
		m.username.Blur()
		return m, m.password.Focus()

	case "enter":
		return m.submitAuth(register)
	}

	var cmd tea.Cmd
	if m.authFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAuth(register bool) (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" || password == "" {
		m.setError("username and password are required")
		return m, nil
	}
	if m.authBusy {
		return m, nil
	}
	m.authBusy = true
	m.clearStatus()
	cmd := m.loginCmd(username, password)
	if register {
		cmd = m.registerCmd(username, password)
	}
	return m, tea.Batch(cmd, m.spin.Tick)
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.authBusy = false
	m.sessionSnap = m.sessions.Snapshot()
	if msg.err != nil {
		switch {
		case msg.register:
			m.setError(fmt.Sprintf("registration failed: %v", msg.err))
		case chyrp.IsUnauthorized(msg.err):
			m.setError("invalid username or password")
		default:
			m.setError(fmt.Sprintf("sign in failed: %v", msg.err))
		}
		m.password.Reset()
		return m, nil
	}

	m.nextView(ViewFeed)
	if msg.register {
		m.setStatus("account created; welcome, " + m.sessionSnap.Identity.Name())
	} else {
		m.setStatus("signed in as " + m.sessionSnap.Identity.Name())
	}
	// Likes carry per-user state, so the feed is reloaded under the
	// new session.
	return m, tea.Batch(m.fetchFeedCmd(m.feed.Reload()), feedChangedCmd())
}

func (m Model) renderAuth(title string, register bool) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	userBox, passBox := m.styles.Box, m.styles.Box
	if m.authFocus == 0 {
		userBox = m.styles.FocusBox
	} else {
		passBox = m.styles.FocusBox
	}
	width := m.width - 4
	if width > 48 {
		width = 48
	}
	b.WriteString(userBox.Width(width).Render(m.username.View()))
	b.WriteString("\n")
	b.WriteString(passBox.Width(width).Render(m.password.View()))
	b.WriteString("\n\n")

	if m.authBusy {
		verb := "signing in..."
		if register {
			verb = "creating account..."
		}
		b.WriteString(m.styles.MutedText.Render(m.spin.View() + " " + verb))
	}
	return b.String()
}
