package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchInput.Focused() {
		switch msg.String() {
		case "esc":
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.searchInput.Blur()
			token := m.feed.SetInput(m.searchInput.Value())
			return m, debounceCmd(token)
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			token := m.feed.SetInput(m.searchInput.Value())
			return m, tea.Batch(cmd, debounceCmd(token))
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		m.searchInput.Focus()
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.feedSnap.Visible)-1 {
			m.cursor++
		}
		// Reaching the bottom of a fully fetched page asks for the
		// next one; the controller refuses when one is in flight.
		if m.cursor == len(m.feedSnap.Visible)-1 {
			if req, ok := m.feed.LoadMore(); ok {
				return m, tea.Batch(m.fetchFeedCmd(req), feedChangedCmd())
			}
		}
		return m, nil

	case "enter":
		if m.cursor < len(m.feedSnap.Visible) {
			return m.openPost(m.feedSnap.Visible[m.cursor].ID)
		}
		return m, nil

	case "r":
		return m, tea.Batch(m.fetchFeedCmd(m.feed.Reload()), feedChangedCmd())

	case "n":
		if !m.sessionSnap.Authenticated {
			m.setError("sign in to write a post")
			return m, nil
		}
		return m.openCompose()

	case "i":
		if !m.sessionSnap.Authenticated {
			return m.openAuth(ViewLogin)
		}
		return m, nil

	case "o":
		if m.sessionSnap.Authenticated {
			return m, m.logoutCmd()
		}
		return m, nil
	}

	return m, nil
}

// feedChangedCmd re-reads the feed snapshot so loading flags show up
// immediately.
func feedChangedCmd() tea.Cmd {
	return func() tea.Msg { return feedUpdatedMsg{} }
}

func (m Model) openPost(id int64) (tea.Model, tea.Cmd) {
	seq := m.nextView(ViewPost)
	m.postID = id
	m.post = nil
	m.postErr = nil
	m.comments = nil
	m.commentsLoaded = false
	m.commentsErr = nil
	m.commentInput.Reset()
	m.commentInput.Blur()
	m.commentFocused = false
	m.commentBusy = false
	m.confirmDelete = false
	m.deleteBusy = false
	m.like = m.interact.LikeView(id)
	m.postViewport.GotoTop()
	return m, tea.Batch(
		m.loadPostCmd(seq, id),
		m.loadCommentsCmd(seq, id),
		m.spin.Tick,
	)
}

func (m Model) openAuth(view View) (tea.Model, tea.Cmd) {
	m.nextView(view)
	m.username.Reset()
	m.password.Reset()
	m.password.Blur()
	m.authFocus = 0
	m.authBusy = false
	return m, m.username.Focus()
}

func (m Model) openCompose() (tea.Model, tea.Cmd) {
	seq := m.nextView(ViewCompose)
	m.compose = newComposeForm()
	m.compose.setWidth(m.width - 8)
	m.compose.setCategories(m.categories)
	m.composeBusy = false
	return m, tea.Batch(m.compose.focusFirst(), m.loadCategoriesCmd(seq))
}

func (m *Model) clampCursor() {
	if n := len(m.feedSnap.Visible); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) renderFeed() string {
	var b strings.Builder

	searchBox := m.styles.Box
	if m.searchInput.Focused() {
		searchBox = m.styles.FocusBox
	}
	b.WriteString(searchBox.Width(m.width - 4).Render(m.searchInput.View()))
	b.WriteString("\n\n")

	snap := m.feedSnap
	switch {
	case snap.Loading:
		b.WriteString(m.styles.MutedText.Render(m.spin.View() + " loading posts..."))
	case snap.Err != nil && len(snap.Items) == 0:
		// A failed first page keeps no items and must not read as an
		// empty search result.
		b.WriteString(m.styles.DangerText.Render(fmt.Sprintf("could not load posts: %v", snap.Err)))
	case len(snap.Visible) == 0 && snap.Loaded:
		b.WriteString(m.styles.MutedText.Render("no posts match"))
	default:
		b.WriteString(m.renderPostList())
	}

	return b.String()
}

func (m Model) renderPostList() string {
	var b strings.Builder
	snap := m.feedSnap

	rows := m.height - 12
	if rows < 3 {
		rows = 3
	}
	// Two lines per entry.
	perScreen := rows / 2
	start := 0
	if m.cursor >= perScreen {
		start = m.cursor - perScreen + 1
	}

	for i := start; i < len(snap.Visible) && i < start+perScreen; i++ {
		post := snap.Visible[i]
		title := post.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		title = truncate(title, m.width-20)

		meta := fmt.Sprintf("%s · %s · %d likes",
			post.AuthorName(),
			formatTime(post.ParsedCreatedAt()),
			post.LikeCount,
		)

		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("▸ " + title))
			b.WriteString("\n")
			b.WriteString("  " + m.styles.MutedText.Render(meta))
		} else {
			b.WriteString(m.styles.Text.Render("  " + title))
			b.WriteString("\n")
			b.WriteString("  " + m.styles.FaintText.Render(meta))
		}
		b.WriteString("\n")
	}

	if snap.LoadingMore {
		b.WriteString(m.styles.MutedText.Render(m.spin.View() + " loading more..."))
	} else if snap.HasMore {
		b.WriteString(m.styles.FaintText.Render("↓ more"))
	}
	if snap.Err != nil && snap.Loaded {
		b.WriteString("\n" + m.styles.DangerText.Render(fmt.Sprintf("load more failed: %v", snap.Err)))
	}

	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(" chyrpal ")

	var who string
	switch {
	case !m.sessionSnap.Resolved:
		who = m.styles.MutedText.Render("resolving session...")
	case m.sessionSnap.Authenticated:
		who = m.styles.SuccessText.Render(m.sessionSnap.Identity.Name())
	default:
		who = m.styles.MutedText.Render("anonymous")
	}

	pad := m.width - visibleWidth(title) - visibleWidth(who) - 2
	if pad < 1 {
		pad = 1
	}
	return m.styles.Header.Width(m.width).Render(title + strings.Repeat(" ", pad) + who)
}

func (m Model) renderFooter() string {
	var help string
	switch m.view {
	case ViewFeed:
		if m.searchInput.Focused() {
			help = "enter/esc: done typing · ctrl+c: quit"
		} else if m.sessionSnap.Authenticated {
			help = "/: search · enter: open · n: new post · r: refresh · o: sign out · ctrl+t: theme · q: quit"
		} else {
			help = "/: search · enter: open · i: sign in · r: refresh · ctrl+t: theme · q: quit"
		}
	case ViewPost:
		if m.commentFocused {
			help = "enter: send · esc: stop writing"
		} else if m.ownPost() {
			help = "l: like · c: comment · x: delete · ↑/↓: scroll · esc: back"
		} else {
			help = "l: like · c: comment · ↑/↓: scroll · esc: back"
		}
	case ViewLogin:
		help = "tab: next field · enter: sign in · ctrl+r: register instead · esc: back"
	case ViewRegister:
		help = "tab: next field · enter: create account · ctrl+r: sign in instead · esc: back"
	case ViewCompose:
		help = "tab: next field · ctrl+s: publish · ctrl+d: save draft · esc: back"
	}

	line := m.styles.FaintText.Render(help)
	if m.statusText != "" {
		status := m.styles.AccentText.Render(m.statusText)
		if m.statusIsErr {
			status = m.styles.DangerText.Render(m.statusText)
		}
		line = status + "\n" + line
	}
	return line
}
