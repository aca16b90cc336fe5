package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/interact"
)

func (m Model) handlePostKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.commentFocused {
		switch msg.String() {
		case "esc":
			m.commentFocused = false
			m.commentInput.Blur()
			return m, nil
		case "enter":
			return m.submitComment()
		default:
			var cmd tea.Cmd
			m.commentInput, cmd = m.commentInput.Update(msg)
			return m, cmd
		}
	}

	if msg.String() != "x" {
		m.confirmDelete = false
	}

	switch msg.String() {
	case "esc", "q":
		m.nextView(ViewFeed)
		return m, nil

	case "l":
		return m.toggleLike()

	case "x":
		return m.deletePost()

	case "c":
		if !m.sessionSnap.Authenticated {
			m.setError("sign in to comment")
			return m, nil
		}
		m.commentFocused = true
		return m, m.commentInput.Focus()

	case "r":
		return m, m.loadCommentsCmd(m.viewSeq, m.postID)

	case "up", "k", "down", "j", "pgup", "pgdown":
		var cmd tea.Cmd
		m.postViewport, cmd = m.postViewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// toggleLike applies the optimistic flip synchronously and settles the
// server round trip from a command.
func (m Model) toggleLike() (tea.Model, tea.Cmd) {
	toggle, err := m.interact.BeginToggle(m.postID)
	if err != nil {
		switch {
		case errors.Is(err, interact.ErrSignInRequired):
			m.setError("sign in to like posts")
		default:
			m.setError(err.Error())
		}
		return m, nil
	}
	m.clearStatus()
	m.like = m.interact.LikeView(m.postID)
	m.refreshPostViewport()
	return m, m.settleToggleCmd(m.viewSeq, toggle)
}

// deletePost removes the viewer's own post. The first press arms a
// confirmation; the second issues the request.
func (m Model) deletePost() (tea.Model, tea.Cmd) {
	if m.post == nil || m.deleteBusy {
		return m, nil
	}
	if !m.ownPost() {
		m.setError("only your own posts can be deleted")
		return m, nil
	}
	if !m.confirmDelete {
		m.confirmDelete = true
		m.setStatus("press x again to delete this post")
		return m, nil
	}
	m.confirmDelete = false
	m.deleteBusy = true
	m.clearStatus()
	return m, tea.Batch(m.deletePostCmd(m.viewSeq, m.postID), m.spin.Tick)
}

func (m Model) ownPost() bool {
	return m.post != nil &&
		m.sessionSnap.Authenticated &&
		m.post.Username == m.sessionSnap.Identity.Username
}

func (m Model) submitComment() (tea.Model, tea.Cmd) {
	message := m.commentInput.Value()
	if strings.TrimSpace(message) == "" {
		m.setError("comment is empty")
		return m, nil
	}
	if !m.sessionSnap.Authenticated {
		m.setError("sign in to comment")
		return m, nil
	}
	if m.commentBusy {
		return m, nil
	}
	m.commentBusy = true
	m.clearStatus()
	return m, tea.Batch(
		m.submitCommentCmd(m.viewSeq, m.postID, message),
		m.spin.Tick,
	)
}

func (m Model) handleCommentSubmitted(msg commentSubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.viewSeq {
		return m, nil
	}
	m.commentBusy = false
	if msg.err != nil {
		// Keep the draft so the user can retry.
		switch {
		case errors.Is(msg.err, interact.ErrEmptyMessage):
			m.setError("comment is empty")
		case errors.Is(msg.err, interact.ErrSignInRequired):
			m.setError("sign in to comment")
		default:
			m.setError(fmt.Sprintf("comment failed: %v", msg.err))
		}
		return m, nil
	}
	m.commentInput.Reset()
	m.commentInput.Blur()
	m.commentFocused = false
	m.comments = m.interact.Comments(msg.postID)
	m.setStatus("comment posted")
	m.refreshPostViewport()
	return m, m.loadCommentsCmd(m.viewSeq, msg.postID)
}

func (m *Model) refreshPostViewport() {
	if !m.ready || m.view != ViewPost {
		return
	}
	m.postViewport.SetContent(m.postContent())
}

func (m Model) postContent() string {
	if m.postErr != nil {
		return m.styles.DangerText.Render(fmt.Sprintf("could not load post: %v", m.postErr))
	}
	if m.post == nil {
		return m.styles.MutedText.Render(m.spin.View() + " loading...")
	}

	post := m.post
	var b strings.Builder

	title := post.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render(
		fmt.Sprintf("%s · %s", post.AuthorName(), formatTime(post.ParsedCreatedAt()))))
	if post.Category != "" {
		b.WriteString(m.styles.FaintText.Render("  [" + post.Category + "]"))
	}
	b.WriteString("\n")
	if len(post.Hashtags) > 0 {
		b.WriteString(m.styles.AccentText.Render("#" + strings.Join(post.Hashtags, " #")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Text.Render(post.Content))
	b.WriteString("\n")

	for _, name := range post.Files {
		b.WriteString(m.styles.FaintText.Render("📎 " + name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLikeLine())
	b.WriteString("\n\n")
	b.WriteString(m.renderComments())

	return b.String()
}

func (m Model) renderLikeLine() string {
	switch m.like.Status {
	case interact.LikeUnknown:
		return m.styles.FaintText.Render("♡ —  (l to like)")
	case interact.LikePending:
		heart := "♡"
		if m.like.Liked {
			heart = "♥"
		}
		return m.styles.MutedText.Render(fmt.Sprintf("%s %d  saving...", heart, m.like.Count))
	case interact.Liked:
		return m.styles.DangerText.Render(fmt.Sprintf("♥ %d  (l to unlike)", m.like.Count))
	default:
		return m.styles.MutedText.Render(fmt.Sprintf("♡ %d  (l to like)", m.like.Count))
	}
}

func (m Model) renderComments() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Comments (%d)", len(m.comments))))
	b.WriteString("\n")

	switch {
	case m.commentsErr != nil:
		b.WriteString(m.styles.DangerText.Render(fmt.Sprintf("could not load comments: %v", m.commentsErr)))
	case !m.commentsLoaded:
		b.WriteString(m.styles.MutedText.Render("loading comments..."))
	case len(m.comments) == 0:
		b.WriteString(m.styles.MutedText.Render("no comments yet"))
	default:
		for _, comment := range m.comments {
			b.WriteString(m.styles.AccentText.Render(comment.User.Name()))
			b.WriteString(m.styles.FaintText.Render("  " + formatTime(comment.ParsedSentAt())))
			b.WriteString("\n")
			b.WriteString(m.styles.Text.Render(comment.Message))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func (m Model) renderPost() string {
	var b strings.Builder
	b.WriteString(m.postViewport.View())
	b.WriteString("\n")

	commentBox := m.styles.Box
	if m.commentFocused {
		commentBox = m.styles.FocusBox
	}
	label := m.commentInput.View()
	if m.commentBusy {
		label = m.spin.View() + " sending..."
	}
	b.WriteString(commentBox.Width(m.width - 4).Render(label))
	return b.String()
}
