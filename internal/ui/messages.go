package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/chyrp"
	"github.com/chyrpal/chyrpal/internal/feed"
	"github.com/chyrpal/chyrpal/internal/interact"
)

type (
	// tickMsg drives the periodic session refresh.
	tickMsg time.Time

	// sessionMsg reports that the session store was refreshed.
	sessionMsg struct{}

	// debounceMsg fires after the search debounce interval; token
	// identifies the keystroke that scheduled it.
	debounceMsg struct {
		token uint64
	}

	// feedUpdatedMsg reports that the feed controller absorbed a
	// response and its snapshot should be re-read.
	feedUpdatedMsg struct{}

	// authResultMsg reports the outcome of a login or register call.
	authResultMsg struct {
		register bool
		err      error
	}

	postLoadedMsg struct {
		seq  uint64
		post *chyrp.Post
		err  error
	}

	commentsLoadedMsg struct {
		seq      uint64
		postID   int64
		comments []chyrp.Comment
		err      error
	}

	likeSettledMsg struct {
		seq    uint64
		postID int64
		err    error
	}

	commentSubmittedMsg struct {
		seq    uint64
		postID int64
		err    error
	}

	postDeletedMsg struct {
		seq uint64
		err error
	}

	categoriesMsg struct {
		seq        uint64
		categories []chyrp.Category
		err        error
	}

	composeResultMsg struct {
		seq uint64
		err error
	}

	statusMsg struct {
		text  string
		isErr bool
	}
)

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func debounceCmd(token uint64) tea.Cmd {
	return tea.Tick(feed.DebounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{token: token}
	})
}

func (m Model) probeSessionCmd() tea.Cmd {
	return func() tea.Msg {
		m.sessions.Probe(m.ctx, m.api)
		return sessionMsg{}
	}
}

func (m Model) fetchFeedCmd(req feed.Request) tea.Cmd {
	if req.Gen == 0 {
		return nil
	}
	return func() tea.Msg {
		m.feed.Fetch(m.ctx, req)
		return feedUpdatedMsg{}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		err := m.sessions.Login(m.ctx, m.api, username, password)
		return authResultMsg{err: err}
	}
}

func (m Model) registerCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		err := m.sessions.Register(m.ctx, m.api, username, password)
		return authResultMsg{register: true, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.sessions.Logout(m.ctx, m.api); err != nil {
			return statusMsg{text: "signed out locally; server logout failed", isErr: true}
		}
		return sessionMsg{}
	}
}

func (m Model) loadPostCmd(seq uint64, id int64) tea.Cmd {
	return func() tea.Msg {
		post, err := m.api.GetPost(m.ctx, id)
		return postLoadedMsg{seq: seq, post: post, err: err}
	}
}

func (m Model) loadCommentsCmd(seq uint64, postID int64) tea.Cmd {
	return func() tea.Msg {
		comments, err := m.interact.LoadComments(m.ctx, postID)
		return commentsLoadedMsg{seq: seq, postID: postID, comments: comments, err: err}
	}
}

func (m Model) settleToggleCmd(seq uint64, toggle interact.Toggle) tea.Cmd {
	return func() tea.Msg {
		err := m.interact.CompleteToggle(m.ctx, toggle)
		return likeSettledMsg{seq: seq, postID: toggle.PostID, err: err}
	}
}

func (m Model) submitCommentCmd(seq uint64, postID int64, message string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.interact.SubmitComment(m.ctx, postID, message)
		return commentSubmittedMsg{seq: seq, postID: postID, err: err}
	}
}

func (m Model) deletePostCmd(seq uint64, id int64) tea.Cmd {
	return func() tea.Msg {
		err := m.api.DeletePost(m.ctx, id)
		return postDeletedMsg{seq: seq, err: err}
	}
}

func (m Model) loadCategoriesCmd(seq uint64) tea.Cmd {
	return func() tea.Msg {
		categories, err := m.api.ListCategories(m.ctx)
		return categoriesMsg{seq: seq, categories: categories, err: err}
	}
}

func (m Model) createPostCmd(seq uint64, draft chyrp.PostDraft) tea.Cmd {
	return func() tea.Msg {
		err := m.api.CreatePost(m.ctx, draft)
		return composeResultMsg{seq: seq, err: err}
	}
}
