// Package ui provides the Bubble Tea terminal interface for chyrpal.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/chyrp"
	"github.com/chyrpal/chyrpal/internal/config"
	"github.com/chyrpal/chyrpal/internal/feed"
	"github.com/chyrpal/chyrpal/internal/interact"
	"github.com/chyrpal/chyrpal/internal/prefs"
	"github.com/chyrpal/chyrpal/internal/session"
)

// View represents the current active view.
type View int

const (
	ViewFeed View = iota
	ViewPost
	ViewLogin
	ViewRegister
	ViewCompose
)

// Options configure the UI.
type Options struct {
	Context      context.Context
	API          chyrp.API
	Session      *session.Store
	Feed         *feed.Controller
	Interact     *interact.Controller
	Config       *config.Config
	RefreshEvery time.Duration
	ThemeName    string
	PrefsPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	api       chyrp.API
	sessions  *session.Store
	feed      *feed.Controller
	interact  *interact.Controller
	config    *config.Config
	prefsPath string

	theme        Theme
	styles       Styles
	view         View
	width        int
	height       int
	ready        bool
	refreshEvery time.Duration

	// viewSeq identifies the currently mounted view. Commands capture
	// it when issued; responses tagged with an older value belong to a
	// view the user already left and are dropped.
	viewSeq uint64

	statusText  string
	statusIsErr bool

	sessionSnap session.Snapshot
	feedSnap    feed.Snapshot

	// Feed view
	searchInput textinput.Model
	cursor      int

	// Auth views
	username  textinput.Model
	password  textinput.Model
	authFocus int
	authBusy  bool

	// Post view
	postID         int64
	post           *chyrp.Post
	postErr        error
	comments       []chyrp.Comment
	commentsLoaded bool
	commentsErr    error
	commentInput   textarea.Model
	commentFocused bool
	commentBusy    bool
	confirmDelete  bool
	deleteBusy     bool
	like           interact.LikeView
	postViewport   viewport.Model

	// Compose view
	compose     composeForm
	categories  []chyrp.Category
	composeBusy bool

	spin spinner.Model
}

// New creates the root Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refreshEvery := opts.RefreshEvery
	if refreshEvery <= 0 {
		refreshEvery = time.Minute
	}

	theme := GetTheme(opts.ThemeName)

	search := textinput.New()
	search.Placeholder = "search posts..."
	search.Prompt = "/ "
	search.CharLimit = 120

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 150
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	comment := textarea.New()
	comment.Placeholder = "write a comment..."
	comment.SetHeight(3)
	comment.CharLimit = 2000

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctx:          ctx,
		api:          opts.API,
		sessions:     opts.Session,
		feed:         opts.Feed,
		interact:     opts.Interact,
		config:       opts.Config,
		prefsPath:    opts.PrefsPath,
		theme:        theme,
		styles:       theme.Styles(),
		view:         ViewFeed,
		refreshEvery: refreshEvery,
		searchInput:  search,
		username:     username,
		password:     password,
		commentInput: comment,
		compose:      newComposeForm(),
		spin:         spin,
	}
}

// Run wires up the Bubble Tea program and blocks until the user quits
// or the context is cancelled.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithContext(opts.Context),
	)
	_, err := program.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.probeSessionCmd(),
		m.fetchFeedCmd(m.feed.Reload()),
		feedChangedCmd(),
		tickCmd(m.refreshEvery),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.postViewport = viewport.New(msg.Width-4, msg.Height-10)
		} else {
			m.postViewport.Width = msg.Width - 4
			m.postViewport.Height = msg.Height - 10
		}
		m.searchInput.Width = msg.Width - 8
		m.commentInput.SetWidth(msg.Width - 8)
		m.compose.setWidth(msg.Width - 8)
		m.ready = true
		m.refreshPostViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		return m, tea.Batch(m.probeSessionCmd(), tickCmd(m.refreshEvery))

	case sessionMsg:
		m.sessionSnap = m.sessions.Snapshot()
		return m, nil

	case debounceMsg:
		if req, ok := m.feed.Commit(msg.token); ok {
			return m, m.fetchFeedCmd(req)
		}
		return m, nil

	case feedUpdatedMsg:
		m.feedSnap = m.feed.Snapshot()
		m.clampCursor()
		return m, nil

	case authResultMsg:
		return m.handleAuthResult(msg)

	case postLoadedMsg:
		if msg.seq != m.viewSeq {
			return m, nil
		}
		m.postErr = msg.err
		m.post = msg.post
		if msg.post != nil {
			m.interact.SeedPost(*msg.post)
			m.like = m.interact.LikeView(msg.post.ID)
		}
		m.refreshPostViewport()
		return m, nil

	case commentsLoadedMsg:
		if msg.seq != m.viewSeq {
			return m, nil
		}
		m.commentsErr = msg.err
		m.comments = msg.comments
		m.commentsLoaded = true
		m.refreshPostViewport()
		return m, nil

	case likeSettledMsg:
		if msg.seq == m.viewSeq {
			m.like = m.interact.LikeView(msg.postID)
			if msg.err != nil {
				m.setError(fmt.Sprintf("like failed: %v", msg.err))
			}
			m.refreshPostViewport()
		}
		return m, nil

	case commentSubmittedMsg:
		return m.handleCommentSubmitted(msg)

	case postDeletedMsg:
		if msg.seq != m.viewSeq {
			return m, nil
		}
		m.deleteBusy = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("delete failed: %v", msg.err))
			return m, nil
		}
		m.nextView(ViewFeed)
		m.setStatus("post deleted")
		return m, tea.Batch(m.fetchFeedCmd(m.feed.Reload()), feedChangedCmd())

	case categoriesMsg:
		if msg.seq == m.viewSeq && msg.err == nil {
			m.categories = msg.categories
			m.compose.setCategories(msg.categories)
		}
		return m, nil

	case composeResultMsg:
		return m.handleComposeResult(msg)

	case statusMsg:
		if msg.isErr {
			m.setError(msg.text)
		} else {
			m.setStatus(msg.text)
		}
		return m, nil
	}

	// Everything else (cursor blink and friends) goes to whichever
	// component holds focus.
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == ViewFeed && m.searchInput.Focused():
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.view == ViewPost && m.commentFocused:
		m.commentInput, cmd = m.commentInput.Update(msg)
	case m.view == ViewLogin || m.view == ViewRegister:
		if m.authFocus == 0 {
			m.username, cmd = m.username.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
	case m.view == ViewCompose:
		cmd = m.compose.update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.view {
	case ViewFeed:
		body = m.renderFeed()
	case ViewPost:
		body = m.renderPost()
	case ViewLogin:
		body = m.renderAuth("Sign in", false)
	case ViewRegister:
		body = m.renderAuth("Create account", true)
	case ViewCompose:
		body = m.renderCompose()
	}

	return m.renderHeader() + "\n" + body + "\n" + m.renderFooter()
}

// handleKey routes keys to the active view after the global bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// The theme cycle works from any view.
	if msg.String() == "ctrl+t" {
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		return m, nil
	}

	switch m.view {
	case ViewFeed:
		return m.handleFeedKey(msg)
	case ViewPost:
		return m.handlePostKey(msg)
	case ViewLogin:
		return m.handleAuthKey(msg, false)
	case ViewRegister:
		return m.handleAuthKey(msg, true)
	case ViewCompose:
		return m.handleComposeKey(msg)
	}
	return m, nil
}

func (m *Model) busy() bool {
	return m.feedSnap.Loading || m.feedSnap.LoadingMore ||
		m.authBusy || m.commentBusy || m.composeBusy ||
		(m.view == ViewPost && m.post == nil && m.postErr == nil)
}

func (m *Model) setStatus(text string) {
	m.statusText = text
	m.statusIsErr = false
}

func (m *Model) setError(text string) {
	m.statusText = text
	m.statusIsErr = true
}

func (m *Model) clearStatus() {
	m.statusText = ""
	m.statusIsErr = false
}

// nextView switches views and invalidates outstanding per-view
// responses.
func (m *Model) nextView(v View) uint64 {
	m.view = v
	m.viewSeq++
	m.clearStatus()
	return m.viewSeq
}
