package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

// composeForm holds the post editor fields. Focus order is title,
// content, category, hashtags, image, video, files.
type composeForm struct {
	title    textinput.Model
	content  textarea.Model
	hashtags textinput.Model
	image    textinput.Model
	video    textinput.Model
	files    textinput.Model

	categories []chyrp.Category
	categoryIx int
	focus      int
}

const composeFieldCount = 7

const (
	composeTitle = iota
	composeContent
	composeCategory
	composeHashtags
	composeImage
	composeVideo
	composeFiles
)

func newComposeForm() composeForm {
	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 200

	content := textarea.New()
	content.Placeholder = "write something..."
	content.SetHeight(6)

	hashtags := textinput.New()
	hashtags.Placeholder = "hashtags, comma separated"

	image := textinput.New()
	image.Placeholder = "image file path (optional)"
	video := textinput.New()
	video.Placeholder = "video file path (optional)"
	files := textinput.New()
	files.Placeholder = "attachment paths, comma separated (optional)"

	return composeForm{
		title:    title,
		content:  content,
		hashtags: hashtags,
		image:    image,
		video:    video,
		files:    files,
	}
}

func (f *composeForm) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	f.title.Width = width
	f.content.SetWidth(width)
	f.hashtags.Width = width
	f.image.Width = width
	f.video.Width = width
	f.files.Width = width
}

func (f *composeForm) setCategories(categories []chyrp.Category) {
	f.categories = categories
	if f.categoryIx > len(categories) {
		f.categoryIx = 0
	}
}

func (f *composeForm) focusFirst() tea.Cmd {
	f.focus = composeTitle
	return f.applyFocus()
}

func (f *composeForm) cycleFocus(delta int) tea.Cmd {
	f.focus = (f.focus + delta + composeFieldCount) % composeFieldCount
	return f.applyFocus()
}

func (f *composeForm) applyFocus() tea.Cmd {
	f.title.Blur()
	f.content.Blur()
	f.hashtags.Blur()
	f.image.Blur()
	f.video.Blur()
	f.files.Blur()
	switch f.focus {
	case composeTitle:
		return f.title.Focus()
	case composeContent:
		return f.content.Focus()
	case composeHashtags:
		return f.hashtags.Focus()
	case composeImage:
		return f.image.Focus()
	case composeVideo:
		return f.video.Focus()
	case composeFiles:
		return f.files.Focus()
	}
	return nil
}

// cycleCategory moves the category selection; index 0 means none.
func (f *composeForm) cycleCategory(delta int) {
	n := len(f.categories) + 1
	f.categoryIx = (f.categoryIx + delta + n) % n
}

func (f *composeForm) categoryLabel() string {
	if f.categoryIx == 0 {
		return "(none)"
	}
	return f.categories[f.categoryIx-1].Name
}

func (f *composeForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case composeTitle:
		f.title, cmd = f.title.Update(msg)
	case composeContent:
		f.content, cmd = f.content.Update(msg)
	case composeHashtags:
		f.hashtags, cmd = f.hashtags.Update(msg)
	case composeImage:
		f.image, cmd = f.image.Update(msg)
	case composeVideo:
		f.video, cmd = f.video.Update(msg)
	case composeFiles:
		f.files, cmd = f.files.Update(msg)
	}
	return cmd
}

// draft assembles the creation request, reading any referenced files
// from disk.
func (f *composeForm) draft(isDraft bool) (chyrp.PostDraft, error) {
	draft := chyrp.PostDraft{
		Title:   strings.TrimSpace(f.title.Value()),
		Content: f.content.Value(),
		IsDraft: isDraft,
	}
	if draft.Title == "" && strings.TrimSpace(draft.Content) == "" {
		return draft, errors.New("post needs a title or content")
	}
	if f.categoryIx > 0 {
		draft.CategoryID = f.categories[f.categoryIx-1].ID
	}
	if tags := strings.TrimSpace(f.hashtags.Value()); tags != "" {
		draft.Hashtags = strings.Split(tags, ",")
	}

	var err error
	if draft.Image, err = loadAttachment(f.image.Value()); err != nil {
		return draft, err
	}
	if draft.Video, err = loadAttachment(f.video.Value()); err != nil {
		return draft, err
	}
	for _, path := range strings.Split(f.files.Value(), ",") {
		attachment, err := loadAttachment(path)
		if err != nil {
			return draft, err
		}
		if attachment != nil {
			draft.Attachments = append(draft.Attachments, *attachment)
		}
	}
	return draft, nil
}

func loadAttachment(path string) (*chyrp.Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &chyrp.Attachment{Name: filepath.Base(path), Content: content}, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nextView(ViewFeed)
		return m, nil

	case "tab":
		return m, m.compose.cycleFocus(1)

	case "shift+tab":
		return m, m.compose.cycleFocus(-1)

	case "ctrl+s":
		return m.submitCompose(false)

	case "ctrl+d":
		return m.submitCompose(true)
	}

	if m.compose.focus == composeCategory {
		switch msg.String() {
		case "left", "h", "up", "k":
			m.compose.cycleCategory(-1)
			return m, nil
		case "right", "l", "down", "j", "enter", " ":
			m.compose.cycleCategory(1)
			return m, nil
		}
		return m, nil
	}

	return m, m.compose.update(msg)
}

func (m Model) submitCompose(isDraft bool) (tea.Model, tea.Cmd) {
	if m.composeBusy {
		return m, nil
	}
	draft, err := m.compose.draft(isDraft)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	if len(draft.Attachments) > 3 {
		m.setError("a post can carry at most 3 extra attachments")
		return m, nil
	}
	m.composeBusy = true
	m.clearStatus()
	return m, tea.Batch(m.createPostCmd(m.viewSeq, draft), m.spin.Tick)
}

func (m Model) handleComposeResult(msg composeResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.viewSeq {
		return m, nil
	}
	m.composeBusy = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, chyrp.ErrTooManyAttachments):
			m.setError("a post can carry at most 3 extra attachments")
		case chyrp.IsUnauthorized(msg.err):
			m.setError("your session expired; sign in again")
		default:
			m.setError(fmt.Sprintf("publish failed: %v", msg.err))
		}
		return m, nil
	}
	m.nextView(ViewFeed)
	m.setStatus("post published")
	return m, tea.Batch(m.fetchFeedCmd(m.feed.Reload()), feedChangedCmd())
}

func (m Model) renderCompose() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("New post"))
	b.WriteString("\n\n")

	box := func(focus int, view string) string {
		style := m.styles.Box
		if m.compose.focus == focus {
			style = m.styles.FocusBox
		}
		return style.Width(m.width - 4).Render(view)
	}

	b.WriteString(box(composeTitle, m.compose.title.View()))
	b.WriteString("\n")
	b.WriteString(box(composeContent, m.compose.content.View()))
	b.WriteString("\n")
	b.WriteString(box(composeCategory, "category: "+m.compose.categoryLabel()))
	b.WriteString("\n")
	b.WriteString(box(composeHashtags, m.compose.hashtags.View()))
	b.WriteString("\n")
	b.WriteString(box(composeImage, m.compose.image.View()))
	b.WriteString("\n")
	b.WriteString(box(composeVideo, m.compose.video.View()))
	b.WriteString("\n")
	b.WriteString(box(composeFiles, m.compose.files.View()))
	b.WriteString("\n")

	if m.composeBusy {
		b.WriteString(m.styles.MutedText.Render(m.spin.View() + " publishing..."))
	}
	return b.String()
}
