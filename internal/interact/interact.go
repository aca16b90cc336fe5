package interact

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chyrpal/chyrpal/internal/chyrp"
	"github.com/chyrpal/chyrpal/internal/session"
)

// Local preconditions. Both reject an action before any network call.
var (
	ErrSignInRequired = errors.New("please sign in")
	ErrEmptyMessage   = errors.New("comment message is empty")
)

// LikeStatus tracks where a post's like state sits in its lifecycle.
type LikeStatus int

const (
	LikeUnknown LikeStatus = iota
	Liked
	NotLiked
	LikePending
)

// LikeView is the like state the UI renders for one post.
type LikeView struct {
	Status LikeStatus
	Liked  bool
	Count  int
}

// likeEntry holds per-post like bookkeeping. respSeq counts applied
// server responses so a failed toggle knows whether fresher server
// truth arrived while it was in flight.
type likeEntry struct {
	liked   bool
	count   int
	known   bool
	pending int

	respSeq     uint64
	serverLiked bool
	serverCount int
	hasServer   bool
}

// Toggle is a begun like toggle awaiting its server round trip.
type Toggle struct {
	PostID int64

	prevLiked   bool
	prevCount   int
	respAtBegin uint64
}

// Controller mediates likes and comments for posts: optimistic local
// updates, server reconciliation, and rollback on failure. One
// controller serves the whole process; state is keyed by post id and
// safe for concurrent use from UI command goroutines.
type Controller struct {
	mu      sync.Mutex
	api     chyrp.API
	session *session.Store

	likes    map[int64]*likeEntry
	comments map[int64][]chyrp.Comment
}

// NewController builds an interaction controller over the given API and
// session store.
func NewController(api chyrp.API, sessions *session.Store) *Controller {
	return &Controller{
		api:      api,
		session:  sessions,
		likes:    make(map[int64]*likeEntry),
		comments: make(map[int64][]chyrp.Comment),
	}
}

// SeedPost records the like state carried by a fetched post, moving it
// from unknown to liked/not-liked.
func (c *Controller) SeedPost(post chyrp.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entryLocked(post.ID)
	entry.liked = post.LikedByMe
	entry.count = post.LikeCount
	entry.known = true
}

// LikeView returns the current like state for a post.
func (c *Controller) LikeView(postID int64) LikeView {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.likes[postID]
	if !ok || !entry.known {
		return LikeView{Status: LikeUnknown}
	}
	view := LikeView{Liked: entry.liked, Count: entry.count}
	switch {
	case entry.pending > 0:
		view.Status = LikePending
	case entry.liked:
		view.Status = Liked
	default:
		view.Status = NotLiked
	}
	return view
}

// BeginToggle applies the optimistic flip for a like toggle and returns
// the handle used to settle it. Anonymous sessions are rejected locally
// with ErrSignInRequired; no request is issued for them.
func (c *Controller) BeginToggle(postID int64) (Toggle, error) {
	if !c.session.Snapshot().Authenticated {
		return Toggle{}, ErrSignInRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.likes[postID]
	if !ok || !entry.known {
		return Toggle{}, errors.New("like state not loaded")
	}

	toggle := Toggle{
		PostID:      postID,
		prevLiked:   entry.liked,
		prevCount:   entry.count,
		respAtBegin: entry.respSeq,
	}
	if entry.liked {
		entry.liked = false
		entry.count--
	} else {
		entry.liked = true
		entry.count++
	}
	entry.pending++
	return toggle, nil
}

// ResolveToggle reconciles a toggle with the server's authoritative
// state. The server value wins even when it disagrees with the
// optimistic guess; the last response received is what sticks.
func (c *Controller) ResolveToggle(toggle Toggle, state chyrp.LikeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entryLocked(toggle.PostID)
	entry.pending--
	entry.liked = state.Liked
	entry.count = state.LikeCount
	entry.known = true
	entry.respSeq++
	entry.serverLiked = state.Liked
	entry.serverCount = state.LikeCount
	entry.hasServer = true
}

// FailToggle rolls a failed toggle back. The view returns to the state
// from immediately before the toggle, unless fresher server truth
// arrived while the request was in flight, in which case that truth
// stands.
func (c *Controller) FailToggle(toggle Toggle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entryLocked(toggle.PostID)
	entry.pending--
	if entry.respSeq > toggle.respAtBegin && entry.hasServer {
		entry.liked = entry.serverLiked
		entry.count = entry.serverCount
		return
	}
	entry.liked = toggle.prevLiked
	entry.count = toggle.prevCount
}

// CompleteToggle performs the server round trip for a begun toggle and
// settles it either way.
func (c *Controller) CompleteToggle(ctx context.Context, toggle Toggle) error {
	state, err := c.api.ToggleLike(ctx, toggle.PostID)
	if err != nil {
		c.FailToggle(toggle)
		return err
	}
	c.ResolveToggle(toggle, state)
	return nil
}

// ToggleLike runs the full begin/round-trip/settle sequence. The split
// Begin/Complete pair exists so a UI can show the optimistic state
// before scheduling the network work.
func (c *Controller) ToggleLike(ctx context.Context, postID int64) (LikeView, error) {
	toggle, err := c.BeginToggle(postID)
	if err != nil {
		return c.LikeView(postID), err
	}
	if err := c.CompleteToggle(ctx, toggle); err != nil {
		return c.LikeView(postID), err
	}
	return c.LikeView(postID), nil
}

// LoadComments fetches the comment list for a post. The server's order
// (sent_at ascending) is kept as-is. Safe to call again after any
// mutation for an authoritative refresh.
func (c *Controller) LoadComments(ctx context.Context, postID int64) ([]chyrp.Comment, error) {
	comments, err := c.api.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.comments[postID] = comments
	c.mu.Unlock()
	return c.Comments(postID), nil
}

// SubmitComment validates and posts a comment. Empty or whitespace-only
// messages and anonymous sessions are rejected locally with no network
// call. On success the server-created comment, with its assigned id and
// timestamp, is appended to the tail of the in-memory list.
func (c *Controller) SubmitComment(ctx context.Context, postID int64, message string) (*chyrp.Comment, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if !c.session.Snapshot().Authenticated {
		return nil, ErrSignInRequired
	}

	comment, err := c.api.AddComment(ctx, postID, trimmed)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.comments[postID] = append(c.comments[postID], *comment)
	c.mu.Unlock()
	return comment, nil
}

// Comments returns a copy of the in-memory comment list for a post.
func (c *Controller) Comments(postID int64) []chyrp.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	comments := c.comments[postID]
	out := make([]chyrp.Comment, len(comments))
	copy(out, comments)
	return out
}

func (c *Controller) entryLocked(postID int64) *likeEntry {
	entry, ok := c.likes[postID]
	if !ok {
		entry = &likeEntry{}
		c.likes[postID] = entry
	}
	return entry
}
