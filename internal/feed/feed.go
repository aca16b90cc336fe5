package feed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

const (
	// DebounceInterval is how long keystrokes settle before a server
	// query is issued.
	DebounceInterval = 300 * time.Millisecond

	// DefaultPageSize matches the backend's default page size.
	DefaultPageSize = 10
)

// Request describes one feed fetch. Gen ties the eventual response to
// the query that issued it; responses whose generation no longer
// matches the controller's are discarded.
type Request struct {
	Gen      uint64
	Query    string
	Page     int
	PageSize int
}

// Snapshot is the feed state the UI renders from.
type Snapshot struct {
	Query       string
	Items       []chyrp.Post
	Visible     []chyrp.Post
	HasMore     bool
	Loading     bool
	LoadingMore bool
	Loaded      bool
	Err         error
}

// Controller drives the explore/search view: debounced queries,
// paginated fetches, infinite-scroll appends, and discarding of stale
// responses. Methods are safe to call from UI command goroutines.
type Controller struct {
	mu  sync.Mutex
	api chyrp.API

	pageSize int

	input    string
	inputGen uint64

	gen         uint64
	query       string
	page        int
	items       []chyrp.Post
	hasMore     bool
	loading     bool
	loadingMore bool
	loaded      bool
	err         error
}

// NewController builds a feed controller over the given API.
func NewController(api chyrp.API, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{api: api, pageSize: pageSize}
}

// SetInput records a keystroke and returns a debounce token. The token
// is only honored by Commit while no newer keystroke has arrived, so a
// timer armed per keystroke issues at most one query per settled input.
func (c *Controller) SetInput(input string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = input
	c.inputGen++
	return c.inputGen
}

// Commit starts a new search for the settled input. It reports false
// when the token has been superseded by a newer keystroke. On success
// the page cursor resets and previously accumulated items are dropped
// before the new query's first page arrives.
func (c *Controller) Commit(token uint64) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.inputGen {
		return Request{}, false
	}
	return c.beginLocked(c.input), true
}

// Reload unconditionally restarts the current query from page one.
func (c *Controller) Reload() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked(c.query)
}

func (c *Controller) beginLocked(query string) Request {
	c.gen++
	c.query = query
	c.page = 0
	c.items = nil
	c.hasMore = false
	c.loading = true
	c.loadingMore = false
	c.loaded = false
	c.err = nil
	return Request{Gen: c.gen, Query: query, Page: 1, PageSize: c.pageSize}
}

// LoadMore requests the next page for the current query. It reports
// false when there is nothing further to load or a fetch is already in
// flight, so repeated scroll events near the end of the list cannot
// double-fire.
func (c *Controller) LoadMore() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded || !c.hasMore || c.loading || c.loadingMore {
		return Request{}, false
	}
	c.loadingMore = true
	return Request{Gen: c.gen, Query: c.query, Page: c.page + 1, PageSize: c.pageSize}, true
}

// Apply reconciles a fetch result with the controller state. Responses
// for a superseded generation are discarded; Apply reports whether the
// result was taken.
func (c *Controller) Apply(req Request, posts []chyrp.Post, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if req.Gen != c.gen {
		return false
	}
	if err != nil {
		if req.Page == 1 {
			c.loading = false
			c.items = nil
			c.loaded = true
		}
		c.loadingMore = false
		c.err = err
		return true
	}

	if req.Page == 1 {
		c.items = posts
	} else {
		c.items = append(c.items, posts...)
	}
	c.page = req.Page
	c.hasMore = len(posts) == req.PageSize
	c.loading = false
	c.loadingMore = false
	c.loaded = true
	c.err = nil
	return true
}

// Fetch executes req against the backend and applies the result. It
// reports whether the response was applied or discarded as stale.
func (c *Controller) Fetch(ctx context.Context, req Request) bool {
	posts, err := c.api.ListPosts(ctx, chyrp.SearchQuery{
		Search:   req.Query,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	return c.Apply(req, posts, err)
}

// Snapshot returns a copy of the current feed state. Visible holds the
// loaded items narrowed by the live input text; the filter only ever
// removes items the server returned, never adds.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]chyrp.Post, len(c.items))
	copy(items, c.items)
	return Snapshot{
		Query:       c.query,
		Items:       items,
		Visible:     Filter(items, c.input),
		HasMore:     c.hasMore,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Loaded:      c.loaded,
		Err:         c.err,
	}
}

// Input returns the raw, not yet debounced search text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Filter narrows posts to those whose title, content, username or
// display name contains the query, case-insensitively. An empty query
// keeps everything.
func Filter(posts []chyrp.Post, query string) []chyrp.Post {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return posts
	}
	out := make([]chyrp.Post, 0, len(posts))
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Content), needle) ||
			strings.Contains(strings.ToLower(post.Username), needle) ||
			strings.Contains(strings.ToLower(post.DisplayName), needle) {
			out = append(out, post)
		}
	}
	return out
}
