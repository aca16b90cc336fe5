package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chyrpal/chyrpal/internal/chyrp"
)

func makePosts(start, count int) []chyrp.Post {
	posts := make([]chyrp.Post, count)
	for i := range posts {
		posts[i] = chyrp.Post{ID: int64(start + i), Title: fmt.Sprintf("post %d", start+i)}
	}
	return posts
}

func TestController_DebounceHonorsOnlyLatestKeystroke(t *testing.T) {
	c := NewController(nil, 10)

	tok1 := c.SetInput("c")
	tok2 := c.SetInput("ca")
	tok3 := c.SetInput("cats")

	if _, ok := c.Commit(tok1); ok {
		t.Fatal("Commit accepted a superseded keystroke token")
	}
	if _, ok := c.Commit(tok2); ok {
		t.Fatal("Commit accepted a superseded keystroke token")
	}
	req, ok := c.Commit(tok3)
	if !ok {
		t.Fatal("Commit rejected the latest keystroke token")
	}
	if req.Query != "cats" || req.Page != 1 {
		t.Fatalf("request = %#v, want query=cats page=1", req)
	}
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	c := NewController(nil, 10)

	reqA, _ := c.Commit(c.SetInput("aaa"))
	reqB, _ := c.Commit(c.SetInput("bbb"))

	// B's response lands first, then A's late response arrives.
	if !c.Apply(reqB, makePosts(100, 3), nil) {
		t.Fatal("current-generation response was discarded")
	}
	if c.Apply(reqA, makePosts(1, 10), nil) {
		t.Fatal("superseded response was applied")
	}

	snap := c.Snapshot()
	if len(snap.Items) != 3 {
		t.Fatalf("items = %d posts, want B's 3 posts", len(snap.Items))
	}
	if snap.Items[0].ID != 100 {
		t.Fatalf("items start at id %d, want 100", snap.Items[0].ID)
	}
	if snap.Query != "bbb" {
		t.Fatalf("query = %q, want bbb", snap.Query)
	}
}

func TestController_NewQueryClearsAccumulatedItems(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput("old"))
	c.Apply(req, makePosts(1, 10), nil)
	if snap := c.Snapshot(); len(snap.Items) != 10 {
		t.Fatalf("items = %d, want 10", len(snap.Items))
	}

	// Committing a new query drops the old results immediately, before
	// the new first page arrives.
	c.Commit(c.SetInput("new"))
	snap := c.Snapshot()
	if len(snap.Items) != 0 {
		t.Fatalf("items = %d after reset, want 0", len(snap.Items))
	}
	if !snap.Loading {
		t.Fatal("Loading = false, want true while first page is in flight")
	}
}

func TestController_PaginationTerminatesOnShortPage(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput("cats"))
	c.Apply(req, makePosts(1, 10), nil)
	if snap := c.Snapshot(); !snap.HasMore {
		t.Fatal("HasMore = false after a full page, want true")
	}

	more, ok := c.LoadMore()
	if !ok || more.Page != 2 {
		t.Fatalf("LoadMore = %#v %v, want page 2", more, ok)
	}
	c.Apply(more, makePosts(11, 4), nil)

	snap := c.Snapshot()
	if snap.HasMore {
		t.Fatal("HasMore = true after a short page, want false")
	}
	if len(snap.Items) != 14 {
		t.Fatalf("items = %d, want 14", len(snap.Items))
	}
	if _, ok := c.LoadMore(); ok {
		t.Fatal("LoadMore issued a request past the final page")
	}
}

func TestController_LoadMoreDoesNotDoubleFire(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput(""))
	c.Apply(req, makePosts(1, 10), nil)

	first, ok := c.LoadMore()
	if !ok {
		t.Fatal("LoadMore rejected with more pages available")
	}
	// Scroll events keep arriving while page 2 is in flight.
	if _, ok := c.LoadMore(); ok {
		t.Fatal("LoadMore double-fired while a fetch was in flight")
	}
	c.Apply(first, makePosts(11, 10), nil)
	if _, ok := c.LoadMore(); !ok {
		t.Fatal("LoadMore rejected after the in-flight fetch settled")
	}
}

func TestController_LoadMoreStaleAfterNewQuery(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput("cats"))
	c.Apply(req, makePosts(1, 10), nil)
	more, _ := c.LoadMore()

	// The query changes while page 2 is in flight; its response must
	// not be appended to the new query's results.
	fresh, _ := c.Commit(c.SetInput("dogs"))
	c.Apply(fresh, makePosts(200, 2), nil)
	if c.Apply(more, makePosts(11, 10), nil) {
		t.Fatal("stale page-2 response was applied after a query change")
	}
	if snap := c.Snapshot(); len(snap.Items) != 2 || snap.Items[0].ID != 200 {
		t.Fatalf("items = %#v, want only the new query's page", snap.Items)
	}
}

func TestController_FirstPageFailureIsTerminal(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput("cats"))
	c.Apply(req, nil, errors.New("connection refused"))

	snap := c.Snapshot()
	if snap.Loading {
		t.Fatal("Loading = true after failure, want terminal failed state")
	}
	if snap.Err == nil {
		t.Fatal("Err = nil, want recorded failure")
	}
	if len(snap.Items) != 0 {
		t.Fatalf("items = %d, want empty on failed load", len(snap.Items))
	}
}

func TestController_LoadMoreFailureKeepsLoadedItems(t *testing.T) {
	c := NewController(nil, 10)

	req, _ := c.Commit(c.SetInput(""))
	c.Apply(req, makePosts(1, 10), nil)
	more, _ := c.LoadMore()
	c.Apply(more, nil, errors.New("boom"))

	snap := c.Snapshot()
	if len(snap.Items) != 10 {
		t.Fatalf("items = %d after page-2 failure, want 10 kept", len(snap.Items))
	}
	if snap.Err == nil || snap.LoadingMore {
		t.Fatalf("snapshot = %#v, want error surfaced and no in-flight flag", snap)
	}
	// The user can retry the same page.
	if _, ok := c.LoadMore(); !ok {
		t.Fatal("LoadMore rejected a retry after failure")
	}
}

func TestController_FetchRunsAgainstAPI(t *testing.T) {
	api := &fakeAPI{
		listPosts: func(ctx context.Context, q chyrp.SearchQuery) ([]chyrp.Post, error) {
			if q.Search != "cats" || q.Page != 1 || q.PageSize != 10 {
				t.Fatalf("query = %#v, want cats page=1 size=10", q)
			}
			return makePosts(1, 4), nil
		},
	}
	c := NewController(api, 10)

	req, _ := c.Commit(c.SetInput("cats"))
	if !c.Fetch(context.Background(), req) {
		t.Fatal("Fetch discarded a current-generation response")
	}
	snap := c.Snapshot()
	if len(snap.Items) != 4 || snap.HasMore {
		t.Fatalf("snapshot = %#v, want 4 items and no more pages", snap)
	}
}

func TestFilter_NarrowsWithoutAdding(t *testing.T) {
	posts := []chyrp.Post{
		{ID: 1, Title: "Cats of Norway", Username: "amy"},
		{ID: 2, Title: "Dogs", Content: "also cats inside", Username: "bob"},
		{ID: 3, Title: "Birds", Username: "catherine"},
		{ID: 4, Title: "Fish", Username: "dan", DisplayName: "Dan"},
	}

	got := Filter(posts, "CAT")
	if len(got) != 3 {
		t.Fatalf("Filter matched %d posts, want 3", len(got))
	}
	for _, post := range got {
		if post.ID == 4 {
			t.Fatal("Filter added a non-matching post")
		}
	}
	if got := Filter(posts, "  "); len(got) != len(posts) {
		t.Fatalf("blank filter kept %d posts, want all %d", len(got), len(posts))
	}
}

type fakeAPI struct {
	chyrp.API
	listPosts func(ctx context.Context, q chyrp.SearchQuery) ([]chyrp.Post, error)
}

func (f *fakeAPI) ListPosts(ctx context.Context, q chyrp.SearchQuery) ([]chyrp.Post, error) {
	return f.listPosts(ctx, q)
}
