package chyrp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// API defines the operations the controllers need from the backend.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	CurrentUser(ctx context.Context) (*Identity, error)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	ListPosts(ctx context.Context, query SearchQuery) ([]Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, draft PostDraft) error
	UpdatePost(ctx context.Context, id int64, patch PostPatch) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	ListComments(ctx context.Context, postID int64) ([]Comment, error)
	AddComment(ctx context.Context, postID int64, message string) (*Comment, error)
	ToggleLike(ctx context.Context, postID int64) (LikeState, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Chyrp HTTP API. It keeps the backend's session
// cookie in a jar and attaches the CSRF token to mutating requests.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string

	mu        sync.Mutex
	csrfToken string
}

const (
	defaultAPIBase   = "127.0.0.1:8000/api"
	defaultUserAgent = "chyrpal/0.1"
	requestTimeout   = 15 * time.Second

	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"

	maxAttachments = 3
	maxErrorBody   = 512
)

// NewClient builds a Client for the given base URL (host:port or full
// URL, with or without a path prefix).
func NewClient(apiBase string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// CurrentUser resolves the signed-in identity. A 401 surfaces as
// ErrUnauthorized; callers treat it as "anonymous", not a failure.
func (c *Client) CurrentUser(ctx context.Context) (*Identity, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var identity Identity
	if err := c.do(ctx, http.MethodGet, "/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Login establishes a session. The session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/register", body, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// SearchQuery configures /posts requests.
type SearchQuery struct {
	Search   string
	Page     int
	PageSize int
}

// ListPosts retrieves one page of the feed.
func (c *Client) ListPosts(ctx context.Context, query SearchQuery) ([]Post, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(query.PageSize))
	}
	rel := &url.URL{Path: "/posts", RawQuery: values.Encode()}
	var raw json.RawMessage
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &raw); err != nil {
		return nil, err
	}
	posts, err := decodePostList(raw)
	if err != nil {
		return nil, fmt.Errorf("decode post list: %w", err)
	}
	return posts, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost submits a new post as multipart form data.
func (c *Client) CreatePost(ctx context.Context, draft PostDraft) error {
	if len(draft.Attachments) > maxAttachments {
		return ErrTooManyAttachments
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := writeDraft(form, draft); err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	reqURL := c.endpoint(&url.URL{Path: "/posts/create"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	token, err := c.ensureCSRFToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set(csrfHeaderName, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return checkStatus(resp)
}

// UpdatePost patches an existing post and returns the updated copy.
func (c *Client) UpdatePost(ctx context.Context, id int64, patch PostPatch) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/posts/%d", id), patch, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

// ListCategories fetches the category choices for the composer.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListComments fetches the comments for a post in server order.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	values := url.Values{}
	values.Set("post", strconv.FormatInt(postID, 10))
	rel := &url.URL{Path: "/comments", RawQuery: values.Encode()}
	var comments []Comment
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment and returns the created record, including
// its server-assigned id and timestamp.
func (c *Client) AddComment(ctx context.Context, postID int64, message string) (*Comment, error) {
	body := map[string]any{"post": postID, "message": message}
	var comment Comment
	if err := c.do(ctx, http.MethodPost, "/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike flips the caller's like on a post and returns the
// authoritative state.
func (c *Client) ToggleLike(ctx context.Context, postID int64) (LikeState, error) {
	body := map[string]int64{"post_id": postID}
	var state LikeState
	if err := c.do(ctx, http.MethodPost, "/likes/toggle", body, &state); err != nil {
		return LikeState{}, err
	}
	return state, nil
}

// ensureCSRFToken returns the anti-forgery token for mutating requests,
// preferring the csrftoken cookie and falling back to GET /csrf.
func (c *Client) ensureCSRFToken(ctx context.Context) (string, error) {
	if token := c.cookieCSRFToken(); token != "" {
		return token, nil
	}
	c.mu.Lock()
	cached := c.csrfToken
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := c.doURL(ctx, http.MethodGet, &url.URL{Path: "/csrf"}, nil, &payload); err != nil {
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}
	c.mu.Lock()
	c.csrfToken = payload.CSRFToken
	c.mu.Unlock()
	return payload.CSRFToken, nil
}

func (c *Client) cookieCSRFToken() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

// endpoint joins rel onto the base URL, preserving any path prefix the
// base carries (for example /api).
func (c *Client) endpoint(rel *url.URL) *url.URL {
	joined := *c.baseURL
	joined.Path = c.baseURL.Path + rel.Path
	joined.RawQuery = rel.RawQuery
	return &joined
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.endpoint(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutating(method) {
		token, err := c.ensureCSRFToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("api returned status %d: %w", resp.StatusCode, ErrUnauthorized)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func writeDraft(form *multipart.Writer, draft PostDraft) error {
	if err := form.WriteField("title", draft.Title); err != nil {
		return err
	}
	if err := form.WriteField("content", draft.Content); err != nil {
		return err
	}
	if draft.CategoryID > 0 {
		if err := form.WriteField("category", strconv.FormatInt(draft.CategoryID, 10)); err != nil {
			return err
		}
	}
	if tags := NormalizeHashtags(draft.Hashtags); len(tags) > 0 {
		if err := form.WriteField("hashtags", strings.Join(tags, ",")); err != nil {
			return err
		}
	}
	if draft.IsDraft {
		if err := form.WriteField("is_draft", "true"); err != nil {
			return err
		}
	}
	if draft.Image != nil {
		if err := writeAttachment(form, "image", *draft.Image); err != nil {
			return err
		}
	}
	if draft.Video != nil {
		if err := writeAttachment(form, "video", *draft.Video); err != nil {
			return err
		}
	}
	for _, attachment := range draft.Attachments {
		if err := writeAttachment(form, "attachments", attachment); err != nil {
			return err
		}
	}
	return nil
}

func writeAttachment(form *multipart.Writer, field string, attachment Attachment) error {
	part, err := form.CreateFormFile(field, attachment.Name)
	if err != nil {
		return err
	}
	_, err = part.Write(attachment.Content)
	return err
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
