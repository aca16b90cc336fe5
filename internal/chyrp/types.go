package chyrp

import (
	"encoding/json"
	"strings"
	"time"
)

const chyrpTimestampLayout = "2006-01-02 15:04"

// Identity describes the currently signed-in user as returned by /me.
type Identity struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	ProfilePic  string `json:"profile_pic"`
}

// Name returns the preferred display string for the identity.
func (i Identity) Name() string {
	if strings.TrimSpace(i.DisplayName) != "" {
		return i.DisplayName
	}
	return i.Username
}

// Post mirrors the post payload returned by /posts and /posts/{id}.
// Media fields are independently optional; a post may carry an image,
// a video, both, or neither.
type Post struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Hashtags    []string `json:"hashtags"`
	Image       string   `json:"image"`
	Video       string   `json:"video"`
	Files       []string `json:"files"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	ProfilePic  string   `json:"profile_pic"`
	CreatedAt   string   `json:"created_at"`
	LikedByMe   bool     `json:"liked_by_me"`
	LikeCount   int      `json:"like_count"`
}

// AuthorName returns the display name of the post author, falling back
// to the username.
func (p Post) AuthorName() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.Username
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p Post) ParsedCreatedAt() time.Time {
	return parseTime(p.CreatedAt)
}

// PostListResponse mirrors the enveloped form of /posts. Some backend
// revisions return a bare array instead; the client accepts both.
type PostListResponse struct {
	Results []Post `json:"results"`
}

// Comment mirrors a comment payload. The user block is inlined by the
// server; the client never writes it.
type Comment struct {
	ID      int64       `json:"id"`
	Post    int64       `json:"post"`
	User    CommentUser `json:"user"`
	Message string      `json:"message"`
	SentAt  string      `json:"sent_at"`
}

// CommentUser is the inline author block attached to each comment.
type CommentUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	ProfilePic  string `json:"profile_pic"`
}

// Name returns the preferred display string for the comment author.
func (u CommentUser) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}

// ParsedSentAt returns the parsed SentAt timestamp.
func (c Comment) ParsedSentAt() time.Time {
	return parseTime(c.SentAt)
}

// LikeState mirrors the /likes/toggle response.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Category mirrors an entry of /categories.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Attachment is a file to include in a post creation request.
type Attachment struct {
	Name    string
	Content []byte
}

// PostDraft collects the fields of a post creation request. Hashtags
// are normalized before transmission; see NormalizeHashtags.
type PostDraft struct {
	Title       string
	Content     string
	CategoryID  int64
	Hashtags    []string
	Image       *Attachment
	Video       *Attachment
	Attachments []Attachment
	IsDraft     bool
}

// PostPatch carries the partial fields of a post update. Nil fields are
// omitted from the request body.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	IsDraft *bool   `json:"is_draft,omitempty"`
}

// NormalizeHashtags trims each tag, lowercases it, strips a leading '#'
// and drops empties, matching the server's ingestion rules.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), "#")
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// decodePostList accepts both the enveloped {results: [...]} form and a
// bare array.
func decodePostList(raw json.RawMessage) ([]Post, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var posts []Post
		if err := json.Unmarshal(raw, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	}
	var envelope PostListResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(chyrpTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
