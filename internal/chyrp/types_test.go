package chyrp

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeHashtags(t *testing.T) {
	got := NormalizeHashtags([]string{" #Cats ", "GO", "", "  ", "#", "#music"})
	want := []string{"cats", "go", "music"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeHashtags = %v, want %v", got, want)
	}
}

func TestIdentityName_FallsBackToUsername(t *testing.T) {
	id := Identity{Username: "amy"}
	if id.Name() != "amy" {
		t.Fatalf("Name() = %q, want amy", id.Name())
	}
	id.DisplayName = "Amy P"
	if id.Name() != "Amy P" {
		t.Fatalf("Name() = %q, want Amy P", id.Name())
	}
}

func TestPostAuthorName_FallsBackToUsername(t *testing.T) {
	post := Post{Username: "bob"}
	if post.AuthorName() != "bob" {
		t.Fatalf("AuthorName() = %q, want bob", post.AuthorName())
	}
	post.DisplayName = "Bob B"
	if post.AuthorName() != "Bob B" {
		t.Fatalf("AuthorName() = %q, want Bob B", post.AuthorName())
	}
}

func TestParseTime_AcceptsBackendLayouts(t *testing.T) {
	if got := parseTime("2025-03-01T10:00:00Z"); got.IsZero() {
		t.Fatal("parseTime rejected RFC3339")
	}
	got := parseTime("2025-03-01 10:30")
	want := time.Date(2025, 3, 1, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("parseTime = %v, want %v", got, want)
	}
	if !parseTime("").IsZero() {
		t.Fatal("parseTime(\"\") should be zero")
	}
	if !parseTime("not a time").IsZero() {
		t.Fatal("parseTime should reject garbage")
	}
}

func TestDecodePostList_BothShapes(t *testing.T) {
	posts, err := decodePostList([]byte(` {"results": [{"id": 1}]} `))
	if err != nil || len(posts) != 1 {
		t.Fatalf("enveloped decode = %v, %v", posts, err)
	}
	posts, err = decodePostList([]byte(` [{"id": 1}, {"id": 2}] `))
	if err != nil || len(posts) != 2 {
		t.Fatalf("bare decode = %v, %v", posts, err)
	}
	if _, err = decodePostList([]byte(`{broken`)); err == nil {
		t.Fatal("decodePostList accepted malformed JSON")
	}
}
