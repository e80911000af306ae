package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetIssueComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octoinc/tracker/issues/42/comments" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "token secret" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"user":{"login":"alice"},"created_at":"2024-01-01T10:00:00Z","body":"first"},
			{"user":{"login":"statusbot"},"created_at":"2024-01-02T10:00:00Z","body":"bot"},
			{"user":{"login":"bob"},"created_at":"2024-01-03T10:00:00Z","body":"last"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("secret", []string{"statusbot"}).WithBaseURL(srv.URL)
	comments, err := c.GetIssueComments(context.Background(), "octoinc", "tracker", 42)
	if err != nil {
		t.Fatalf("GetIssueComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}

	count, last := c.CommentStats(comments)
	if count != 2 {
		t.Fatalf("ignored login should not count, expected 2, got %d", count)
	}
	want := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
	if last == nil || !last.Equal(want) {
		t.Fatalf("expected last comment at %v, got %v", want, last)
	}
}

func TestGetIssueCommentsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("", nil).WithBaseURL(srv.URL)
	comments, err := c.GetIssueComments(context.Background(), "gone", "repo", 1)
	if err != nil {
		t.Fatalf("not found should not be an error, got %v", err)
	}
	if comments != nil {
		t.Fatalf("expected nil comments, got %v", comments)
	}
}

func TestGetIssueCommentsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("", nil).WithBaseURL(srv.URL)
	if _, err := c.GetIssueComments(context.Background(), "x", "y", 1); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestCommentStatsEmpty(t *testing.T) {
	c := NewClient("", []string{"bot"})
	count, last := c.CommentStats(nil)
	if count != 0 || last != nil {
		t.Fatalf("expected zero stats, got %d, %v", count, last)
	}

	// all comments ignored collapses to zero
	comments := []Comment{{}}
	comments[0].User.Login = "bot"
	comments[0].CreatedAt = time.Now()
	count, last = c.CommentStats(comments)
	if count != 0 || last != nil {
		t.Fatalf("expected zero stats for all-ignored, got %d, %v", count, last)
	}
}

func TestParseIssueURL(t *testing.T) {
	owner, repo, num, err := ParseIssueURL("https://github.com/octoinc/tracker/issues/123")
	if err != nil {
		t.Fatalf("ParseIssueURL: %v", err)
	}
	if owner != "octoinc" || repo != "tracker" || num != 123 {
		t.Fatalf("unexpected parse result: %s/%s#%d", owner, repo, num)
	}

	bad := []string{
		"https://gitlab.com/a/b/issues/1",
		"https://github.com/onlyowner",
		"https://github.com/a/b/pulls/1",
		"https://github.com/a/b/issues/notanumber",
	}
	for _, u := range bad {
		if _, _, _, err := ParseIssueURL(u); err == nil {
			t.Fatalf("expected error for %q", u)
		}
	}
}
