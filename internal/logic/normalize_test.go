package logic

import "testing"

func TestNormalizeIssueURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://github.com/octoinc/tracker/issues/1", "https://github.com/octoinc/tracker/issues/1"},
		{"HTTPS://GitHub.com/octoinc/tracker/issues/1", "https://github.com/octoinc/tracker/issues/1"},
		{"https://github.com/octoinc/tracker/issues/1/", "https://github.com/octoinc/tracker/issues/1"},
		{"https://github.com/octoinc/tracker/issues/1?tab=comments", "https://github.com/octoinc/tracker/issues/1"},
		{"https://github.com/octoinc/tracker/issues/1#issuecomment-2", "https://github.com/octoinc/tracker/issues/1"},
		{"  https://github.com/octoinc/tracker/issues/1  ", "https://github.com/octoinc/tracker/issues/1"},
		{"", ""},
		{"not a url/", "not a url"},
	}
	for _, tc := range cases {
		if got := NormalizeIssueURL(tc.in); got != tc.want {
			t.Fatalf("NormalizeIssueURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIssueURLStableKey(t *testing.T) {
	// variants of the same issue must collapse to one link key
	variants := []string{
		"https://github.com/octoinc/tracker/issues/7",
		"https://github.com/octoinc/tracker/issues/7/",
		"https://GITHUB.com/octoinc/tracker/issues/7?x=1",
	}
	first := NormalizeIssueURL(variants[0])
	for _, v := range variants[1:] {
		if got := NormalizeIssueURL(v); got != first {
			t.Fatalf("variant %q normalized to %q, want %q", v, got, first)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"@alice", "alice"},
		{" bob ", "bob"},
		{"char lie", "charlie"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeUsername(tc.in); got != tc.want {
			t.Fatalf("normalizeUsername(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
