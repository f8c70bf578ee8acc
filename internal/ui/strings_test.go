package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  hello  ", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"héllo wörld", 6, "hél..."},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
}

func TestFormatWhen(t *testing.T) {
	if got := formatWhen(time.Time{}, ""); got != "-" {
		t.Fatalf("formatWhen(zero, \"\") = %q, want -", got)
	}
	if got := formatWhen(time.Time{}, "someday"); got != "someday" {
		t.Fatalf("formatWhen raw = %q, want someday", got)
	}
	day := time.Date(2024, 9, 18, 0, 0, 0, 0, time.UTC)
	if got := formatWhen(day, ""); got != "Wed Sep 18 2024" {
		t.Fatalf("formatWhen(day) = %q", got)
	}
	at := time.Date(2024, 9, 18, 17, 5, 0, 0, time.UTC)
	if got := formatWhen(at, ""); got != "Wed Sep 18 17:05" {
		t.Fatalf("formatWhen(at) = %q", got)
	}
}
