package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
	}
	for _, tt := range tests {
		got := truncateStr(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateStrUTF8(t *testing.T) {
	got := truncateStr("日本語テスト", 5)
	want := "日本..."
	if got != want {
		t.Errorf("truncateStr(Japanese, 5) = %q, want %q", got, want)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-2 * 24 * time.Hour), "2d"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		got := relativeTime(tt.t)
		if got != tt.want {
			t.Errorf("relativeTime(%v ago) = %q, want %q", now.Sub(tt.t), got, tt.want)
		}
	}
}

func TestRelativeTimeOld(t *testing.T) {
	old := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := relativeTime(old)
	if got != "Jun 15" {
		t.Errorf("relativeTime(old date) = %q, want %q", got, "Jun 15")
	}
}

func TestRenderListEmpty(t *testing.T) {
	got := renderList(nil, 0, 12, 60)
	if !strings.Contains(got, "No news matched your filters.") {
		t.Errorf("expected empty state, got %q", got)
	}
}

func TestRenderListItem(t *testing.T) {
	h := pipeline.ClassifiedHeadline{
		Headline:  news.Headline{Title: "Exchange hit by cyber attack"},
		Category:  "Tech",
		Sentiment: sentiment.Result{Label: sentiment.Bearish, Polarity: -0.6},
		Urgent:    true,
	}
	got := renderListItem(h, true, 60)

	for _, want := range []string{"⚠️", "> Exchange hit by cyber attack", "🔻 Bearish", "Tech"} {
		if !strings.Contains(got, want) {
			t.Errorf("list item missing %q:\n%s", want, got)
		}
	}
}

func TestRenderListScrollsToCursor(t *testing.T) {
	items := make([]pipeline.ClassifiedHeadline, 10)
	for i := range items {
		items[i] = pipeline.ClassifiedHeadline{Headline: news.Headline{Title: string(rune('A' + i))}, Category: "Other"}
	}
	// Room for two items; cursor on the last one.
	got := renderList(items, 9, 6, 40)
	if !strings.Contains(got, "> J") {
		t.Errorf("expected cursor item to be visible:\n%s", got)
	}
	if strings.Contains(got, "  A") {
		t.Errorf("expected first item scrolled out:\n%s", got)
	}
}
