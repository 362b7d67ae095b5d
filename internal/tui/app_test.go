package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/tradewire/internal/classify"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

type stubCache struct {
	items       []news.Headline
	invalidated int
}

func (s *stubCache) Get(context.Context) ([]news.Headline, error) {
	return s.items, nil
}

func (s *stubCache) Invalidate() {
	s.invalidated++
}

func (s *stubCache) Peek() (news.Entry, bool) {
	return news.Entry{Items: s.items, FetchedAt: time.Now().Add(-10 * time.Second)}, true
}

func testApp(t *testing.T, titles ...string) (*App, *stubCache) {
	t.Helper()
	c := &stubCache{}
	for _, title := range titles {
		c.items = append(c.items, news.Headline{Title: title, URL: "https://example.com"})
	}
	rules := pipeline.NewRules(
		classify.NewTable([]classify.Category{
			{Name: "Macro/Political", Keywords: []string{"fed", "inflation"}},
			{Name: "Tech", Keywords: []string{"nvidia", "cyber"}},
		}),
		classify.NewUrgentKeywords("attack"),
	)
	analyzer := sentiment.NewAnalyzer(sentiment.ScorerFunc(func(context.Context, string) (float64, error) {
		return 0, nil
	}))
	svc := pipeline.NewService(c, pipeline.NewEngine(rules, analyzer))

	a := NewApp(RunOpts{Service: svc, Cache: c, Interval: time.Minute})
	a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return a, c
}

// load runs a synchronous load and feeds the result back into the model.
func load(a *App) {
	a.Update(a.loadCmd()())
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppLoadsAndRenders(t *testing.T) {
	a, _ := testApp(t, "Fed hikes again", "Nvidia beats", "Cyber attack on exchange", "Weather")
	load(a)

	// "Weather" is unclassified and Other is off by default.
	if len(a.items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(a.items))
	}
	view := a.View()
	for _, want := range []string{"3 Headlines Found", "Auto-refreshes every 60 seconds.", "Fed hikes again"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Weather") {
		t.Error("Other headline shown by default")
	}
	if a.fetchedAt.IsZero() {
		t.Error("expected fetchedAt from cache peek")
	}
}

func TestAppUrgentToggle(t *testing.T) {
	a, _ := testApp(t, "Nvidia beats", "Cyber attack on exchange")
	load(a)

	if _, cmd := a.Update(key("u")); cmd == nil {
		t.Fatal("expected reload command")
	}
	if !a.onlyUrgent {
		t.Fatal("expected urgent-only on")
	}
	load(a)
	if len(a.items) != 1 || a.items[0].Title != "Cyber attack on exchange" {
		t.Errorf("unexpected items: %+v", a.items)
	}
}

func TestAppEmptyFilter(t *testing.T) {
	a, _ := testApp(t, "Nvidia beats")
	load(a)

	a.Update(key("f"))
	if a.mode != modeFilter {
		t.Fatalf("expected filter mode, got %v", a.mode)
	}
	a.Update(key("a"))
	load(a)

	if len(a.items) != 0 {
		t.Fatalf("expected no items with no categories, got %d", len(a.items))
	}
	if !strings.Contains(a.View(), "No news matched your filters.") {
		t.Error("expected empty state in view")
	}
}

func TestAppNumberTogglesCategory(t *testing.T) {
	a, _ := testApp(t, "Fed hikes again", "Nvidia beats")
	load(a)

	a.Update(key("f"))
	a.Update(key("2")) // Tech
	load(a)

	if len(a.items) != 1 || a.items[0].Category != "Macro/Political" {
		t.Errorf("unexpected items: %+v", a.items)
	}
}

func TestAppOtherIsOptIn(t *testing.T) {
	a, _ := testApp(t, "Fed hikes again", "Weather")
	load(a)
	if len(a.items) != 1 {
		t.Fatalf("expected 1 item by default, got %d", len(a.items))
	}

	a.Update(key("f"))
	a.Update(key("3")) // Other
	load(a)
	if len(a.items) != 2 || a.items[1].Category != classify.Other {
		t.Errorf("unexpected items after enabling Other: %+v", a.items)
	}
}

func TestAppRefreshInvalidates(t *testing.T) {
	a, c := testApp(t, "Fed hikes again")
	load(a)

	a.Update(key("r"))
	if c.invalidated != 1 {
		t.Errorf("expected cache invalidated once, got %d", c.invalidated)
	}
}

func TestAppDropsStaleLoads(t *testing.T) {
	a, _ := testApp(t, "Fed hikes again", "Nvidia beats")
	stale := a.loadCmd()
	load(a)

	msg := stale().(headlinesLoadedMsg)
	msg.items = nil
	a.Update(msg)
	if len(a.items) != 2 {
		t.Errorf("stale load replaced items: %d", len(a.items))
	}
}

func TestAppTickReloads(t *testing.T) {
	a, _ := testApp(t, "Fed hikes again")
	load(a)

	_, cmd := a.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected tick to schedule work")
	}
	if !a.loading {
		t.Error("expected tick to start a load")
	}
}
