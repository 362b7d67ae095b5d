package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/config"
	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

func sampleItems() []pipeline.ClassifiedHeadline {
	return []pipeline.ClassifiedHeadline{
		{
			Headline:  news.Headline{Title: "Fed cuts rates in surprise move", URL: "https://example.com/fed"},
			Category:  "Macro/Political",
			Sentiment: sentiment.Result{Label: sentiment.Bullish, Polarity: 0.4},
			Urgent:    true,
		},
		{
			Headline:  news.Headline{Title: "Chipmaker shares slide"},
			Category:  "Tech",
			Sentiment: sentiment.Result{Label: sentiment.Bearish, Polarity: -0.3},
		},
	}
}

func TestFormatHeadline(t *testing.T) {
	items := sampleItems()

	got := formatHeadline(items[0])
	if !strings.HasPrefix(got, "⚠️  🔺 Bullish") {
		t.Errorf("urgent line = %q, want urgent marker then bullish symbol", got)
	}
	if !strings.Contains(got, "[Macro/Political] Fed cuts rates") {
		t.Errorf("urgent line = %q, missing category and title", got)
	}
	if !strings.Contains(got, "\n    https://example.com/fed") {
		t.Errorf("urgent line = %q, missing indented URL", got)
	}

	got = formatHeadline(items[1])
	if strings.Contains(got, "⚠️") {
		t.Errorf("non-urgent line = %q, has urgent marker", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("line without URL = %q, want single line", got)
	}
}

func TestWriteTextPass(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	writeTextPass(&buf, at, sampleItems())
	out := buf.String()
	if !strings.Contains(out, "2 Headlines Found") {
		t.Errorf("output missing count header:\n%s", out)
	}
	if !strings.Contains(out, "2 headlines · 1 urgent") {
		t.Errorf("output missing summary line:\n%s", out)
	}

	buf.Reset()
	writeTextPass(&buf, at, nil)
	if !strings.Contains(buf.String(), "No news matched your filters.") {
		t.Errorf("empty pass = %q", buf.String())
	}
}

func TestWriteJSONPass(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := writeJSONPass(&buf, at, sampleItems()); err != nil {
		t.Fatalf("writeJSONPass: %v", err)
	}

	var got watchPass
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Count != 2 || len(got.Headlines) != 2 {
		t.Fatalf("count = %d, headlines = %d, want 2", got.Count, len(got.Headlines))
	}
	if got.Headlines[0].Sentiment != "Bullish" || !got.Headlines[0].Urgent {
		t.Errorf("first record = %+v", got.Headlines[0])
	}
	if !got.At.Equal(at) {
		t.Errorf("at = %v, want %v", got.At, at)
	}
}

func TestNewScorerFallsBackToVader(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"vader selected", &config.Config{Sentiment: config.SentimentConfig{Scorer: "vader"}}},
		{"ai without config", &config.Config{Sentiment: config.SentimentConfig{Scorer: "ai"}}},
		{"ai without key", &config.Config{
			Sentiment: config.SentimentConfig{Scorer: "ai"},
			AI:        &config.AIConfig{Provider: "claude"},
		}},
		{"ai unknown provider", &config.Config{
			Sentiment: config.SentimentConfig{Scorer: "ai"},
			AI:        &config.AIConfig{Provider: "gemini", APIKey: "k"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := newScorer(tt.cfg).(*sentiment.VaderScorer); !ok {
				t.Errorf("newScorer = %T, want *sentiment.VaderScorer", newScorer(tt.cfg))
			}
		})
	}
}

func TestSetupLogDestination(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *cobra.Command
		logFile bool
	}{
		{"dashboard logs to file", rootCmd, true},
		{"watch logs to stderr", watchCmd, false},
		{"serve logs to stderr", serveCmd, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Cleanup(xdg.Reload)
			t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
			xdg.Reload()

			flagConfig = filepath.Join(dir, "config.yaml")
			flagEnvFile = filepath.Join(dir, "missing.env")
			t.Cleanup(func() { flagConfig, flagEnvFile = "", ".env" })

			if err := setup(tt.cmd, nil); err != nil {
				t.Fatalf("setup: %v", err)
			}
			defer logger.Sync()

			if cfg == nil {
				t.Fatal("setup left cfg nil")
			}
			if _, err := os.Stat(flagConfig); err != nil {
				t.Errorf("default config not written: %v", err)
			}

			logPath := filepath.Join(dir, "state", "tradewire", "tradewire.log")
			if got := logPathFor(tt.cmd); tt.logFile != (got == logPath) {
				t.Errorf("logPathFor = %q, want file=%v", got, tt.logFile)
			}
			_, err := os.Stat(logPath)
			if tt.logFile && err != nil {
				t.Errorf("expected log file: %v", err)
			}
			if !tt.logFile && err == nil {
				t.Error("subcommand should not create the log file")
			}
		})
	}
}

func TestBuildStackSurvivesSnapshotFailure(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the cache dir should be makes the store fail.
	blocker := filepath.Join(dir, "cache")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CACHE_HOME", blocker)
	xdg.Reload()

	c, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if !c.SnapshotEnabled() {
		t.Fatal("snapshots should be on by default")
	}

	st := buildStack(c)
	if st.store != nil {
		t.Error("expected no store when the snapshot path is unusable")
	}
	if st.cache == nil || st.service == nil {
		t.Fatal("read path not wired")
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	off := false
	c.Snapshot = &off
	if st := buildStack(c); st.store != nil {
		t.Error("store opened with snapshots disabled")
	}
}
