package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/tradewire/internal/classify"
	"github.com/matheuskafuri/tradewire/internal/metrics"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

// ClassifiedHeadline is a headline annotated for display. It is rebuilt on
// every pass and never stored.
type ClassifiedHeadline struct {
	news.Headline
	Category   string
	Sentiment  sentiment.Result
	Urgent     bool
	ObservedAt time.Time
}

// Filter selects which annotated headlines are kept.
type Filter struct {
	ActiveCategories []string
	OnlyUrgent       bool
}

func (f Filter) keep(h ClassifiedHeadline, active map[string]struct{}) bool {
	if _, ok := active[h.Category]; !ok {
		return false
	}
	return !f.OnlyUrgent || h.Urgent
}

// DefaultConcurrency bounds how many headlines are scored at once.
const DefaultConcurrency = 8

type Engine struct {
	rules       Rules
	analyzer    *sentiment.Analyzer
	now         func() time.Time
	concurrency int
}

type EngineOption func(*Engine)

// WithEngineClock sets the clock used for ObservedAt.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithConcurrency sets how many headlines are scored in parallel. Values
// below 1 score one at a time.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) { e.concurrency = n }
}

func NewEngine(rules Rules, analyzer *sentiment.Analyzer, opts ...EngineOption) *Engine {
	if analyzer == nil {
		analyzer = sentiment.NewAnalyzer(sentiment.NewVaderScorer())
	}
	e := &Engine{rules: rules, analyzer: analyzer, now: time.Now, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Annotate classifies a single headline.
func (e *Engine) Annotate(ctx context.Context, h news.Headline) ClassifiedHeadline {
	return ClassifiedHeadline{
		Headline:   h,
		Category:   classify.Classify(h.Title, e.rules.Table),
		Sentiment:  e.analyzer.Analyze(ctx, h.Title),
		Urgent:     classify.IsUrgent(h.Title, e.rules.Urgent),
		ObservedAt: e.now(),
	}
}

// Process annotates headlines and keeps the ones that pass f. Scoring runs
// in parallel but the output preserves input order. No active categories
// means no output.
func (e *Engine) Process(ctx context.Context, headlines []news.Headline, f Filter) []ClassifiedHeadline {
	active := make(map[string]struct{}, len(f.ActiveCategories))
	for _, c := range f.ActiveCategories {
		active[c] = struct{}{}
	}

	annotated := make([]ClassifiedHeadline, len(headlines))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, h := range headlines {
		i, h := i, h
		g.Go(func() error {
			annotated[i] = e.Annotate(ctx, h)
			return nil
		})
	}
	_ = g.Wait() // Annotate never fails

	out := make([]ClassifiedHeadline, 0, len(headlines))
	for _, ch := range annotated {
		metrics.HeadlinesProcessed.WithLabelValues(ch.Category, string(ch.Sentiment.Label)).Inc()
		if ch.Urgent {
			metrics.UrgentHeadlines.Inc()
		}

		if f.keep(ch, active) {
			out = append(out, ch)
		}
	}
	return out
}
