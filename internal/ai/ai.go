package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matheuskafuri/tradewire/internal/config"
)

// ErrNotConfigured is returned by New when no provider or key is set.
var ErrNotConfigured = errors.New("AI not configured")

// DefaultMemoSize bounds how many headline scores are remembered.
const DefaultMemoSize = 1024

const polarityPrompt = `Rate the market sentiment of this news headline on a scale from -1.0 (very bearish) to 1.0 (very bullish), where 0 is neutral.

Respond with ONLY the number, nothing else.

Headline: %s`

type provider interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Scorer asks an LLM for the polarity of a headline. Scores are memoized by
// text, so a window that is re-processed every refresh only costs one call
// per new headline.
type Scorer struct {
	provider provider

	mu       sync.Mutex
	memo     map[string]float64
	order    []string
	capacity int
}

type options struct {
	baseURL  string
	client   *http.Client
	memoSize int
}

type Option func(*options)

// WithBaseURL points the provider at a different API root.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

func WithMemoSize(n int) Option {
	return func(o *options) { o.memoSize = n }
}

// New creates a Scorer from the given AI config.
func New(cfg *config.AIConfig, apiKey string, opts ...Option) (*Scorer, error) {
	if cfg == nil || apiKey == "" {
		return nil, ErrNotConfigured
	}

	o := options{
		client:   &http.Client{Timeout: 30 * time.Second},
		memoSize: DefaultMemoSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var p provider
	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		baseURL := o.baseURL
		if baseURL == "" {
			baseURL = claudeBaseURL
		}
		p = &claudeProvider{apiKey: apiKey, model: model, baseURL: baseURL, client: o.client}
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		p = newOpenAIProvider(apiKey, model, o.baseURL, o.client)
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}

	if o.memoSize <= 0 {
		o.memoSize = DefaultMemoSize
	}
	return &Scorer{
		provider: p,
		memo:     make(map[string]float64),
		capacity: o.memoSize,
	}, nil
}

// Score returns the polarity of text in [-1, 1].
func (s *Scorer) Score(ctx context.Context, text string) (float64, error) {
	key := strings.TrimSpace(text)
	if p, ok := s.lookup(key); ok {
		return p, nil
	}

	reply, err := s.provider.complete(ctx, fmt.Sprintf(polarityPrompt, key))
	if err != nil {
		return 0, err
	}
	p, err := parsePolarity(reply)
	if err != nil {
		return 0, err
	}

	s.remember(key, p)
	return p, nil
}

func (s *Scorer) lookup(key string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.memo[key]
	return p, ok
}

// remember stores a score, evicting the oldest once full.
func (s *Scorer) remember(key string, p float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memo[key]; ok {
		return
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.memo, oldest)
	}
	s.memo[key] = p
	s.order = append(s.order, key)
}

// parsePolarity extracts the first number in an LLM reply and clamps it.
func parsePolarity(text string) (float64, error) {
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, "\"'`*.,;:()[]")
		if field == "" {
			continue
		}
		p, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		return math.Max(-1, math.Min(1, p)), nil
	}
	return 0, fmt.Errorf("no polarity in response %q", truncate(text, 80))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
