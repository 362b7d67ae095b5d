package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/matheuskafuri/tradewire/internal/logger"
)

// Label is the market reading of a headline.
type Label string

const (
	Bullish Label = "Bullish"
	Bearish Label = "Bearish"
	Neutral Label = "Neutral"
)

// Threshold is the polarity magnitude a score must exceed to leave Neutral.
const Threshold = 0.1

// Symbol returns the marker shown next to the label.
func (l Label) Symbol() string {
	switch l {
	case Bullish:
		return "🔺"
	case Bearish:
		return "🔻"
	default:
		return "⚪"
	}
}

// Color returns the display colour name for the label.
func (l Label) Color() string {
	switch l {
	case Bullish:
		return "green"
	case Bearish:
		return "red"
	default:
		return "gray"
	}
}

// Result pairs a label with the raw polarity it was derived from.
type Result struct {
	Label    Label
	Polarity float64
}

// Scorer returns a polarity in [-1.0, 1.0] for text.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, text string) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// Classify maps a polarity to a label. Both bounds are strict, so exactly
// ±Threshold is Neutral.
func Classify(polarity float64) Label {
	switch {
	case polarity > Threshold:
		return Bullish
	case polarity < -Threshold:
		return Bearish
	default:
		return Neutral
	}
}

// Analyzer turns text into a Result using a Scorer. Scorer failures never
// reach the caller: they degrade to Neutral with polarity 0.
type Analyzer struct {
	scorer Scorer
	log    *logger.Logger
}

func NewAnalyzer(scorer Scorer) *Analyzer {
	return &Analyzer{scorer: scorer, log: logger.Get().With("component", "sentiment")}
}

// Analyze scores text and applies the threshold policy.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" || a.scorer == nil {
		return Result{Label: Neutral}
	}
	polarity, err := a.score(ctx, text)
	if err != nil {
		a.log.Debugw("scoring failed, treating as neutral", "error", err)
		return Result{Label: Neutral}
	}
	polarity = clamp(polarity)
	return Result{Label: Classify(polarity), Polarity: polarity}
}

func (a *Analyzer) score(ctx context.Context, text string) (polarity float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panicked: %v", r)
		}
	}()
	return a.scorer.Score(ctx, text)
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 0
	case p > 1:
		return 1
	case p < -1:
		return -1
	default:
		return p
	}
}
