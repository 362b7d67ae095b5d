package sentiment

import (
	"context"
	"sync"

	"github.com/jonreiter/govader"
)

// VaderScorer is a lexical scorer that returns the VADER compound score.
type VaderScorer struct {
	once     sync.Once
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{}
}

func (v *VaderScorer) Score(_ context.Context, text string) (float64, error) {
	// The lexicon is loaded on first use; it takes a noticeable moment.
	v.once.Do(func() {
		v.analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	if text == "" {
		return 0, nil
	}
	return v.analyzer.PolarityScores(text).Compound, nil
}
