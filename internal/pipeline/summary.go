package pipeline

import (
	"fmt"
	"strings"

	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

// Summary counts a filtered window for status lines.
type Summary struct {
	Total      int
	Urgent     int
	ByCategory map[string]int
	ByLabel    map[sentiment.Label]int
}

func Summarize(items []ClassifiedHeadline) Summary {
	s := Summary{
		Total:      len(items),
		ByCategory: make(map[string]int),
		ByLabel:    make(map[sentiment.Label]int),
	}
	for _, it := range items {
		s.ByCategory[it.Category]++
		s.ByLabel[it.Sentiment.Label]++
		if it.Urgent {
			s.Urgent++
		}
	}
	return s
}

// String renders e.g. "12 headlines · 3 urgent · 🔺4 🔻2 ⚪6".
func (s Summary) String() string {
	var b strings.Builder
	noun := "headlines"
	if s.Total == 1 {
		noun = "headline"
	}
	fmt.Fprintf(&b, "%d %s", s.Total, noun)
	if s.Urgent > 0 {
		fmt.Fprintf(&b, " · %d urgent", s.Urgent)
	}
	if s.Total > 0 {
		b.WriteString(" ·")
		for _, l := range []sentiment.Label{sentiment.Bullish, sentiment.Bearish, sentiment.Neutral} {
			fmt.Fprintf(&b, " %s%d", l.Symbol(), s.ByLabel[l])
		}
	}
	return b.String()
}
