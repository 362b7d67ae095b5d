package news

import (
	"context"
	"time"
)

// Headline is a single item as received from a source. It is never mutated
// after the fetch that produced it.
type Headline struct {
	Title     string
	URL       string
	Source    string
	Published time.Time
}

// Entry is the single cached fetch result.
type Entry struct {
	Items     []Headline
	FetchedAt time.Time
}

// Source produces the current set of top headlines.
type Source interface {
	FetchTopHeadlines(ctx context.Context) ([]Headline, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Headline, error)

func (f SourceFunc) FetchTopHeadlines(ctx context.Context) ([]Headline, error) {
	return f(ctx)
}
