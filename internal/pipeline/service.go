package pipeline

import (
	"context"
	"fmt"

	"github.com/matheuskafuri/tradewire/internal/classify"
	"github.com/matheuskafuri/tradewire/internal/news"
)

// HeadlineCache is the read side of the refresh cache.
type HeadlineCache interface {
	Get(ctx context.Context) ([]news.Headline, error)
}

// Service is the read path used by every presenter.
type Service struct {
	cache  HeadlineCache
	engine *Engine
}

func NewService(cache HeadlineCache, engine *Engine) *Service {
	return &Service{cache: cache, engine: engine}
}

// GetFilteredHeadlines reads the current window from the cache and runs it
// through the engine. The error is non-nil only when nothing could be
// fetched and there was no earlier window to fall back to.
func (s *Service) GetFilteredHeadlines(ctx context.Context, activeCategories []string, onlyUrgent bool) ([]ClassifiedHeadline, error) {
	headlines, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading headlines: %w", err)
	}
	return s.engine.Process(ctx, headlines, Filter{
		ActiveCategories: activeCategories,
		OnlyUrgent:       onlyUrgent,
	}), nil
}

// Categories lists the selectable categories, Other last.
func (s *Service) Categories() []string {
	return s.engine.Rules().Categories()
}

// DefaultCategories lists the categories shown when none are selected.
func (s *Service) DefaultCategories() []string {
	return s.engine.Rules().DefaultCategories()
}

// ResolveCategories maps user-supplied names or aliases to canonical
// category names. No values selects the defaults.
func (s *Service) ResolveCategories(values []string) ([]string, error) {
	if len(values) == 0 {
		return s.DefaultCategories(), nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		name, err := classify.ResolveCategory(v, s.engine.Rules().Table)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
