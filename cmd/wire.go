package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/tradewire/internal/ai"
	"github.com/matheuskafuri/tradewire/internal/cache"
	"github.com/matheuskafuri/tradewire/internal/config"
	"github.com/matheuskafuri/tradewire/internal/feed"
	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
	"github.com/matheuskafuri/tradewire/internal/store"
	"github.com/matheuskafuri/tradewire/internal/update"
)

// stack is the assembled read path shared by every command.
type stack struct {
	cache   *cache.RefreshCache
	service *pipeline.Service
	store   *store.Store
}

func (s *stack) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// buildStack never fails: a snapshot store that cannot be opened only costs
// the stats command its data.
func buildStack(cfg *config.Config) *stack {
	log := logger.Get()
	st := &stack{}

	var opts []cache.Option
	if cfg.SnapshotEnabled() {
		db, err := store.Open(config.SnapshotPath())
		if err != nil {
			log.Warnw("snapshot store unavailable", "error", err)
		} else {
			st.store = db
			opts = append(opts, cache.WithOnRefresh(func(e news.Entry) {
				if err := db.ReplaceSnapshot(e); err != nil {
					log.Warnw("saving snapshot failed", "error", err)
				}
			}))
		}
	}

	src := feed.NewRSSSource(cfg.EnabledSources(), cfg.GetMaxResults(),
		feed.WithUserAgent("tradewire/"+version))
	st.cache = cache.New(src, cfg.TTLDuration(), opts...)

	rules := pipeline.NewRules(cfg.CategoryTable(), cfg.Urgent())
	engine := pipeline.NewEngine(rules, sentiment.NewAnalyzer(newScorer(cfg)))
	st.service = pipeline.NewService(st.cache, engine)
	return st
}

func newScorer(cfg *config.Config) sentiment.Scorer {
	if cfg.Sentiment.Scorer != "ai" {
		return sentiment.NewVaderScorer()
	}
	s, err := ai.New(cfg.AI, cfg.AIKey())
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			logger.Get().Warnw("AI scorer unavailable, using VADER", "error", err)
		} else {
			logger.Get().Infow("AI scorer not configured, using VADER")
		}
		return sentiment.NewVaderScorer()
	}
	return s
}

// activeCategories resolves the --category flags, defaulting to all.
func activeCategories(svc *pipeline.Service) ([]string, error) {
	cats, err := svc.ResolveCategories(flagCategories)
	if err != nil {
		return nil, fmt.Errorf("invalid --category: %w", err)
	}
	return cats, nil
}

func checkForUpdate(cmd *cobra.Command) string {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if r := update.Check(ctx, version); r != nil {
		return r.LatestVersion
	}
	return ""
}
