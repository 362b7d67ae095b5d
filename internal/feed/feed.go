package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/matheuskafuri/tradewire/internal/config"
	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/news"
)

// DefaultMaxResults matches the size of a Google News top-stories page.
const DefaultMaxResults = 50

const fetchTimeout = 20 * time.Second

// RSSSource fetches top headlines from a fixed list of RSS/Atom feeds.
type RSSSource struct {
	sources    []config.Source
	maxResults int
	parser     *gofeed.Parser
	log        *logger.Logger
}

type Option func(*RSSSource)

// WithHTTPClient sets the client used to download feeds.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RSSSource) { s.parser.Client = c }
}

func WithUserAgent(ua string) Option {
	return func(s *RSSSource) { s.parser.UserAgent = ua }
}

func NewRSSSource(sources []config.Source, maxResults int, opts ...Option) *RSSSource {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: fetchTimeout}
	parser.UserAgent = "tradewire"

	s := &RSSSource{
		sources:    sources,
		maxResults: maxResults,
		parser:     parser,
		log:        logger.Get().With("component", "feed"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchTopHeadlines downloads every feed concurrently and returns their
// items in configuration order, capped at the configured maximum. Failing
// feeds are skipped; only when all of them fail is an error returned.
func (s *RSSSource) FetchTopHeadlines(ctx context.Context) ([]news.Headline, error) {
	if len(s.sources) == 0 {
		return nil, &news.FetchError{Err: news.ErrNoHeadlines}
	}

	results := make([][]news.Headline, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src config.Source) {
			defer wg.Done()
			results[i], errs[i] = s.fetch(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var (
		headlines []news.Headline
		failed    []error
	)
	for i := range s.sources {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			s.log.Warnw("feed failed", "source", s.sources[i].Name, "error", errs[i])
			continue
		}
		headlines = append(headlines, results[i]...)
	}

	if len(failed) == len(s.sources) {
		if len(failed) == 1 {
			return nil, failed[0]
		}
		return nil, &news.FetchError{Err: fmt.Errorf("%w: %w", news.ErrNoHeadlines, errors.Join(failed...))}
	}

	if len(headlines) > s.maxResults {
		headlines = headlines[:s.maxResults]
	}
	return headlines, nil
}

func (s *RSSSource) fetch(ctx context.Context, src config.Source) ([]news.Headline, error) {
	feed, err := s.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, &news.FetchError{Source: src.Name, Err: err}
	}

	headlines := make([]news.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := stripHTML(item.Title)
		if title == "" {
			continue
		}

		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		headlines = append(headlines, news.Headline{
			Title:     title,
			URL:       strings.TrimSpace(item.Link),
			Source:    src.Name,
			Published: pub,
		})
	}
	return headlines, nil
}

// stripHTML reduces a title to its text: tags are dropped, entities decoded
// and whitespace collapsed.
func stripHTML(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
