// Package news fetches recent headlines for watchlist symbols from RSS
// feeds.
package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/zanisimone/tapeboard/internal/infra"
	"github.com/zanisimone/tapeboard/pkg/models"
)

// defaultFeedURL is the per-symbol Yahoo Finance headline feed.
const defaultFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

const sourceName = "Yahoo Finance"

// Service fetches and caches per-symbol headlines.
type Service struct {
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
	feedURL string
}

// NewService creates a headline service. cacheTTL bounds how long a symbol
// list's headlines are reused before the feeds are polled again.
func NewService(cacheTTL time.Duration) *Service {
	return &Service{
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
		feedURL: defaultFeedURL,
	}
}

// Headlines returns the most recent headlines across the given symbols,
// newest first, truncated to limit. A failing feed costs only that symbol's
// rows; only context cancellation aborts the whole fetch.
func (s *Service) Headlines(ctx context.Context, symbols []string, limit int) ([]models.Headline, error) {
	if len(symbols) == 0 {
		return []models.Headline{}, nil
	}

	cacheKey := fmt.Sprintf("headlines:%s:%d", strings.Join(symbols, ","), limit)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]models.Headline), nil
	}

	var all []models.Headline
	for _, symbol := range symbols {
		items, err := s.fetchFeed(ctx, symbol)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Debug().Err(err).Str("symbol", symbol).Msg("Headline feed failed")
			continue
		}
		all = append(all, items...)
	}

	// Newest first; stable so equal timestamps keep feed order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []models.Headline{}
	}

	s.cache.Set(cacheKey, all)
	return all, nil
}

// fetchFeed parses one symbol's RSS feed into headlines.
func (s *Service) fetchFeed(ctx context.Context, symbol string) ([]models.Headline, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(s.feedURL, url.QueryEscape(symbol))
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", symbol, err)
	}

	headlines := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		h := models.Headline{
			Symbol: symbol,
			Title:  strings.TrimSpace(item.Title),
			URL:    item.Link,
			Source: sourceName,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = *item.PublishedParsed
		}
		headlines = append(headlines, h)
	}

	return headlines, nil
}
