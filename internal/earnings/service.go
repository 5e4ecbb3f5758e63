package earnings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zanisimone/tapeboard/internal/infra"
	"github.com/zanisimone/tapeboard/pkg/models"
)

// defaultMaxConcurrent bounds parallel provider lookups per fetch.
const defaultMaxConcurrent = 4

// Service coordinates earnings lookups for symbol lists. Lookups run
// concurrently, each symbol's failure stays isolated to its own row, and
// resolved outcomes are cached so repeated renders do not re-issue calls.
type Service struct {
	source        Source
	cache         *infra.Cache
	timeout       time.Duration
	maxConcurrent int
}

// outcome is a cached per-symbol result: either an event or a miss reason.
type outcome struct {
	event  models.EarningsEvent
	reason string // non-empty means miss
}

// NewService creates an earnings service around the given source. cacheTTL
// of zero or less caches outcomes for the lifetime of the process. timeout
// bounds each individual lookup; zero disables the per-lookup deadline.
func NewService(source Source, cacheTTL, timeout time.Duration) *Service {
	return &Service{
		source:        source,
		cache:         infra.NewCache(cacheTTL),
		timeout:       timeout,
		maxConcurrent: defaultMaxConcurrent,
	}
}

// Fetch looks up the next earnings date for every symbol. Events and misses
// are returned in input order regardless of lookup completion order, so a
// fetch over the same symbols is deterministic.
func (s *Service) Fetch(ctx context.Context, symbols []string) Result {
	result := Result{
		Events:  make([]models.EarningsEvent, 0, len(symbols)),
		Missing: make([]Miss, 0),
	}
	if len(symbols) == 0 {
		return result
	}

	outcomes := make(map[string]outcome, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, symbol := range symbols {
		g.Go(func() error {
			out := s.lookup(gctx, symbol)
			mu.Lock()
			outcomes[symbol] = out
			mu.Unlock()
			return nil // per-symbol failures never abort the batch
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()

	for _, symbol := range symbols {
		out := outcomes[symbol]
		if out.reason != "" {
			result.Missing = append(result.Missing, Miss{Symbol: symbol, Reason: out.reason})
			continue
		}
		result.Events = append(result.Events, out.event)
	}
	return result
}

// lookup resolves one symbol through the cache. Definitive outcomes (an
// event, or the provider reporting no data) are cached; transient failures
// are not, so the next render retries them.
func (s *Service) lookup(ctx context.Context, symbol string) outcome {
	cacheKey := "earnings:" + symbol
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(outcome)
	}

	lctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	event, err := s.source.LookupNextEarnings(lctx, symbol)
	switch {
	case err == nil:
		out := outcome{event: event}
		s.cache.Set(cacheKey, out)
		return out
	case errors.Is(err, ErrNoData):
		out := outcome{reason: "no data"}
		s.cache.Set(cacheKey, out)
		return out
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Str("symbol", symbol).Dur("timeout", s.timeout).Msg("Earnings lookup timed out")
		return outcome{reason: "timeout"}
	default:
		log.Warn().Err(err).Str("symbol", symbol).Msg("Earnings lookup failed")
		return outcome{reason: "lookup failed"}
	}
}
