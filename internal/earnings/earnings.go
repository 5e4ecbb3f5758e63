// Package earnings looks up upcoming earnings dates for a set of symbols.
// A Source performs the per-symbol provider lookup; the Service fans lookups
// out concurrently, isolates per-symbol failures, and caches results for the
// lifetime of the process.
package earnings

import (
	"context"
	"errors"

	"github.com/zanisimone/tapeboard/pkg/models"
)

// Source performs a single next-earnings lookup against a data provider.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name returns the human-readable name of this source.
	Name() string

	// LookupNextEarnings returns the next scheduled earnings event for the
	// symbol. It returns ErrNoData when the provider has no upcoming date;
	// that is an expected outcome, not a failure.
	LookupNextEarnings(ctx context.Context, symbol string) (models.EarningsEvent, error)
}

// ErrNoData is returned when the provider has no upcoming earnings date for
// a symbol. Ambiguous or partial provider dates are reported the same way
// rather than guessing a default.
var ErrNoData = errors.New("no earnings data")

// Miss records a symbol that produced no earnings event and why.
type Miss struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Result is the outcome of fetching a symbol list: events for the symbols
// that resolved, misses for the ones that did not. Both slices follow the
// input symbol order.
type Result struct {
	Events  []models.EarningsEvent `json:"events"`
	Missing []Miss                 `json:"missing"`
}
