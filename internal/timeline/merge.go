// Package timeline merges earnings and positioning events into one
// chronologically sorted view.
package timeline

import (
	"math"
	"sort"

	"github.com/zanisimone/tapeboard/pkg/models"
)

// EarningsDisplaySize is the synthetic size assigned to earnings markers so
// they render at a constant radius alongside notional-scaled positioning
// markers.
const EarningsDisplaySize = 10

// Merge unions earnings and positioning events into one sequence sorted by
// date, then symbol, then event type. Earnings events are always included;
// positioning events are included only when abs(notional) >= minNotional.
// The result depends only on the inputs, so identical inputs produce
// identical output.
func Merge(earnings []models.EarningsEvent, positions []models.PositioningEvent, minNotional float64) []models.MergedEvent {
	merged := make([]models.MergedEvent, 0, len(earnings)+len(positions))

	for _, e := range earnings {
		merged = append(merged, models.MergedEvent{
			Symbol:    e.Symbol,
			EventType: models.EventTypeEarnings,
			Date:      e.Date,
			Size:      EarningsDisplaySize,
			Details:   string(e.Status),
		})
	}

	for _, p := range positions {
		if math.Abs(p.Notional) < minNotional {
			continue
		}
		details := p.Notes
		if details == "" {
			details = p.Source
		}
		merged = append(merged, models.MergedEvent{
			Symbol:    p.Symbol,
			EventType: p.Category,
			Date:      p.Date,
			Size:      p.Notional,
			Details:   details,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.EventType < b.EventType
	})

	return merged
}
