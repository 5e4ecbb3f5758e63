package models

import "time"

// EarningsStatus indicates how reliable a reported earnings date is.
type EarningsStatus string

const (
	// StatusConfirmed means the company has announced the date.
	StatusConfirmed EarningsStatus = "confirmed"
	// StatusEstimated means the date is a provider estimate or a window.
	StatusEstimated EarningsStatus = "estimated"
)

// EventTypeEarnings is the merged-event type for earnings dates. Positioning
// events carry their category as the event type instead.
const EventTypeEarnings = "earnings"

// EarningsEvent is the next scheduled earnings date for a symbol.
type EarningsEvent struct {
	Symbol string         `json:"symbol"`
	Date   time.Time      `json:"date"`
	Status EarningsStatus `json:"status"`
}

// PositioningEvent is a single large-flow record from an uploaded CSV,
// such as a block trade or an unusual options sweep.
type PositioningEvent struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Notional float64   `json:"notional"`
	Category string    `json:"category"`
	Source   string    `json:"source,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// MergedEvent is a single row on the unified timeline. Earnings and
// positioning events are normalized into this shape before sorting.
type MergedEvent struct {
	Symbol    string    `json:"symbol"`
	EventType string    `json:"event_type"`
	Date      time.Time `json:"date"`
	Size      float64   `json:"size"`
	Details   string    `json:"details,omitempty"`
}

// Headline is a single news item for a symbol.
type Headline struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
