package positions

import (
	"sync"
	"time"

	"github.com/zanisimone/tapeboard/pkg/models"
)

// UploadReport summarizes the most recent upload.
type UploadReport struct {
	At       time.Time  `json:"at"`
	Accepted int        `json:"accepted"`
	Dropped  []RowError `json:"dropped,omitempty"`
}

// Store holds the session's positioning events in memory. Each upload
// replaces the previous set wholesale; nothing is persisted across restarts.
type Store struct {
	mu     sync.RWMutex
	events []models.PositioningEvent
	report UploadReport
	loaded bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{events: []models.PositioningEvent{}}
}

// Replace swaps in a freshly parsed event set and records the upload report.
func (s *Store) Replace(events []models.PositioningEvent, dropped []RowError) {
	if events == nil {
		events = []models.PositioningEvent{}
	}
	s.mu.Lock()
	s.events = events
	s.report = UploadReport{
		At:       time.Now(),
		Accepted: len(events),
		Dropped:  dropped,
	}
	s.loaded = true
	s.mu.Unlock()
}

// Snapshot returns a copy of the current events. Callers may mutate the
// returned slice freely.
func (s *Store) Snapshot() []models.PositioningEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PositioningEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Clear discards all events and the upload report.
func (s *Store) Clear() {
	s.mu.Lock()
	s.events = []models.PositioningEvent{}
	s.report = UploadReport{}
	s.loaded = false
	s.mu.Unlock()
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Report returns the most recent upload report. The second return is false
// when nothing has been uploaded since startup or the last clear.
func (s *Store) Report() (UploadReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.loaded
}
