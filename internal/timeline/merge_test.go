package timeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/zanisimone/tapeboard/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeEndToEndScenario(t *testing.T) {
	earnings := []models.EarningsEvent{
		{Symbol: "AAPL", Date: day(2026, 5, 2), Status: models.StatusConfirmed},
		{Symbol: "NVDA", Date: day(2026, 5, 21), Status: models.StatusEstimated},
	}
	positions := []models.PositioningEvent{
		{Symbol: "AAPL", Date: day(2026, 5, 1), Notional: 50000, Category: "sweep"},
		{Symbol: "NVDA", Date: day(2026, 5, 3), Notional: 2000000, Category: "dark-pool"},
	}

	merged := Merge(earnings, positions, 1000000)

	if len(merged) != 3 {
		t.Fatalf("merged = %d events, want 3 (both earnings + NVDA position)", len(merged))
	}
	// Chronological: NVDA position (5/3) sits between the earnings dates.
	if merged[0].Symbol != "AAPL" || merged[0].EventType != models.EventTypeEarnings {
		t.Errorf("merged[0] = %+v, want AAPL earnings", merged[0])
	}
	if merged[1].Symbol != "NVDA" || merged[1].EventType != "dark-pool" {
		t.Errorf("merged[1] = %+v, want NVDA dark-pool", merged[1])
	}
	if merged[2].Symbol != "NVDA" || merged[2].EventType != models.EventTypeEarnings {
		t.Errorf("merged[2] = %+v, want NVDA earnings", merged[2])
	}
	// The AAPL sweep is below threshold and must be gone.
	for _, ev := range merged {
		if ev.EventType == "sweep" {
			t.Errorf("below-threshold position leaked into output: %+v", ev)
		}
	}
}

func TestMergeThresholdUsesAbsoluteValue(t *testing.T) {
	positions := []models.PositioningEvent{
		{Symbol: "NVDA", Date: day(2026, 5, 3), Notional: -2000000, Category: "dark-pool"},
		{Symbol: "AAPL", Date: day(2026, 5, 1), Notional: 1000000, Category: "sweep"},
		{Symbol: "MSFT", Date: day(2026, 5, 2), Notional: 999999.99, Category: "sweep"},
	}

	merged := Merge(nil, positions, 1000000)

	if len(merged) != 2 {
		t.Fatalf("merged = %d events, want 2", len(merged))
	}
	// Exactly-at-threshold is included; just-below is not. The sign of the
	// notional never matters.
	if merged[0].Symbol != "AAPL" || merged[1].Symbol != "NVDA" {
		t.Errorf("unexpected events: %+v", merged)
	}
	if merged[1].Size != -2000000 {
		t.Errorf("Size should keep the original sign, got %f", merged[1].Size)
	}
}

func TestMergeEarningsAlwaysIncluded(t *testing.T) {
	earnings := []models.EarningsEvent{
		{Symbol: "AAPL", Date: day(2026, 5, 2), Status: models.StatusConfirmed},
	}

	merged := Merge(earnings, nil, 1e12)
	if len(merged) != 1 {
		t.Fatalf("merged = %d events, want the earnings row regardless of threshold", len(merged))
	}
	if merged[0].Size != EarningsDisplaySize {
		t.Errorf("earnings Size = %f, want constant %d", merged[0].Size, EarningsDisplaySize)
	}
	if merged[0].Details != "confirmed" {
		t.Errorf("earnings Details = %q, want status", merged[0].Details)
	}
}

func TestMergeTieBreak(t *testing.T) {
	date := day(2026, 5, 2)
	earnings := []models.EarningsEvent{
		{Symbol: "MSFT", Date: date, Status: models.StatusConfirmed},
		{Symbol: "AAPL", Date: date, Status: models.StatusConfirmed},
	}
	positions := []models.PositioningEvent{
		{Symbol: "AAPL", Date: date, Notional: 5000000, Category: "sweep"},
	}

	merged := Merge(earnings, positions, 0)

	if len(merged) != 3 {
		t.Fatalf("merged = %d events, want 3", len(merged))
	}
	// Same date: symbol order first, then event type within a symbol.
	if merged[0].Symbol != "AAPL" || merged[0].EventType != models.EventTypeEarnings {
		t.Errorf("merged[0] = %+v, want AAPL earnings", merged[0])
	}
	if merged[1].Symbol != "AAPL" || merged[1].EventType != "sweep" {
		t.Errorf("merged[1] = %+v, want AAPL sweep", merged[1])
	}
	if merged[2].Symbol != "MSFT" {
		t.Errorf("merged[2] = %+v, want MSFT earnings", merged[2])
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	merged := Merge(nil, nil, 1000000)
	if merged == nil {
		t.Fatal("Merge should return an empty slice, not nil")
	}
	if len(merged) != 0 {
		t.Fatalf("merged = %+v, want empty", merged)
	}
}

func TestMergeDeterministic(t *testing.T) {
	earnings := []models.EarningsEvent{
		{Symbol: "NVDA", Date: day(2026, 5, 21), Status: models.StatusEstimated},
		{Symbol: "AAPL", Date: day(2026, 5, 2), Status: models.StatusConfirmed},
	}
	positions := []models.PositioningEvent{
		{Symbol: "MSFT", Date: day(2026, 5, 2), Notional: 7000000, Category: "block"},
		{Symbol: "AAPL", Date: day(2026, 5, 2), Notional: 3000000, Category: "sweep"},
	}

	first := Merge(earnings, positions, 1000000)
	second := Merge(earnings, positions, 1000000)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different output:\n%+v\n%+v", first, second)
	}
}

func TestMergePositionDetails(t *testing.T) {
	positions := []models.PositioningEvent{
		{Symbol: "AAPL", Date: day(2026, 5, 1), Notional: 5000000, Category: "sweep", Source: "scanner", Notes: "opening print"},
		{Symbol: "MSFT", Date: day(2026, 5, 2), Notional: 5000000, Category: "sweep", Source: "scanner"},
	}

	merged := Merge(nil, positions, 0)
	if merged[0].Details != "opening print" {
		t.Errorf("Details = %q, want notes when present", merged[0].Details)
	}
	if merged[1].Details != "scanner" {
		t.Errorf("Details = %q, want source when notes empty", merged[1].Details)
	}
}
