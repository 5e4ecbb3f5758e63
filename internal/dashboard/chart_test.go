package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/zanisimone/tapeboard/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleMerged() []models.MergedEvent {
	d := func(day int) time.Time {
		return time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC)
	}
	return []models.MergedEvent{
		{Symbol: "AAPL", EventType: "block_trade", Date: d(1), Size: 15000000, Details: "dark pool print"},
		{Symbol: "AAPL", EventType: models.EventTypeEarnings, Date: d(2), Size: 10, Details: "confirmed"},
		{Symbol: "NVDA", EventType: models.EventTypeEarnings, Date: d(20), Size: 10, Details: "estimated"},
		{Symbol: "NVDA", EventType: "options_sweep", Date: d(3), Size: -2500000, Details: "put sweep"},
	}
}

// ════════════════════════════════════════════════════════════════════
// Scatter Timeline Tests
// ════════════════════════════════════════════════════════════════════

func TestScatterTimeline_Basic(t *testing.T) {
	cfg := DefaultChartConfig()
	cfg.Title = "Test Timeline"

	svg := ScatterTimeline(sampleMerged(), cfg)
	if !strings.Contains(svg, "<svg") {
		t.Error("expected SVG output")
	}
	if !strings.Contains(svg, "Test Timeline") {
		t.Error("expected title in SVG")
	}
	if strings.Count(svg, "<circle") < 4 {
		t.Error("expected one circle per event plus legend dots")
	}
}

func TestScatterTimeline_Empty(t *testing.T) {
	svg := ScatterTimeline(nil, DefaultChartConfig())
	if !strings.Contains(svg, "No events to plot") {
		t.Error("expected empty message for nil events")
	}
}

func TestScatterTimeline_ZeroConfig(t *testing.T) {
	svg := ScatterTimeline(sampleMerged(), ChartConfig{})
	if !strings.Contains(svg, "<svg") {
		t.Error("expected SVG with zero config (auto-defaults)")
	}
	if !strings.Contains(svg, "Events Over Time") {
		t.Error("expected default title")
	}
}

func TestScatterTimeline_SymbolLanes(t *testing.T) {
	svg := ScatterTimeline(sampleMerged(), DefaultChartConfig())
	for _, sym := range []string{"AAPL", "NVDA"} {
		if !strings.Contains(svg, ">"+sym+"</text>") {
			t.Errorf("expected lane label for %s", sym)
		}
	}
}

func TestScatterTimeline_SingleDate(t *testing.T) {
	events := []models.MergedEvent{
		{Symbol: "MSFT", EventType: models.EventTypeEarnings, Date: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), Size: 10},
	}
	svg := ScatterTimeline(events, DefaultChartConfig())
	if !strings.Contains(svg, "<circle") {
		t.Error("expected a dot even when all events share one date")
	}
}

func TestScatterTimeline_Tooltips(t *testing.T) {
	svg := ScatterTimeline(sampleMerged(), DefaultChartConfig())
	if !strings.Contains(svg, "<title>AAPL earnings 2026-05-02 (confirmed)</title>") {
		t.Error("expected earnings tooltip with date and status")
	}
	if !strings.Contains(svg, "<title>AAPL block_trade 2026-05-01 $15M</title>") {
		t.Error("expected position tooltip with compact size")
	}
}

func TestScatterTimeline_RadiusScalesWithSize(t *testing.T) {
	svg := ScatterTimeline(sampleMerged(), DefaultChartConfig())
	// The $15M block trade is the largest event, so it gets the max radius.
	if !strings.Contains(svg, `r="14.0"`) {
		t.Error("expected max radius on the largest event")
	}
	// Earnings dots (synthetic size 10) shrink to the minimum.
	if !strings.Contains(svg, `r="4.0"`) {
		t.Error("expected min radius on the smallest event")
	}
}

func TestScatterTimeline_Legend(t *testing.T) {
	svg := ScatterTimeline(sampleMerged(), DefaultChartConfig())
	for _, label := range []string{"earnings", "block_trade", "options_sweep"} {
		if !strings.Contains(svg, ">"+label+"</text>") {
			t.Errorf("expected legend entry for %s", label)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Color Assignment Tests
// ════════════════════════════════════════════════════════════════════

func TestTypeColors_EarningsFixed(t *testing.T) {
	colors := typeColors(sampleMerged())
	if colors[models.EventTypeEarnings] != earningsColor {
		t.Errorf("expected earnings color %s, got %s", earningsColor, colors[models.EventTypeEarnings])
	}
}

func TestTypeColors_CategoriesSortedStable(t *testing.T) {
	colors := typeColors(sampleMerged())
	// block_trade sorts before options_sweep, so it takes the first slot
	// no matter which event appears first in the input.
	if colors["block_trade"] != categoryPalette[0] {
		t.Errorf("expected block_trade = %s, got %s", categoryPalette[0], colors["block_trade"])
	}
	if colors["options_sweep"] != categoryPalette[1] {
		t.Errorf("expected options_sweep = %s, got %s", categoryPalette[1], colors["options_sweep"])
	}

	reversed := sampleMerged()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	again := typeColors(reversed)
	for k, v := range colors {
		if again[k] != v {
			t.Errorf("color for %s changed with input order: %s vs %s", k, v, again[k])
		}
	}
}

func TestOrderedTypes_EarningsFirst(t *testing.T) {
	types := orderedTypes(typeColors(sampleMerged()))
	if len(types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(types))
	}
	if types[0] != models.EventTypeEarnings {
		t.Errorf("expected earnings first, got %s", types[0])
	}
	if types[1] != "block_trade" || types[2] != "options_sweep" {
		t.Errorf("expected categories alphabetical, got %v", types)
	}
}

// ════════════════════════════════════════════════════════════════════
// SVG Helper Tests
// ════════════════════════════════════════════════════════════════════

func TestDefaultChartConfig(t *testing.T) {
	cfg := DefaultChartConfig()
	if cfg.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Width)
	}
	if cfg.Height != 400 {
		t.Errorf("expected height 400, got %d", cfg.Height)
	}
	if cfg.BgColor != "#ffffff" {
		t.Errorf("expected white bg, got %s", cfg.BgColor)
	}
}

func TestPlotArea(t *testing.T) {
	cfg := DefaultChartConfig()
	x, y, w, h := cfg.plotArea()
	if x != cfg.MarginLeft {
		t.Errorf("expected x=%d, got %d", cfg.MarginLeft, x)
	}
	if y != cfg.MarginTop {
		t.Errorf("expected y=%d, got %d", cfg.MarginTop, y)
	}
	expectedW := cfg.Width - cfg.MarginLeft - cfg.MarginRight
	if w != expectedW {
		t.Errorf("expected w=%d, got %d", expectedW, w)
	}
	expectedH := cfg.Height - cfg.MarginTop - cfg.MarginBottom
	if h != expectedH {
		t.Errorf("expected h=%d, got %d", expectedH, h)
	}
}

func TestEmptySVG(t *testing.T) {
	svg := emptySVG(ChartConfig{}, "Test message")
	if !strings.Contains(svg, "Test message") {
		t.Error("expected message in empty SVG")
	}
	if !strings.Contains(svg, "<svg") {
		t.Error("expected valid SVG")
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"a & b", "a &amp; b"},
		{"<b>test</b>", "&lt;b&gt;test&lt;/b&gt;"},
		{`"quoted"`, "&quot;quoted&quot;"},
	}

	for _, tt := range tests {
		result := escapeXML(tt.input)
		if result != tt.expected {
			t.Errorf("escapeXML(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
