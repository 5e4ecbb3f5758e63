// Package dashboard renders the merged event view: the HTML dashboard page,
// its scatter timeline SVG, and a plain-text rendering for the CLI.
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/zanisimone/tapeboard/pkg/models"
	"github.com/zanisimone/tapeboard/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Scatter Timeline — Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// earningsColor marks earnings dots; other event types draw from the
// category palette in sorted type order so colors stay stable across
// renders.
const earningsColor = "#1f77b4"

var categoryPalette = []string{"#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2"}

const (
	minDotRadius = 4.0
	maxDotRadius = 14.0
)

// ScatterTimeline generates an SVG scatter plot of merged events: dates on
// the horizontal axis, one lane per symbol on the vertical axis, color by
// event type, dot area scaled by absolute size.
func ScatterTimeline(events []models.MergedEvent, cfg ChartConfig) string {
	if len(events) == 0 {
		return emptySVG(cfg, "No events to plot")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Events Over Time"
	}

	px, py, pw, ph := cfg.plotArea()

	// Symbol lanes, sorted for a stable layout.
	symbolSet := make(map[string]bool)
	for _, ev := range events {
		symbolSet[ev.Symbol] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	lane := make(map[string]int, len(symbols))
	for i, s := range symbols {
		lane[s] = i
	}
	laneH := float64(ph) / float64(len(symbols))

	// Date range with padding so edge dots are not clipped.
	minDate, maxDate := events[0].Date, events[0].Date
	for _, ev := range events {
		if ev.Date.Before(minDate) {
			minDate = ev.Date
		}
		if ev.Date.After(maxDate) {
			maxDate = ev.Date
		}
	}
	span := maxDate.Sub(minDate)
	if span < 24*time.Hour {
		span = 24 * time.Hour
	}
	pad := span / 20
	minDate = minDate.Add(-pad)
	maxDate = maxDate.Add(pad)
	span = maxDate.Sub(minDate)

	dateToX := func(d time.Time) float64 {
		ratio := float64(d.Sub(minDate)) / float64(span)
		return float64(px) + ratio*float64(pw)
	}

	// Dot area scales with absolute size relative to the largest event.
	maxSize := 0.0
	for _, ev := range events {
		if abs := math.Abs(ev.Size); abs > maxSize {
			maxSize = abs
		}
	}
	radius := func(size float64) float64 {
		if maxSize == 0 {
			return minDotRadius
		}
		r := minDotRadius + (maxDotRadius-minDotRadius)*math.Sqrt(math.Abs(size)/maxSize)
		return r
	}

	colors := typeColors(events)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))

	// Background
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))

	// Title
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Symbol lanes with labels
	for i, s := range symbols {
		y := float64(py) + laneH*float64(i) + laneH/2
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-8, y+4, cfg.FontSize, cfg.TextColor, escapeXML(s)))
	}

	// X-axis date ticks
	ticks := 6
	for i := 0; i <= ticks; i++ {
		d := minDate.Add(time.Duration(int64(span) * int64(i) / int64(ticks)))
		x := dateToX(d)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s"/>`,
			x, py+ph, x, py+ph+4, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			x, py+ph+18, cfg.FontSize-1, cfg.TextColor, d.Format("02 Jan")))
	}

	// Event dots with hover tooltips
	for _, ev := range events {
		x := dateToX(ev.Date)
		y := float64(py) + laneH*float64(lane[ev.Symbol]) + laneH/2
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.75" stroke="%s">`,
			x, y, radius(ev.Size), colors[ev.EventType], colors[ev.EventType]))
		sb.WriteString(fmt.Sprintf(`<title>%s</title>`, escapeXML(dotTooltip(ev))))
		sb.WriteString(`</circle>`)
	}

	// Legend
	lx := px + 10
	for i, eventType := range orderedTypes(colors) {
		ly := py + 10 + i*16
		sb.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="5" fill="%s"/>`,
			lx, ly, colors[eventType]))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			lx+10, ly+4, cfg.TextColor, escapeXML(eventType)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// typeColors assigns a color to every event type present: earnings keep a
// fixed color, categories take palette slots in sorted order.
func typeColors(events []models.MergedEvent) map[string]string {
	colors := make(map[string]string)
	var categories []string
	for _, ev := range events {
		if _, seen := colors[ev.EventType]; seen {
			continue
		}
		if ev.EventType == models.EventTypeEarnings {
			colors[ev.EventType] = earningsColor
			continue
		}
		colors[ev.EventType] = "" // assigned below in sorted order
		categories = append(categories, ev.EventType)
	}
	sort.Strings(categories)
	for i, c := range categories {
		colors[c] = categoryPalette[i%len(categoryPalette)]
	}
	return colors
}

// orderedTypes lists event types for the legend: earnings first, then
// categories alphabetically.
func orderedTypes(colors map[string]string) []string {
	var types []string
	for t := range colors {
		if t != models.EventTypeEarnings {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	if _, ok := colors[models.EventTypeEarnings]; ok {
		types = append([]string{models.EventTypeEarnings}, types...)
	}
	return types
}

// dotTooltip builds the hover text for one event dot.
func dotTooltip(ev models.MergedEvent) string {
	if ev.EventType == models.EventTypeEarnings {
		return fmt.Sprintf("%s earnings %s (%s)", ev.Symbol, utils.FormatDate(ev.Date), ev.Details)
	}
	return fmt.Sprintf("%s %s %s %s", ev.Symbol, ev.EventType, utils.FormatDate(ev.Date), utils.FormatCompact(ev.Size))
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
