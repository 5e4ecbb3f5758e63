package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zanisimone/tapeboard/internal/earnings"
	"github.com/zanisimone/tapeboard/internal/positions"
	"github.com/zanisimone/tapeboard/internal/timeline"
	"github.com/zanisimone/tapeboard/pkg/models"
	"github.com/zanisimone/tapeboard/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Dashboard Renderer — Orchestrates merge + chart + template
// ════════════════════════════════════════════════════════════════════

// Inputs carries everything one dashboard render needs. Render is pure:
// the same Inputs always produce the same page, which is why Now is a
// field instead of a call to time.Now.
type Inputs struct {
	Now         time.Time
	Symbols     []string
	MinNotional float64

	Earnings []models.EarningsEvent
	Missing  []earnings.Miss

	Positions []models.PositioningEvent
	Upload    *positions.UploadReport

	Headlines []models.Headline

	Version string
}

// PageData is the template model passed to the dashboard template.
type PageData struct {
	// Header
	Title       string
	GeneratedAt string
	Version     string

	// Controls (round-tripped through the query form)
	SymbolsParam     string
	MinNotionalParam string
	MinNotionalText  string

	// Earnings table
	EarningsRows []EarningsRow

	// Positions / upload state
	HasPositions  bool
	UploadText    string
	DroppedRows   []DroppedRow
	PositionCount int

	// Merged timeline
	TimelineRows []TimelineRow
	ChartSVG     template.HTML

	// News
	ShowNews  bool
	Headlines []HeadlineRow
}

// EarningsRow is a flattened earnings lookup result for template rendering.
type EarningsRow struct {
	Symbol   string
	DateText string
	InText   string
	Status   string
	Class    string // CSS class: soon, upcoming, missing
	Reason   string // set only for misses
}

// TimelineRow is a flattened merged event for template rendering.
type TimelineRow struct {
	DateText  string
	Symbol    string
	EventType string
	SizeText  string
	Details   string
	Class     string // CSS class: earnings, position
}

// DroppedRow reports one rejected CSV row.
type DroppedRow struct {
	Line   int
	Reason string
}

// HeadlineRow is a flattened headline for template rendering.
type HeadlineRow struct {
	Symbol        string
	Title         string
	URL           string
	Source        string
	PublishedText string
}

// Render produces the full dashboard HTML page.
func Render(in Inputs) (string, error) {
	data := buildPageData(in)

	tmpl, err := template.New("dashboard").Parse(dashboardTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal — Build template data
// ════════════════════════════════════════════════════════════════════

func buildPageData(in Inputs) PageData {
	merged := timeline.Merge(in.Earnings, in.Positions, in.MinNotional)

	data := PageData{
		Title:            "Tapeboard",
		GeneratedAt:      in.Now.UTC().Format("02 Jan 2006, 15:04 UTC"),
		Version:          in.Version,
		SymbolsParam:     strings.Join(in.Symbols, ","),
		MinNotionalParam: strconv.FormatFloat(in.MinNotional, 'f', -1, 64),
		MinNotionalText:  utils.FormatCompact(in.MinNotional),
		EarningsRows:     buildEarningsRows(in),
		HasPositions:     len(in.Positions) > 0,
		PositionCount:    len(in.Positions),
		TimelineRows:     buildTimelineRows(merged),
		ShowNews:         len(in.Headlines) > 0,
		Headlines:        buildHeadlineRows(in.Headlines),
	}

	if in.Upload != nil {
		data.UploadText = fmt.Sprintf("%d positions loaded at %s",
			in.Upload.Accepted, in.Upload.At.UTC().Format("15:04:05 UTC"))
		for _, d := range in.Upload.Dropped {
			data.DroppedRows = append(data.DroppedRows, DroppedRow{Line: d.Line, Reason: d.Reason})
		}
	}

	data.ChartSVG = template.HTML(ScatterTimeline(merged, DefaultChartConfig()))

	return data
}

// buildEarningsRows flattens lookups soonest-first, with misses at the
// bottom so the table never silently shrinks.
func buildEarningsRows(in Inputs) []EarningsRow {
	events := make([]models.EarningsEvent, len(in.Earnings))
	copy(events, in.Earnings)
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Symbol < events[j].Symbol
	})

	rows := make([]EarningsRow, 0, len(events)+len(in.Missing))
	for _, ev := range events {
		days := utils.DaysUntil(in.Now, ev.Date)
		rows = append(rows, EarningsRow{
			Symbol:   ev.Symbol,
			DateText: utils.FormatDate(ev.Date),
			InText:   daysText(days),
			Status:   string(ev.Status),
			Class:    proximityClass(days),
		})
	}
	for _, m := range in.Missing {
		rows = append(rows, EarningsRow{
			Symbol: m.Symbol,
			Class:  "missing",
			Reason: m.Reason,
		})
	}
	return rows
}

func daysText(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days > 1:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd ago", -days)
	}
}

func proximityClass(days int) string {
	switch {
	case days >= 0 && days <= 7:
		return "soon"
	case days > 7 && days <= 14:
		return "upcoming"
	default:
		return ""
	}
}

func buildTimelineRows(merged []models.MergedEvent) []TimelineRow {
	rows := make([]TimelineRow, len(merged))
	for i, ev := range merged {
		row := TimelineRow{
			DateText:  utils.FormatDate(ev.Date),
			Symbol:    ev.Symbol,
			EventType: ev.EventType,
			Details:   ev.Details,
			Class:     "position",
		}
		if ev.EventType == models.EventTypeEarnings {
			row.Class = "earnings"
		} else {
			row.SizeText = utils.FormatCompact(ev.Size)
		}
		rows[i] = row
	}
	return rows
}

func buildHeadlineRows(headlines []models.Headline) []HeadlineRow {
	rows := make([]HeadlineRow, len(headlines))
	for i, h := range headlines {
		rows[i] = HeadlineRow{
			Symbol:        h.Symbol,
			Title:         h.Title,
			URL:           h.URL,
			Source:        h.Source,
			PublishedText: h.PublishedAt.UTC().Format("02 Jan 15:04"),
		}
	}
	return rows
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// RenderText produces a terminal-friendly rendering of the same view the
// HTML dashboard shows.
func RenderText(in Inputs) string {
	data := buildPageData(in)

	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  TAPEBOARD — %s\n", data.GeneratedAt))
	sb.WriteString(fmt.Sprintf("  Symbols: %s | Min notional: %s\n", data.SymbolsParam, data.MinNotionalText))
	sb.WriteString(line + "\n")

	sb.WriteString("\n  ■ UPCOMING EARNINGS\n")
	if len(data.EarningsRows) == 0 {
		sb.WriteString("    (none)\n")
	}
	for _, r := range data.EarningsRows {
		if r.Class == "missing" {
			sb.WriteString(fmt.Sprintf("    %-8s %s\n", r.Symbol, r.Reason))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %-8s %-12s %-10s %s\n", r.Symbol, r.DateText, r.InText, r.Status))
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ MERGED TIMELINE\n")
	if len(data.TimelineRows) == 0 {
		sb.WriteString("    (no events)\n")
	}
	for _, r := range data.TimelineRows {
		size := r.SizeText
		if size == "" {
			size = "-"
		}
		sb.WriteString(fmt.Sprintf("    %-12s %-8s %-14s %-10s %s\n", r.DateText, r.Symbol, r.EventType, size, r.Details))
	}
	sb.WriteString(thinLine + "\n")

	if data.UploadText != "" {
		sb.WriteString(fmt.Sprintf("\n  Positions: %s\n", data.UploadText))
		for _, d := range data.DroppedRows {
			sb.WriteString(fmt.Sprintf("    dropped line %d: %s\n", d.Line, d.Reason))
		}
	}

	if data.ShowNews {
		sb.WriteString("\n  ■ HEADLINES\n")
		for _, h := range data.Headlines {
			sb.WriteString(fmt.Sprintf("    [%s] %s (%s)\n", h.Symbol, h.Title, h.PublishedText))
		}
	}

	sb.WriteString("\n" + line + "\n")
	return sb.String()
}
