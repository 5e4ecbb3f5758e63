// Package positions parses and holds user-uploaded positioning records:
// block trades, options sweeps, institutional flow changes.
package positions

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zanisimone/tapeboard/pkg/models"
	"github.com/zanisimone/tapeboard/pkg/utils"
)

// RowError describes one upload row that was dropped and why. Line numbers
// are 1-based and include the header line.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// columnAliases maps accepted header names to canonical column keys.
// Header matching is case-insensitive.
var columnAliases = map[string]string{
	"symbol":   "symbol",
	"ticker":   "symbol",
	"date":     "date",
	"notional": "notional",
	"amount":   "notional",
	"category": "category",
	"type":     "category",
	"source":   "source",
	"notes":    "notes",
}

var requiredColumns = []string{"symbol", "date", "notional", "category"}

// ParseCSV reads an uploaded positioning file. Malformed rows are dropped
// and reported, never fatal: a bad row costs that row only. A missing
// required column fails the whole file since no row can be interpreted.
// Empty input yields an empty event set.
func ParseCSV(r io.Reader) ([]models.PositioningEvent, []RowError) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.PositioningEvent{}, nil
	}
	if err != nil {
		return nil, []RowError{{Line: 1, Reason: fmt.Sprintf("unreadable header: %v", err)}}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, []RowError{{Line: 1, Reason: fmt.Sprintf("missing column %q", col)}}
		}
	}

	var events []models.PositioningEvent
	var dropped []RowError
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			dropped = append(dropped, RowError{Line: line, Reason: "unreadable row"})
			continue
		}

		event, reason := parseRow(record, columns)
		if reason != "" {
			dropped = append(dropped, RowError{Line: line, Reason: reason})
			continue
		}
		events = append(events, event)
	}

	if events == nil {
		events = []models.PositioningEvent{}
	}
	return events, dropped
}

// parseRow converts one CSV record. A non-empty reason means the row is
// dropped.
func parseRow(record []string, columns map[string]int) (models.PositioningEvent, string) {
	symbol := utils.NormalizeSymbol(field(record, columns, "symbol"))
	if symbol == "" {
		return models.PositioningEvent{}, "missing symbol"
	}

	rawDate := strings.TrimSpace(field(record, columns, "date"))
	if rawDate == "" {
		return models.PositioningEvent{}, "missing date"
	}
	date, err := utils.ParseDate(rawDate)
	if err != nil {
		return models.PositioningEvent{}, fmt.Sprintf("unparseable date %q", rawDate)
	}

	rawNotional := strings.TrimSpace(field(record, columns, "notional"))
	if rawNotional == "" {
		return models.PositioningEvent{}, "missing notional"
	}
	notional, err := strconv.ParseFloat(sanitizeNumber(rawNotional), 64)
	if err != nil {
		return models.PositioningEvent{}, fmt.Sprintf("non-numeric notional %q", rawNotional)
	}

	category := strings.TrimSpace(field(record, columns, "category"))
	if category == "" {
		return models.PositioningEvent{}, "missing category"
	}

	return models.PositioningEvent{
		Symbol:   symbol,
		Date:     date,
		Notional: notional,
		Category: category,
		Source:   strings.TrimSpace(field(record, columns, "source")),
		Notes:    strings.TrimSpace(field(record, columns, "notes")),
	}, ""
}

// field returns the record value for a column, or "" when the column is
// absent or the row is too short.
func field(record []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// sanitizeNumber strips currency symbols and grouping separators so values
// pasted from spreadsheets ("$1,500,000") still parse.
func sanitizeNumber(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	return strings.TrimSpace(s)
}
