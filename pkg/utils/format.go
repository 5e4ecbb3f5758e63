// Package utils provides common utility functions for tapeboard.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatAmount formats a dollar amount with thousands separators
// ($12,345,678.90). Cents are always shown.
func FormatAmount(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	intPart := int64(amount)
	decPart := amount - float64(intPart)

	formatted := formatGroupedNumber(intPart)

	decStr := fmt.Sprintf("%.2f", decPart)
	formatted += decStr[1:] // skip the leading "0"

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatCompact formats a dollar amount in compact notation.
// e.g., 15000000 → "$15M", 2500 → "$2.5K"
func FormatCompact(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := "$"
	if negative {
		prefix = "-$"
	}

	switch {
	case amount >= 1e9:
		return fmt.Sprintf("%s%sB", prefix, formatWithDecimals(amount/1e9))
	case amount >= 1e6:
		return fmt.Sprintf("%s%sM", prefix, formatWithDecimals(amount/1e6))
	case amount >= 1e3:
		return fmt.Sprintf("%s%sK", prefix, formatWithDecimals(amount/1e3))
	default:
		return fmt.Sprintf("%s%s", prefix, formatWithDecimals(amount))
	}
}

// formatGroupedNumber formats an integer with standard 3-digit grouping.
func formatGroupedNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)

	result := ""
	for len(s) > 3 {
		result = "," + s[len(s)-3:] + result
		s = s[:len(s)-3]
	}
	return s + result
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
