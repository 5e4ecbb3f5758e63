package utils

import "strings"

// NormalizeSymbol canonicalizes a user-supplied ticker: trims whitespace,
// strips a leading "$" (as pasted from chat or social feeds) and uppercases.
// Returns "" for blank input.
func NormalizeSymbol(symbol string) string {
	s := strings.TrimSpace(symbol)
	s = strings.TrimPrefix(s, "$")
	return strings.ToUpper(strings.TrimSpace(s))
}

// ResolveSymbols splits a raw query string on commas, semicolons and
// whitespace, then normalizes and dedupes the parts. First occurrence wins,
// so the caller's ordering is preserved.
func ResolveSymbols(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return ResolveSymbolList(parts)
}

// ResolveSymbolList normalizes and dedupes an already-split symbol list,
// preserving first-seen order. Blank entries are dropped.
func ResolveSymbolList(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
