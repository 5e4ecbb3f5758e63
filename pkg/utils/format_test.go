package utils

import "testing"

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "$0.00"},
		{100, "$100.00"},
		{1000, "$1,000.00"},
		{12345, "$12,345.00"},
		{1234567, "$1,234,567.00"},
		{15000000, "$15,000,000.00"},
		{2847.50, "$2,847.50"},
		{-1234.56, "-$1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatAmount(tt.input)
			if result != tt.expected {
				t.Errorf("FormatAmount(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{500, "$500"},
		{2500, "$2.5K"},
		{1500000, "$1.5M"},
		{15000000, "$15M"},
		{2400000000, "$2.4B"},
		{-7500000, "-$7.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatCompact(tt.input)
			if result != tt.expected {
				t.Errorf("FormatCompact(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}
