package csvimport

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024-1-5", "2024-01-05", true},
		{"01/15/2024", "2024-01-15", true},
		{"1/5/2024", "2024-01-05", true},
		{"2024/01/15", "2024-01-15", true},
		{"Jan 15, 2024", "2024-01-15", true},
		{"January 15, 2024", "2024-01-15", true},
		{"15 Jan 2024", "2024-01-15", true},
		{"15-Jan-2024", "2024-01-15", true},
		{"2024-01-15T10:30:00Z", "2024-01-15", true},
		{"", "", false},
		{"  ", "", false},
		{"N/A", "", false},
		{"not a date", "", false},
		{"13/45/2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.ISO() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.ISO(), tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"45.50", "45.5", true},
		{"-45.50", "-45.5", true},
		{"+20", "20", true},
		{"$1,234.56", "1234.56", true},
		{"€99.99", "99.99", true},
		{"£10", "10", true},
		{"¥5000", "5000", true},
		{"(45.00)", "-45", true},
		{"($1,234.56)", "-1234.56", true},
		{"(-45.00)", "-45", true}, // parentheses force the negative sign
		{" 12.00 ", "12", true},
		{"1 234,56", "123456", true}, // spaces and commas are stripped, not locale-aware
		{"0", "0", true},
		{"", "", false},
		{"   ", "", false},
		{"N/A", "", false},
		{"abc", "", false},
		{"$", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}
