package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    Month
		wantErr bool
	}{
		{"2024-01", Month{2024, 1}, false},
		{"2024-12", Month{2024, 12}, false},
		{"1999-06", Month{1999, 6}, false},
		{"2024-13", Month{}, true},
		{"2024-00", Month{}, true},
		{"2024", Month{}, true},
		{"", Month{}, true},
		{"garbage", Month{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonth(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonth_Bounds(t *testing.T) {
	tests := []struct {
		month     Month
		wantFirst string
		wantLast  string
	}{
		{Month{2024, 1}, "2024-01-01", "2024-01-31"},
		{Month{2024, 2}, "2024-02-01", "2024-02-29"}, // leap year
		{Month{2023, 2}, "2023-02-01", "2023-02-28"},
		{Month{2024, 12}, "2024-12-01", "2024-12-31"},
		{Month{2024, 4}, "2024-04-01", "2024-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			first, last := tt.month.Bounds()
			if first.ISO() != tt.wantFirst {
				t.Errorf("first = %s, want %s", first.ISO(), tt.wantFirst)
			}
			if last.ISO() != tt.wantLast {
				t.Errorf("last = %s, want %s", last.ISO(), tt.wantLast)
			}
		})
	}
}

func TestMonth_Next(t *testing.T) {
	if got := (Month{2024, 12}).Next(); got != (Month{2025, 1}) {
		t.Errorf("December next = %v, want 2025-01", got)
	}
	if got := (Month{2024, 5}).Next(); got != (Month{2024, 6}) {
		t.Errorf("May next = %v, want 2024-06", got)
	}
}

func TestMonth_Before(t *testing.T) {
	tests := []struct {
		a, b Month
		want bool
	}{
		{Month{2024, 1}, Month{2024, 2}, true},
		{Month{2023, 12}, Month{2024, 1}, true},
		{Month{2024, 2}, Month{2024, 1}, false},
		{Month{2024, 3}, Month{2024, 3}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("%v.Before(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMonth_StringAndLabel(t *testing.T) {
	m := Month{2024, 3}
	if m.String() != "2024-03" {
		t.Errorf("String() = %q, want 2024-03", m.String())
	}
	if m.Label() != "March 2024" {
		t.Errorf("Label() = %q, want March 2024", m.Label())
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2024, 7, 15, 13, 45, 0, 0, time.UTC)
	if got := CurrentMonth(now); got != (Month{2024, 7}) {
		t.Errorf("CurrentMonth = %v, want 2024-07", got)
	}
}

func TestMonth_TextRoundTrip(t *testing.T) {
	m := Month{2024, 9}
	text, err := m.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var back Month
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText(%q): %v", text, err)
	}
	if back != m {
		t.Errorf("round trip = %v, want %v", back, m)
	}
}
