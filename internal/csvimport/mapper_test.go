package csvimport

import (
	"strings"
	"testing"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

func completeMapping() core.ColumnMapping {
	return core.ColumnMapping{
		Date:        core.Col(0),
		Description: core.Col(1),
		Amount:      core.Col(2),
	}
}

func TestMapRows(t *testing.T) {
	mapping := completeMapping()
	mapping.Category = core.Col(3)
	mapping.Account = core.Col(4)

	rows := [][]string{
		{"2024-01-15", "COFFEE SHOP", "-4.50", "Dining", "Checking"},
		{"2024-01-16", "SALARY", "2500.00", "", ""},
	}

	candidates := MapRows(rows, mapping)
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	coffee := candidates[0]
	if coffee.Date.ISO() != "2024-01-15" {
		t.Errorf("date = %s", coffee.Date.ISO())
	}
	if coffee.Description != "COFFEE SHOP" {
		t.Errorf("description = %q", coffee.Description)
	}
	if coffee.IsIncome {
		t.Error("negative amount flagged as income")
	}
	if coffee.Category != "Dining" || coffee.Account != "Checking" {
		t.Errorf("category/account = %q/%q", coffee.Category, coffee.Account)
	}
	if coffee.Hash == "" || coffee.Hash == candidates[1].Hash {
		t.Error("hashes must be set and distinct")
	}

	if !candidates[1].IsIncome {
		t.Error("positive amount should be income")
	}
}

func TestMapRows_DropsBadRows(t *testing.T) {
	rows := [][]string{
		{"2024-01-15", "OK", "-4.50"},
		{"N/A", "bad date", "-4.50"},
		{"2024-01-16", "bad amount", "N/A"},
		{"2024-01-17", "   ", "-1.00"}, // blank description
		{"2024-01-18"},                 // short row
	}

	candidates := MapRows(rows, completeMapping())
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 (bad rows dropped silently)", len(candidates))
	}
	if candidates[0].Description != "OK" {
		t.Errorf("kept wrong row: %q", candidates[0].Description)
	}
}

func TestMapRows_IncompleteMapping(t *testing.T) {
	rows := [][]string{{"2024-01-15", "X", "-1"}}
	mapping := completeMapping()
	mapping.Description = nil

	if got := MapRows(rows, mapping); got != nil {
		t.Errorf("incomplete mapping should yield nil, got %d candidates", len(got))
	}
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"ok", "export.csv", 1024, nil},
		{"uppercase extension", "EXPORT.CSV", 1024, nil},
		{"too large", "export.csv", MaxFileSize + 1, ErrFileTooLarge},
		{"at limit", "export.csv", MaxFileSize, nil},
		{"wrong extension", "export.xlsx", 1024, ErrUnsupportedFormat},
		{"no extension", "export", 1024, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.filename, tt.size)
			if err != tt.wantErr {
				t.Errorf("ValidateFile(%q, %d) = %v, want %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRowCount(t *testing.T) {
	small := "h\n" + strings.Repeat("row\n", 100)
	if err := ValidateRowCount(small); err != nil {
		t.Errorf("100 rows should pass: %v", err)
	}

	big := "h\n" + strings.Repeat("row\n", MaxRows+1)
	if err := ValidateRowCount(big); err == nil {
		t.Error("expected row ceiling error")
	}
}
