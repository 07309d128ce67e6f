package csvimport

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantHeaders []string
		wantRows    [][]string
	}{
		{
			name:        "simple",
			content:     "Date,Description,Amount\n2024-01-15,Coffee,-4.50",
			wantHeaders: []string{"Date", "Description", "Amount"},
			wantRows:    [][]string{{"2024-01-15", "Coffee", "-4.50"}},
		},
		{
			name:        "quoted field with comma",
			content:     "a,b\n\"one, two\",three",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"one, two", "three"}},
		},
		{
			name:        "doubled quote inside quoted field",
			content:     "a\n\"say \"\"hi\"\"\"",
			wantHeaders: []string{"a"},
			wantRows:    [][]string{{`say "hi"`}},
		},
		{
			name:        "blank lines dropped",
			content:     "a,b\n\n1,2\n\n\n3,4\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:        "windows line endings trimmed",
			content:     "a,b\r\n1,2\r\n",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "whitespace around fields trimmed",
			content:     " a , b \n 1 , 2 ",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "ragged rows kept as-is",
			content:     "a,b,c\n1,2\n1,2,3,4",
			wantHeaders: []string{"a", "b", "c"},
			wantRows:    [][]string{{"1", "2"}, {"1", "2", "3", "4"}},
		},
		{
			name:        "trailing comma yields empty field",
			content:     "a,b\n1,",
			wantHeaders: []string{"a", "b"},
			wantRows:    [][]string{{"1", ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Tokenize(tt.content)
			if err != nil {
				t.Fatalf("Tokenize() error: %v", err)
			}
			if !reflect.DeepEqual(raw.Headers, tt.wantHeaders) {
				t.Errorf("headers = %v, want %v", raw.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(raw.Rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", raw.Rows, tt.wantRows)
			}
			if raw.RowCount != len(tt.wantRows) {
				t.Errorf("RowCount = %d, want %d", raw.RowCount, len(tt.wantRows))
			}
		})
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, content := range []string{"", "\n\n\n", "   \n  "} {
		if _, err := Tokenize(content); !errors.Is(err, ErrEmptyFile) {
			t.Errorf("Tokenize(%q) error = %v, want ErrEmptyFile", content, err)
		}
	}
}

func TestTokenize_HeaderOnly(t *testing.T) {
	raw, err := Tokenize("Date,Description,Amount")
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if raw.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", raw.RowCount)
	}
}
