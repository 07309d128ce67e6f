// Package csvimport implements the CSV ingestion pipeline: tokenizing raw file
// text, guessing column semantics from header names, normalizing dates and
// amounts across bank formats, and mapping rows to transaction candidates
// carrying a content-derived deduplication hash.
package csvimport

import (
	"errors"
	"strings"
)

var (
	ErrEmptyFile         = errors.New("csv file is empty")
	ErrFileTooLarge      = errors.New("file size exceeds 10MB limit")
	ErrUnsupportedFormat = errors.New("only CSV files are allowed")
	ErrTooManyRows       = errors.New("row limit exceeded")
)

// RawCSV is tokenized CSV content. Rows are not padded or truncated to the
// header width; consumers must index defensively.
type RawCSV struct {
	Headers  []string
	Rows     [][]string
	RowCount int
}

// Tokenize splits content into a header row and data rows. Blank lines are
// dropped before any quote handling, so embedded newlines inside quoted fields
// are not supported.
func Tokenize(content string) (RawCSV, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return RawCSV{}, ErrEmptyFile
	}

	headers := tokenizeLine(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, tokenizeLine(line))
	}

	return RawCSV{Headers: headers, Rows: rows, RowCount: len(rows)}, nil
}

// tokenizeLine parses a single CSV line character by character. A double quote
// toggles quoted state, a doubled quote inside quotes emits a literal quote,
// and a comma outside quotes ends the current field. Fields are trimmed of
// surrounding whitespace, which also discards trailing carriage returns.
func tokenizeLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))

	return result
}
