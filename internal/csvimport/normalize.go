package csvimport

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

// Slash-delimited dates are read as month-first. Bank exports do not carry
// enough information to disambiguate 03/04/2024 regionally, so a single
// convention is applied rather than pretending to detect one.
var dateShapes = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), // MM/DD/YYYY
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`), // YYYY-MM-DD
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	time.RFC3339,
}

// ParseDate normalizes a raw date string to a calendar date. It tries the
// known regex shapes first, then falls back to the generic layout list.
// Returns false if nothing matches. Any time component is truncated.
func ParseDate(raw string) (core.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return core.Date{}, false
	}

	for _, shape := range dateShapes {
		if shape.MatchString(s) {
			return parseAnyLayout(s)
		}
	}

	return parseAnyLayout(s)
}

func parseAnyLayout(s string) (core.Date, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return core.Date{}, false
}

var currencyRunes = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "")

// ParseAmount normalizes a raw amount string to a signed decimal. Currency
// symbols, thousands separators and whitespace are stripped; enclosing
// parentheses denote a negative value (accounting convention) and force the
// sign. Returns false for empty or unparseable input.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}

	parenthesized := strings.Contains(s, "(") && strings.Contains(s, ")")

	cleaned := currencyRunes.Replace(s)
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	cleaned = strings.Join(strings.Fields(cleaned), "")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if parenthesized {
		amount = amount.Abs().Neg()
	}
	return amount, true
}
