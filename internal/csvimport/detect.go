package csvimport

import (
	"regexp"
	"strings"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

var (
	datePatterns        = regexp.MustCompile(`date|posted|transaction.*date`)
	descriptionPatterns = regexp.MustCompile(`description|memo|details|merchant|payee`)
	amountPatterns      = regexp.MustCompile(`amount|value|sum|debit|credit`)
	categoryPatterns    = regexp.MustCompile(`category|type|class`)
	accountPatterns     = regexp.MustCompile(`account`)
	balancePatterns     = regexp.MustCompile(`balance`)
)

// AutoDetect guesses a column mapping from header names. Each logical field is
// claimed by the first header matching its pattern set and never reassigned;
// the six fields are scanned independently, so one header may be claimed by
// several fields. The result is advisory and may be overridden by the caller
// before committing.
func AutoDetect(headers []string) core.ColumnMapping {
	var mapping core.ColumnMapping

	for index, header := range headers {
		clean := strings.ToLower(strings.TrimSpace(header))

		if mapping.Date == nil && datePatterns.MatchString(clean) {
			mapping.Date = core.Col(index)
		}
		if mapping.Description == nil && descriptionPatterns.MatchString(clean) {
			mapping.Description = core.Col(index)
		}
		if mapping.Amount == nil && amountPatterns.MatchString(clean) {
			mapping.Amount = core.Col(index)
		}
		if mapping.Category == nil && categoryPatterns.MatchString(clean) {
			mapping.Category = core.Col(index)
		}
		if mapping.Account == nil && accountPatterns.MatchString(clean) {
			mapping.Account = core.Col(index)
		}
		if mapping.Balance == nil && balancePatterns.MatchString(clean) {
			mapping.Balance = core.Col(index)
		}
	}

	return mapping
}
