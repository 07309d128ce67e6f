package csvimport

import (
	"strings"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

// MapRows applies a column mapping and the field normalizers to raw rows,
// producing transaction candidates. A row is silently dropped when its date or
// amount fails to parse or its description is empty after trimming; dropped
// rows never abort the batch. Callers should check mapping.Complete() first;
// an incomplete mapping yields no candidates.
func MapRows(rows [][]string, mapping core.ColumnMapping) []core.TransactionCandidate {
	if !mapping.Complete() {
		return nil
	}

	var candidates []core.TransactionCandidate
	for _, row := range rows {
		date, ok := ParseDate(field(row, mapping.Date))
		if !ok {
			continue
		}
		amount, ok := ParseAmount(field(row, mapping.Amount))
		if !ok {
			continue
		}
		description := strings.TrimSpace(field(row, mapping.Description))
		if description == "" {
			continue
		}

		candidates = append(candidates, core.TransactionCandidate{
			Date:        date,
			Description: description,
			Amount:      amount,
			IsIncome:    core.IsIncome(amount),
			Category:    strings.TrimSpace(field(row, mapping.Category)),
			Account:     strings.TrimSpace(field(row, mapping.Account)),
			Hash:        core.TransactionHash(date, description, amount),
		})
	}

	return candidates
}

// field extracts the value at an optional column index. Unset or out-of-range
// indexes yield an empty string; tokenized rows may be shorter than the header
// row.
func field(row []string, index *int) string {
	if index == nil || *index < 0 || *index >= len(row) {
		return ""
	}
	return row[*index]
}
