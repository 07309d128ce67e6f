package core

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/shopspring/decimal"
)

// TransactionHash returns the deduplication digest for a transaction:
// hex-encoded SHA-256 over "date|description|amount". The amount is serialized
// in its canonical decimal form (trailing zeros trimmed), so "45.00" and "45"
// hash identically. Category and account are deliberately excluded: two imports
// of the same content under different accounts collapse to one ledger row.
func TransactionHash(date Date, description string, amount decimal.Decimal) string {
	data := date.ISO() + "|" + description + "|" + amount.String()
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
