package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date with no time component. The zero value is "no date".
	Date struct {
		time.Time
	}

	// Transaction is a persisted ledger row. CategoryID and AccountID are weak
	// references: deleting the referenced entity nulls them, never the row.
	Transaction struct {
		ID               string          `json:"id"`
		OwnerID          string          `json:"-"`
		Date             Date            `json:"date"`
		Description      string          `json:"description"`
		Amount           decimal.Decimal `json:"amount"`
		IsIncome         bool            `json:"is_income"`
		CategoryID       string          `json:"category_id,omitempty"` // empty = uncategorized
		AccountID        string          `json:"account_id,omitempty"`  // empty = no account
		OriginalCategory string          `json:"original_category,omitempty"` // free text as seen in the source file
		Hash             string          `json:"hash"`
		CreatedAt        time.Time       `json:"created_at"`
	}

	// TransactionCandidate is a parsed-but-not-yet-committed transaction
	// produced by the CSV row mapper.
	TransactionCandidate struct {
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		IsIncome    bool            `json:"is_income"`
		Category    string          `json:"category,omitempty"` // trimmed free text, empty if the column is unmapped
		Account     string          `json:"account,omitempty"`
		Hash        string          `json:"hash"`
	}

	Category struct {
		ID       string `json:"id"`
		OwnerID  string `json:"-"`
		Name     string `json:"name"`
		Color    string `json:"color"`
		IsSystem bool   `json:"is_system"`
		Archived bool   `json:"archived"`
	}

	Budget struct {
		ID         string          `json:"id"`
		OwnerID    string          `json:"-"`
		CategoryID string          `json:"category_id"`
		Month      Month           `json:"month"`
		Amount     decimal.Decimal `json:"amount"`
	}

	Account struct {
		ID          string `json:"id"`
		OwnerID     string `json:"-"`
		Name        string `json:"name"`
		Institution string `json:"institution,omitempty"`
	}

	// ImportBatch is an append-only audit record, never mutated after creation.
	ImportBatch struct {
		ID           string    `json:"id"`
		OwnerID      string    `json:"-"`
		Filename     string    `json:"filename"`
		RowCount     int       `json:"row_count"`
		SuccessCount int       `json:"success_count"`
		ErrorCount   int       `json:"error_count"`
		ImportedAt   time.Time `json:"imported_at"`
	}

	// ColumnMapping assigns logical transaction fields to CSV column positions.
	// A nil index means the field is unset. Date, description and amount are
	// required for the mapping to be usable.
	ColumnMapping struct {
		Date        *int `json:"date"`
		Description *int `json:"description"`
		Amount      *int `json:"amount"`
		Category    *int `json:"category,omitempty"`
		Account     *int `json:"account,omitempty"`
		Balance     *int `json:"balance,omitempty"`
	}

	// MappingPreset is an owner-scoped named column mapping, reusable across
	// imports.
	MappingPreset struct {
		ID        string        `json:"id"`
		OwnerID   string        `json:"-"`
		Name      string        `json:"name"`
		Mapping   ColumnMapping `json:"mapping"`
		CreatedAt time.Time     `json:"created_at"`
	}
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrSystemCategory    = errors.New("cannot modify system category")
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrMappingIncomplete = errors.New("column mapping is missing a required field")
)

// Complete reports whether all required fields are mapped.
func (m ColumnMapping) Complete() bool {
	return m.Date != nil && m.Description != nil && m.Amount != nil
}

// Col is a convenience constructor for optional column indexes.
func Col(i int) *int { return &i }

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as a bare YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthOf returns the calendar month the date falls in.
func (d Date) MonthOf() Month {
	return Month{Year: d.Time.Year(), Month: int(d.Time.Month())}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// IsIncome classifies a signed amount. Strictly greater than zero: a
// zero-amount transaction is an expense, not income.
func IsIncome(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == "" {
		return errors.New("budget requires a category")
	}
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return b.Month.Validate()
}
