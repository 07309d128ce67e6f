// Package store defines the persistence ports consumed by the service layer.
// Implementations: storage (SQLite) and store/memory (in-process).
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/terrence-gonsalves/truespend/internal/core"
)

// TransactionFilter narrows transaction reads. Zero values mean "no filter".
type TransactionFilter struct {
	DateFrom   *core.Date
	DateTo     *core.Date
	CategoryID string
	AccountID  string
	Type       string // "income", "expense" or ""
	Limit      int
	Offset     int
}

// TransactionUpdate carries partial updates; nil fields are left untouched.
// An empty-string CategoryID or AccountID clears the reference.
type TransactionUpdate struct {
	Date        *core.Date
	Description *string
	Amount      *decimal.Decimal
	CategoryID  *string
	AccountID   *string
}

type (
	TransactionStore interface {
		// UpsertTransactions inserts rows keyed on (hash, owner); rows whose
		// key already exists are left untouched. Returns the number actually
		// inserted.
		UpsertTransactions(ctx context.Context, txs []core.Transaction) (int, error)

		// ListTransactions returns the matching page ordered by date
		// descending then creation time descending, plus the total match
		// count before pagination.
		ListTransactions(ctx context.Context, ownerID string, f TransactionFilter) ([]core.Transaction, int, error)

		// DateSpan returns the owner's earliest and latest transaction dates.
		// ok is false when the ledger is empty.
		DateSpan(ctx context.Context, ownerID string) (earliest, latest core.Date, ok bool, err error)

		UpdateTransaction(ctx context.Context, ownerID, id string, u TransactionUpdate) (core.Transaction, error)
		DeleteTransactions(ctx context.Context, ownerID string, ids []string) error
		SetTransactionsCategory(ctx context.Context, ownerID string, ids []string, categoryID string) error
		SetTransactionsAccount(ctx context.Context, ownerID string, ids []string, accountID string) error

		// RetargetCategory moves every transaction referencing fromCategoryID
		// to toCategoryID; an empty target clears the reference.
		RetargetCategory(ctx context.Context, ownerID, fromCategoryID, toCategoryID string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, ownerID string, includeArchived bool) ([]core.Category, error)
		GetCategory(ctx context.Context, ownerID, id string) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		SetCategoryArchived(ctx context.Context, ownerID, id string, archived bool) error
		DeleteCategory(ctx context.Context, ownerID, id string) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, ownerID string, month core.Month) ([]core.Budget, error)

		// UpsertBudget replaces the amount when a budget already exists for
		// (owner, category, month).
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, ownerID, categoryID string, month core.Month) error
	}

	AccountStore interface {
		ListAccounts(ctx context.Context, ownerID string) ([]core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	}

	BatchStore interface {
		CreateImportBatch(ctx context.Context, b core.ImportBatch) (core.ImportBatch, error)
		ListImportBatches(ctx context.Context, ownerID string) ([]core.ImportBatch, error)
	}

	PresetStore interface {
		SavePreset(ctx context.Context, p core.MappingPreset) (core.MappingPreset, error)
		ListPresets(ctx context.Context, ownerID string) ([]core.MappingPreset, error)
	}
)

// Store is the full persistence surface.
type Store interface {
	TransactionStore
	CategoryStore
	BudgetStore
	AccountStore
	BatchStore
	PresetStore
}
