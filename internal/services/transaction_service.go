package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

// TransactionService handles listing and editing imported transactions.
type TransactionService struct {
	store store.Store
}

func NewTransactionService(st store.Store) *TransactionService {
	return &TransactionService{store: st}
}

// TransactionPage is one page of a filtered transaction listing.
type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int                `json:"total"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// List returns transactions matching the filter, newest first, paginated.
func (s *TransactionService) List(ctx context.Context, ownerID string, filter store.TransactionFilter) (TransactionPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	txs, total, err := s.store.ListTransactions(ctx, ownerID, filter)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return TransactionPage{Transactions: txs, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Update edits a single transaction. Changing the amount re-derives the
// income flag and the dedup hash is left untouched so re-imports of the
// original file still dedupe.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, upd store.TransactionUpdate) (core.Transaction, error) {
	if upd.Description != nil {
		trimmed := strings.TrimSpace(*upd.Description)
		if trimmed == "" {
			return core.Transaction{}, core.ErrEmptyDescription
		}
		upd.Description = &trimmed
	}
	return s.store.UpdateTransaction(ctx, ownerID, id, upd)
}

// Delete removes transactions by id. Unknown ids are ignored.
func (s *TransactionService) Delete(ctx context.Context, ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.DeleteTransactions(ctx, ownerID, ids)
}

// BulkSetCategory assigns a category to each given transaction. The category
// must belong to the owner; an empty id clears the assignment.
func (s *TransactionService) BulkSetCategory(ctx context.Context, ownerID string, ids []string, categoryID string) error {
	if len(ids) == 0 {
		return nil
	}
	if categoryID != "" {
		if _, err := s.store.GetCategory(ctx, ownerID, categoryID); err != nil {
			return err
		}
	}
	return s.store.SetTransactionsCategory(ctx, ownerID, ids, categoryID)
}

// BulkSetAccount assigns an account to each given transaction.
func (s *TransactionService) BulkSetAccount(ctx context.Context, ownerID string, ids []string, accountID string) error {
	if len(ids) == 0 {
		return nil
	}
	if accountID != "" {
		if _, err := s.findAccount(ctx, ownerID, accountID); err != nil {
			return err
		}
	}
	return s.store.SetTransactionsAccount(ctx, ownerID, ids, accountID)
}

// Accounts lists the owner's accounts.
func (s *TransactionService) Accounts(ctx context.Context, ownerID string) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, ownerID)
}

// CreateAccount registers an account to attach imports to.
func (s *TransactionService) CreateAccount(ctx context.Context, ownerID, name, institution string) (core.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Account{}, fmt.Errorf("empty account name")
	}
	a := core.Account{OwnerID: ownerID, Name: name, Institution: strings.TrimSpace(institution)}
	return s.store.CreateAccount(ctx, a)
}

func (s *TransactionService) findAccount(ctx context.Context, ownerID, id string) (core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, ownerID)
	if err != nil {
		return core.Account{}, fmt.Errorf("list accounts: %w", err)
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, core.ErrNotFound
}
