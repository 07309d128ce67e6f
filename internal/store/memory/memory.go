// Package memory is an in-process Store implementation used by tests and as
// the default backend when no SQLite path is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

type Store struct {
	mu         sync.Mutex
	txs        map[string]core.Transaction // id -> row
	txByKey    map[string]string           // hash|owner -> id
	categories map[string]core.Category
	budgets    map[string]core.Budget // owner|category|month -> budget
	accounts   map[string]core.Account
	batches    []core.ImportBatch
	presets    []core.MappingPreset
}

func New() *Store {
	return &Store{
		txs:        make(map[string]core.Transaction),
		txByKey:    make(map[string]string),
		categories: make(map[string]core.Category),
		budgets:    make(map[string]core.Budget),
		accounts:   make(map[string]core.Account),
	}
}

func dedupKey(hash, ownerID string) string { return hash + "|" + ownerID }

func budgetKey(ownerID, categoryID string, month core.Month) string {
	return ownerID + "|" + categoryID + "|" + month.String()
}

func (s *Store) UpsertTransactions(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, t := range txs {
		key := dedupKey(t.Hash, t.OwnerID)
		if _, exists := s.txByKey[key]; exists {
			continue // existing row is left untouched
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		s.txs[t.ID] = t
		s.txByKey[key] = t.ID
		inserted++
	}
	return inserted, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string, f store.TransactionFilter) ([]core.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []core.Transaction
	for _, t := range s.txs {
		if t.OwnerID != ownerID {
			continue
		}
		if f.DateFrom != nil && t.Date.Before(f.DateFrom.Time) {
			continue
		}
		if f.DateTo != nil && t.Date.After(f.DateTo.Time) {
			continue
		}
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if f.AccountID != "" && t.AccountID != f.AccountID {
			continue
		}
		if f.Type == "income" && !t.IsIncome {
			continue
		}
		if f.Type == "expense" && t.IsIncome {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date.Time) {
			return matched[i].Date.After(matched[j].Date.Time)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (s *Store) DateSpan(_ context.Context, ownerID string) (core.Date, core.Date, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var earliest, latest core.Date
	found := false
	for _, t := range s.txs {
		if t.OwnerID != ownerID {
			continue
		}
		if !found {
			earliest, latest = t.Date, t.Date
			found = true
			continue
		}
		if t.Date.Before(earliest.Time) {
			earliest = t.Date
		}
		if t.Date.After(latest.Time) {
			latest = t.Date
		}
	}
	return earliest, latest, found, nil
}

func (s *Store) UpdateTransaction(_ context.Context, ownerID, id string, u store.TransactionUpdate) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txs[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
		t.IsIncome = core.IsIncome(*u.Amount)
	}
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.AccountID != nil {
		t.AccountID = *u.AccountID
	}
	s.txs[id] = t
	return t, nil
}

func (s *Store) DeleteTransactions(_ context.Context, ownerID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		t, ok := s.txs[id]
		if !ok || t.OwnerID != ownerID {
			continue
		}
		delete(s.txByKey, dedupKey(t.Hash, t.OwnerID))
		delete(s.txs, id)
	}
	return nil
}

func (s *Store) SetTransactionsCategory(_ context.Context, ownerID string, ids []string, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if t, ok := s.txs[id]; ok && t.OwnerID == ownerID {
			t.CategoryID = categoryID
			s.txs[id] = t
		}
	}
	return nil
}

func (s *Store) SetTransactionsAccount(_ context.Context, ownerID string, ids []string, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if t, ok := s.txs[id]; ok && t.OwnerID == ownerID {
			t.AccountID = accountID
			s.txs[id] = t
		}
	}
	return nil
}

func (s *Store) RetargetCategory(_ context.Context, ownerID, fromCategoryID, toCategoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.txs {
		if t.OwnerID == ownerID && t.CategoryID == fromCategoryID {
			t.CategoryID = toCategoryID
			s.txs[id] = t
		}
	}
	return nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string, includeArchived bool) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID != ownerID {
			continue
		}
		if !includeArchived && c.Archived {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok || existing.OwnerID != c.OwnerID {
		return core.Category{}, core.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) SetCategoryArchived(_ context.Context, ownerID, id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	c.Archived = archived
	s.categories[id] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.categories, id)

	for key, b := range s.budgets {
		if b.OwnerID == ownerID && b.CategoryID == id {
			delete(s.budgets, key)
		}
	}
	return nil
}

func (s *Store) ListBudgets(_ context.Context, ownerID string, month core.Month) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID && b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := budgetKey(b.OwnerID, b.CategoryID, b.Month)
	if existing, ok := s.budgets[key]; ok {
		existing.Amount = b.Amount
		s.budgets[key] = existing
		return existing, nil
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets[key] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, categoryID string, month core.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.budgets, budgetKey(ownerID, categoryID, month))
	return nil
}

func (s *Store) ListAccounts(_ context.Context, ownerID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Account
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *Store) CreateImportBatch(_ context.Context, b core.ImportBatch) (core.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.ImportedAt.IsZero() {
		b.ImportedAt = time.Now()
	}
	s.batches = append(s.batches, b)
	return b, nil
}

func (s *Store) ListImportBatches(_ context.Context, ownerID string) ([]core.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.ImportBatch
	for _, b := range s.batches {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImportedAt.After(out[j].ImportedAt) })
	return out, nil
}

func (s *Store) SavePreset(_ context.Context, p core.MappingPreset) (core.MappingPreset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.presets = append(s.presets, p)
	return p, nil
}

func (s *Store) ListPresets(_ context.Context, ownerID string) ([]core.MappingPreset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.MappingPreset
	for _, p := range s.presets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ store.Store = (*Store)(nil)
