package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

const testOwner = "owner-1"

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "truespend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func tx(t *testing.T, date, desc, amount string) core.Transaction {
	t.Helper()
	d, err := core.ParseISODate(date)
	require.NoError(t, err)
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return core.Transaction{
		OwnerID:     testOwner,
		Date:        d,
		Description: desc,
		Amount:      amt,
		IsIncome:    amt.GreaterThan(decimal.Zero),
		Hash:        core.TransactionHash(d, desc, amt),
	}
}

func TestUpsertTransactions_Idempotent(t *testing.T) {
	repo := newRepo(t)
	batch := []core.Transaction{
		tx(t, "2024-01-15", "COFFEE", "-4.50"),
		tx(t, "2024-01-16", "SALARY", "2500.00"),
	}

	inserted, err := repo.UpsertTransactions(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = repo.UpsertTransactions(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted, "ON CONFLICT keeps the existing rows")

	_, total, err := repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestUpsertTransactions_OwnerScoped(t *testing.T) {
	repo := newRepo(t)
	mine := tx(t, "2024-01-15", "COFFEE", "-4.50")
	theirs := mine
	theirs.OwnerID = "owner-2"

	inserted, err := repo.UpsertTransactions(context.Background(), []core.Transaction{mine, theirs})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted, "identical content dedupes per owner, not globally")
}

func TestUserEditsSurviveReimport(t *testing.T) {
	repo := newRepo(t)
	original := tx(t, "2024-01-15", "COFFEE", "-4.50")
	inserted, err := repo.UpsertTransactions(context.Background(), []core.Transaction{original})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	rows, _, err := repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	category, err := repo.CreateCategory(context.Background(), core.Category{OwnerID: testOwner, Name: "Dining"})
	require.NoError(t, err)
	_, err = repo.UpdateTransaction(context.Background(), testOwner, rows[0].ID, store.TransactionUpdate{
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	// Same file again: the edited row is untouched
	_, err = repo.UpsertTransactions(context.Background(), []core.Transaction{original})
	require.NoError(t, err)

	rows, _, err = repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, category.ID, rows[0].CategoryID)
}

func TestListTransactions_Filters(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.UpsertTransactions(context.Background(), []core.Transaction{
		tx(t, "2024-01-01", "A", "-10.00"),
		tx(t, "2024-01-15", "B", "-20.00"),
		tx(t, "2024-02-01", "C", "300.00"),
	})
	require.NoError(t, err)

	// Newest first
	rows, total, err := repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "C", rows[0].Description)

	from, _ := core.ParseISODate("2024-01-10")
	to, _ := core.ParseISODate("2024-01-31")
	rows, total, err = repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{
		DateFrom: &from, DateTo: &to,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "B", rows[0].Description)

	rows, _, err = repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{Type: "income"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].Description)

	rows, total, err = repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "total counts all matches, not the page")
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0].Description)
}

func TestDateSpan(t *testing.T) {
	repo := newRepo(t)

	_, _, ok, err := repo.DateSpan(context.Background(), testOwner)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpsertTransactions(context.Background(), []core.Transaction{
		tx(t, "2024-03-10", "MID", "-1.00"),
		tx(t, "2024-01-02", "FIRST", "-1.00"),
		tx(t, "2024-05-20", "LAST", "-1.00"),
	})
	require.NoError(t, err)

	earliest, latest, ok, err := repo.DateSpan(context.Background(), testOwner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", earliest.ISO())
	assert.Equal(t, "2024-05-20", latest.ISO())
}

func TestCategories(t *testing.T) {
	repo := newRepo(t)

	c, err := repo.CreateCategory(context.Background(), core.Category{
		OwnerID: testOwner, Name: "Groceries", Color: "#10B981",
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	_, err = repo.GetCategory(context.Background(), "other-owner", c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.SetCategoryArchived(context.Background(), testOwner, c.ID, true))

	active, err := repo.ListCategories(context.Background(), testOwner, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.ListCategories(context.Background(), testOwner, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)

	require.NoError(t, repo.DeleteCategory(context.Background(), testOwner, c.ID))
	_, err = repo.GetCategory(context.Background(), testOwner, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRetargetCategory(t *testing.T) {
	repo := newRepo(t)
	source, err := repo.CreateCategory(context.Background(), core.Category{OwnerID: testOwner, Name: "Takeout"})
	require.NoError(t, err)
	target, err := repo.CreateCategory(context.Background(), core.Category{OwnerID: testOwner, Name: "Dining"})
	require.NoError(t, err)

	a := tx(t, "2024-01-01", "PIZZA", "-20.00")
	a.CategoryID = source.ID
	_, err = repo.UpsertTransactions(context.Background(), []core.Transaction{a})
	require.NoError(t, err)

	require.NoError(t, repo.RetargetCategory(context.Background(), testOwner, source.ID, target.ID))
	rows, _, err := repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{CategoryID: target.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Empty target clears the column
	require.NoError(t, repo.RetargetCategory(context.Background(), testOwner, target.ID, ""))
	rows, _, err = repo.ListTransactions(context.Background(), testOwner, store.TransactionFilter{CategoryID: target.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBudgets_UpsertReplacesAmount(t *testing.T) {
	repo := newRepo(t)
	month, err := core.ParseMonth("2024-03")
	require.NoError(t, err)

	first, err := repo.UpsertBudget(context.Background(), core.Budget{
		OwnerID: testOwner, CategoryID: "cat-1", Month: month, Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = repo.UpsertBudget(context.Background(), core.Budget{
		OwnerID: testOwner, CategoryID: "cat-1", Month: month, Amount: decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	budgets, err := repo.ListBudgets(context.Background(), testOwner, month)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, first.ID, budgets[0].ID, "unique (owner, category, month) row is replaced in place")
	assert.True(t, budgets[0].Amount.Equal(decimal.NewFromInt(250)))

	require.NoError(t, repo.DeleteBudget(context.Background(), testOwner, "cat-1", month))
	budgets, err = repo.ListBudgets(context.Background(), testOwner, month)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestPresetsAndBatches(t *testing.T) {
	repo := newRepo(t)

	preset, err := repo.SavePreset(context.Background(), core.MappingPreset{
		OwnerID: testOwner,
		Name:    "My Bank",
		Mapping: core.ColumnMapping{Date: core.Col(0), Description: core.Col(1), Amount: core.Col(2)},
	})
	require.NoError(t, err)
	require.NotEmpty(t, preset.ID)

	presets, err := repo.ListPresets(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.True(t, presets[0].Mapping.Complete(), "mapping survives the JSON round trip")

	batch, err := repo.CreateImportBatch(context.Background(), core.ImportBatch{
		OwnerID: testOwner, Filename: "export.csv", RowCount: 10, SuccessCount: 8, ErrorCount: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, batch.ID)

	batches, err := repo.ListImportBatches(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 8, batches[0].SuccessCount)
	assert.False(t, batches[0].ImportedAt.IsZero())
}

func TestAccounts(t *testing.T) {
	repo := newRepo(t)

	a, err := repo.CreateAccount(context.Background(), core.Account{
		OwnerID: testOwner, Name: "Checking", Institution: "First National",
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	accounts, err := repo.ListAccounts(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "First National", accounts[0].Institution)

	other, err := repo.ListAccounts(context.Background(), "other-owner")
	require.NoError(t, err)
	assert.Empty(t, other)
}
