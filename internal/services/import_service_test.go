package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
	"github.com/terrence-gonsalves/truespend/internal/store/memory"
)

const testOwner = "owner-1"

const sampleCSV = `Date,Description,Amount,Category
2024-01-15,COFFEE SHOP,-4.50,Dining
2024-01-16,SALARY,2500.00,
2024-01-17,GROCERY STORE,-82.13,Groceries
N/A,BROKEN ROW,-1.00,
`

func newImportFixture(t *testing.T) (*ImportService, store.Store) {
	t.Helper()
	st := memory.New()
	return NewImportService(st, nil), st
}

func seedCategories(t *testing.T, st store.Store) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	for _, seed := range core.DefaultCategories() {
		c, err := st.CreateCategory(context.Background(), core.Category{
			OwnerID: testOwner, Name: seed.Name, Color: seed.Color, IsSystem: seed.IsSystem,
		})
		require.NoError(t, err)
		ids[seed.Name] = c.ID
	}
	return ids
}

func TestInspect(t *testing.T) {
	svc, _ := newImportFixture(t)

	inspection, err := svc.Inspect(context.Background(), "export.csv", int64(len(sampleCSV)), sampleCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount", "Category"}, inspection.Headers)
	assert.Equal(t, 4, inspection.RowCount)
	require.True(t, inspection.Mapping.Complete())
	assert.Equal(t, 0, *inspection.Mapping.Date)
	assert.Equal(t, 1, *inspection.Mapping.Description)
	assert.Equal(t, 2, *inspection.Mapping.Amount)
	require.NotNil(t, inspection.Mapping.Category)
	assert.Equal(t, 3, *inspection.Mapping.Category)
	assert.Len(t, inspection.Preview, 4)
}

func TestInspect_RejectsNonCSV(t *testing.T) {
	svc, _ := newImportFixture(t)
	_, err := svc.Inspect(context.Background(), "export.pdf", 100, sampleCSV)
	assert.Error(t, err)
}

func TestCommit(t *testing.T) {
	svc, st := newImportFixture(t)
	ids := seedCategories(t, st)
	mapping := core.ColumnMapping{
		Date: core.Col(0), Description: core.Col(1), Amount: core.Col(2), Category: core.Col(3),
	}

	result, err := svc.Commit(context.Background(), testOwner, "export.csv", sampleCSV, mapping,
		ids["Uncategorized"], "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 1, result.Skipped, "unparseable row is skipped, not fatal")

	txs, _, err := st.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)

	byDesc := make(map[string]core.Transaction)
	for _, tx := range txs {
		byDesc[tx.Description] = tx
	}
	// Source-file category names resolve case-insensitively to category ids
	assert.Equal(t, ids["Dining"], byDesc["COFFEE SHOP"].CategoryID)
	assert.Equal(t, "Dining", byDesc["COFFEE SHOP"].OriginalCategory)
	// Unmatched rows fall back to the default category
	assert.Equal(t, ids["Uncategorized"], byDesc["SALARY"].CategoryID)
	assert.True(t, byDesc["SALARY"].IsIncome)
}

func TestCommit_Idempotent(t *testing.T) {
	svc, st := newImportFixture(t)
	seedCategories(t, st)
	mapping := core.ColumnMapping{Date: core.Col(0), Description: core.Col(1), Amount: core.Col(2)}

	first, err := svc.Commit(context.Background(), testOwner, "export.csv", sampleCSV, mapping, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Imported)

	second, err := svc.Commit(context.Background(), testOwner, "export-copy.csv", sampleCSV, mapping, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Duplicates)

	_, total, err := st.ListTransactions(context.Background(), testOwner, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestCommit_IncompleteMapping(t *testing.T) {
	svc, _ := newImportFixture(t)
	mapping := core.ColumnMapping{Date: core.Col(0), Amount: core.Col(2)}

	_, err := svc.Commit(context.Background(), testOwner, "export.csv", sampleCSV, mapping, "", "")
	assert.ErrorIs(t, err, core.ErrMappingIncomplete)
}

func TestCommit_RecordsAuditBatch(t *testing.T) {
	svc, _ := newImportFixture(t)
	mapping := core.ColumnMapping{Date: core.Col(0), Description: core.Col(1), Amount: core.Col(2)}

	_, err := svc.Commit(context.Background(), testOwner, "export.csv", sampleCSV, mapping, "", "")
	require.NoError(t, err)
	_, err = svc.Commit(context.Background(), testOwner, "export.csv", sampleCSV, mapping, "", "")
	require.NoError(t, err)

	batches, err := svc.ListBatches(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, batches, 2, "the audit record is written even when everything deduped")

	latest := batches[0]
	assert.Equal(t, "export.csv", latest.Filename)
	assert.Equal(t, 3, latest.RowCount)
	assert.Equal(t, 0, latest.SuccessCount)
	assert.Equal(t, 3, latest.ErrorCount)
}

func TestPresets(t *testing.T) {
	svc, _ := newImportFixture(t)
	mapping := core.ColumnMapping{Date: core.Col(0), Description: core.Col(1), Amount: core.Col(2)}

	_, err := svc.SavePreset(context.Background(), testOwner, "  ", mapping)
	assert.Error(t, err, "blank preset names are rejected")

	saved, err := svc.SavePreset(context.Background(), testOwner, "My Bank", mapping)
	require.NoError(t, err)
	assert.Equal(t, "My Bank", saved.Name)

	presets, err := svc.ListPresets(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.True(t, presets[0].Mapping.Complete())
}
