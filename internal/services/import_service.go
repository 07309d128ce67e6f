package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terrence-gonsalves/truespend/internal/amqp"
	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/csvimport"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

// previewRows caps the number of raw rows returned by Inspect for the review
// step.
const previewRows = 10

// ImportService runs the CSV ingestion pipeline end to end: validation gate,
// tokenizer, column auto-detection, row mapping and the dedup commit.
type ImportService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewImportService(st store.Store, amqpClient *amqp.Client) *ImportService {
	return &ImportService{store: st, amqpClient: amqpClient}
}

// Inspection is the result of running the gate, tokenizer and auto-detection
// over an uploaded file. The mapping is advisory; the caller may override any
// column before committing.
type Inspection struct {
	Headers  []string           `json:"headers"`
	RowCount int                `json:"row_count"`
	Mapping  core.ColumnMapping `json:"mapping"`
	Preview  [][]string         `json:"preview"`
}

// ImportResult reports a commit outcome. Skipped counts rows dropped by the
// mapper before the commit (unparseable date/amount, empty description).
type ImportResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// Inspect validates the file against the size/extension/row ceilings, then
// tokenizes it and guesses a column mapping from the headers.
func (s *ImportService) Inspect(ctx context.Context, filename string, size int64, content string) (Inspection, error) {
	if err := csvimport.ValidateFile(filename, size); err != nil {
		return Inspection{}, err
	}
	if err := csvimport.ValidateRowCount(content); err != nil {
		return Inspection{}, err
	}

	raw, err := csvimport.Tokenize(content)
	if err != nil {
		return Inspection{}, err
	}

	preview := raw.Rows
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	return Inspection{
		Headers:  raw.Headers,
		RowCount: raw.RowCount,
		Mapping:  csvimport.AutoDetect(raw.Headers),
		Preview:  preview,
	}, nil
}

// Commit maps the file's rows with the given mapping and upserts the
// candidates keyed on (hash, owner). Re-imported content collapses onto
// existing rows without touching them; user edits survive re-import.
func (s *ImportService) Commit(ctx context.Context, ownerID, filename, content string, mapping core.ColumnMapping, defaultCategoryID, defaultAccountID string) (ImportResult, error) {
	if !mapping.Complete() {
		return ImportResult{}, core.ErrMappingIncomplete
	}

	raw, err := csvimport.Tokenize(content)
	if err != nil {
		return ImportResult{}, err
	}

	candidates := csvimport.MapRows(raw.Rows, mapping)
	skipped := raw.RowCount - len(candidates)

	// Case-insensitive name lookup built once per commit; archived categories
	// still resolve so historical names keep matching.
	categories, err := s.store.ListCategories(ctx, ownerID, true)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load categories: %w", err)
	}
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	txs := make([]core.Transaction, 0, len(candidates))
	for _, cand := range candidates {
		categoryID := defaultCategoryID
		if cand.Category != "" {
			if id, ok := byName[strings.ToLower(cand.Category)]; ok {
				categoryID = id
			}
		}
		txs = append(txs, core.Transaction{
			OwnerID:          ownerID,
			Date:             cand.Date,
			Description:      cand.Description,
			Amount:           cand.Amount,
			IsIncome:         cand.IsIncome,
			CategoryID:       categoryID,
			AccountID:        defaultAccountID,
			OriginalCategory: cand.Category,
			Hash:             cand.Hash,
		})
	}

	inserted, err := s.store.UpsertTransactions(ctx, txs)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import transactions: %w", err)
	}

	result := ImportResult{
		Imported:   inserted,
		Duplicates: len(txs) - inserted,
		Skipped:    skipped,
	}

	// The audit record is diagnostic only; a failure here must not undo the
	// committed rows.
	batch, err := s.store.CreateImportBatch(ctx, core.ImportBatch{
		OwnerID:      ownerID,
		Filename:     filename,
		RowCount:     len(txs),
		SuccessCount: result.Imported,
		ErrorCount:   result.Duplicates,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to record import batch",
			"error", err, "filename", filename, "owner_id", ownerID)
	} else {
		s.publishImportCompleted(ctx, batch, result)
	}

	slog.InfoContext(ctx, "Import committed",
		"filename", filename,
		"owner_id", ownerID,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped)
	return result, nil
}

func (s *ImportService) publishImportCompleted(ctx context.Context, batch core.ImportBatch, result ImportResult) {
	if s.amqpClient == nil {
		return
	}
	err := s.amqpClient.PublishImportCompleted(ctx, amqp.NewImportCompletedMessage(
		batch.ID, batch.OwnerID, batch.Filename, result.Imported, result.Duplicates))
	if err != nil {
		// Non-blocking: the import already succeeded locally
		slog.ErrorContext(ctx, "Failed to publish import event",
			"error", err, "batch_id", batch.ID)
	}
}

// SavePreset stores a named column mapping for reuse on future imports.
func (s *ImportService) SavePreset(ctx context.Context, ownerID, name string, mapping core.ColumnMapping) (core.MappingPreset, error) {
	if strings.TrimSpace(name) == "" {
		return core.MappingPreset{}, fmt.Errorf("preset name cannot be empty")
	}
	preset, err := s.store.SavePreset(ctx, core.MappingPreset{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(name),
		Mapping: mapping,
	})
	if err != nil {
		return core.MappingPreset{}, fmt.Errorf("save preset: %w", err)
	}
	return preset, nil
}

// ListPresets returns the owner's saved mappings, newest first.
func (s *ImportService) ListPresets(ctx context.Context, ownerID string) ([]core.MappingPreset, error) {
	presets, err := s.store.ListPresets(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// ListBatches returns the owner's import audit records, newest first.
func (s *ImportService) ListBatches(ctx context.Context, ownerID string) ([]core.ImportBatch, error) {
	batches, err := s.store.ListImportBatches(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	return batches, nil
}
