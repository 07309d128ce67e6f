// Package storage is the SQLite implementation of the store ports. Amounts
// are persisted as canonical decimal strings and reduced in-process; the
// (hash, owner_id) unique index is the sole dedup mechanism for imports.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// nullable maps empty strings to NULL and back.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *SQLiteRepository) UpsertTransactions(ctx context.Context, txs []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, owner_id, date, description, amount, is_income, category_id, account_id, original_category, hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (hash, owner_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range txs {
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		res, err := stmt.ExecContext(ctx,
			id, t.OwnerID, t.Date.ISO(), t.Description, t.Amount.String(),
			boolToInt(t.IsIncome), nullable(t.CategoryID), nullable(t.AccountID),
			nullable(t.OriginalCategory), t.Hash, createdAt.Format(timeFormat))
		if err != nil {
			return 0, fmt.Errorf("upsert transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}

	slog.InfoContext(ctx, "Transactions upserted",
		"submitted", len(txs),
		"inserted", inserted,
		"duplicates", len(txs)-inserted)
	return inserted, nil
}

func buildTransactionWhere(ownerID string, f store.TransactionFilter) (string, []any) {
	where := []string{"owner_id = ?"}
	args := []any{ownerID}

	if f.DateFrom != nil {
		where = append(where, "date >= ?")
		args = append(args, f.DateFrom.ISO())
	}
	if f.DateTo != nil {
		where = append(where, "date <= ?")
		args = append(args, f.DateTo.ISO())
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	switch f.Type {
	case "income":
		where = append(where, "is_income = 1")
	case "expense":
		where = append(where, "is_income = 0")
	}

	return strings.Join(where, " AND "), args
}

const transactionColumns = "id, owner_id, date, description, amount, is_income, category_id, account_id, original_category, hash, created_at"

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string, f store.TransactionFilter) ([]core.Transaction, int, error) {
	where, args := buildTransactionWhere(ownerID, f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := "SELECT " + transactionColumns + " FROM transactions WHERE " + where +
		" ORDER BY date DESC, created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	} else if f.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t                          core.Transaction
		dateStr, amountStr, atStr  string
		isIncome                   int
		categoryID, accountID, org sql.NullString
	)
	if err := rows.Scan(&t.ID, &t.OwnerID, &dateStr, &t.Description, &amountStr,
		&isIncome, &categoryID, &accountID, &org, &t.Hash, &atStr); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	date, err := core.ParseISODate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
	}
	createdAt, err := time.Parse(timeFormat, atStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored timestamp %q: %w", atStr, err)
	}

	t.Date = date
	t.Amount = amount
	t.IsIncome = isIncome != 0
	t.CategoryID = categoryID.String
	t.AccountID = accountID.String
	t.OriginalCategory = org.String
	t.CreatedAt = createdAt
	return t, nil
}

func (r *SQLiteRepository) DateSpan(ctx context.Context, ownerID string) (core.Date, core.Date, bool, error) {
	var minStr, maxStr sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT MIN(date), MAX(date) FROM transactions WHERE owner_id = ?", ownerID).
		Scan(&minStr, &maxStr)
	if err != nil {
		return core.Date{}, core.Date{}, false, fmt.Errorf("date span: %w", err)
	}
	if !minStr.Valid || !maxStr.Valid {
		return core.Date{}, core.Date{}, false, nil
	}

	earliest, err := core.ParseISODate(minStr.String)
	if err != nil {
		return core.Date{}, core.Date{}, false, fmt.Errorf("parse earliest date: %w", err)
	}
	latest, err := core.ParseISODate(maxStr.String)
	if err != nil {
		return core.Date{}, core.Date{}, false, fmt.Errorf("parse latest date: %w", err)
	}
	return earliest, latest, true, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, ownerID, id string, u store.TransactionUpdate) (core.Transaction, error) {
	var sets []string
	var args []any

	if u.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, u.Date.ISO())
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Amount != nil {
		sets = append(sets, "amount = ?", "is_income = ?")
		args = append(args, u.Amount.String(), boolToInt(core.IsIncome(*u.Amount)))
	}
	if u.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, nullable(*u.CategoryID))
	}
	if u.AccountID != nil {
		sets = append(sets, "account_id = ?")
		args = append(args, nullable(*u.AccountID))
	}

	if len(sets) > 0 {
		args = append(args, id, ownerID)
		res, err := r.db.ExecContext(ctx,
			"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND owner_id = ?", args...)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return core.Transaction{}, core.ErrNotFound
		}
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("reload transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Transaction{}, fmt.Errorf("reload transaction: %w", err)
		}
		return core.Transaction{}, core.ErrNotFound
	}
	return scanTransaction(rows)
}

func (r *SQLiteRepository) DeleteTransactions(ctx context.Context, ownerID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := "DELETE FROM transactions WHERE owner_id = ? AND id IN (" + placeholders(len(ids)) + ")"
	if _, err := r.db.ExecContext(ctx, query, idArgs(ownerID, ids)...); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetTransactionsCategory(ctx context.Context, ownerID string, ids []string, categoryID string) error {
	return r.bulkSet(ctx, "category_id", ownerID, ids, categoryID)
}

func (r *SQLiteRepository) SetTransactionsAccount(ctx context.Context, ownerID string, ids []string, accountID string) error {
	return r.bulkSet(ctx, "account_id", ownerID, ids, accountID)
}

func (r *SQLiteRepository) bulkSet(ctx context.Context, column, ownerID string, ids []string, value string) error {
	if len(ids) == 0 {
		return nil
	}
	query := "UPDATE transactions SET " + column + " = ? WHERE owner_id = ? AND id IN (" + placeholders(len(ids)) + ")"
	args := append([]any{nullable(value)}, idArgs(ownerID, ids)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk set %s: %w", column, err)
	}
	return nil
}

func (r *SQLiteRepository) RetargetCategory(ctx context.Context, ownerID, fromCategoryID, toCategoryID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE owner_id = ? AND category_id = ?",
		nullable(toCategoryID), ownerID, fromCategoryID)
	if err != nil {
		return fmt.Errorf("retarget category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string, includeArchived bool) ([]core.Category, error) {
	query := "SELECT id, owner_id, name, color, is_system, archived FROM categories WHERE owner_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var isSystem, archived int
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Color, &isSystem, &archived); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.IsSystem = isSystem != 0
		c.Archived = archived != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id string) (core.Category, error) {
	var c core.Category
	var isSystem, archived int
	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, color, is_system, archived FROM categories WHERE id = ? AND owner_id = ?",
		id, ownerID).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Color, &isSystem, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.IsSystem = isSystem != 0
	c.Archived = archived != 0
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, owner_id, name, color, is_system, archived) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.OwnerID, c.Name, c.Color, boolToInt(c.IsSystem), boolToInt(c.Archived))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ? WHERE id = ? AND owner_id = ?",
		c.Name, c.Color, c.ID, c.OwnerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return r.GetCategory(ctx, c.OwnerID, c.ID)
}

func (r *SQLiteRepository) SetCategoryArchived(ctx context.Context, ownerID, id string, archived bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET archived = ? WHERE id = ? AND owner_id = ?",
		boolToInt(archived), id, ownerID)
	if err != nil {
		return fmt.Errorf("set category archived: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM budgets WHERE owner_id = ? AND category_id = ?", ownerID, id); err != nil {
		return fmt.Errorf("delete category budgets: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID string, month core.Month) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, category_id, month, amount FROM budgets WHERE owner_id = ? AND month = ? ORDER BY category_id",
		ownerID, month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var monthStr, amountStr string
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &monthStr, &amountStr); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		m, err := core.ParseMonth(monthStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored month %q: %w", monthStr, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored budget amount %q: %w", amountStr, err)
		}
		b.Month = m
		b.Amount = amount
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, owner_id, category_id, month, amount) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, category_id, month) DO UPDATE SET amount = excluded.amount`,
		b.ID, b.OwnerID, b.CategoryID, b.Month.String(), b.Amount.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, categoryID string, month core.Month) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE owner_id = ? AND category_id = ? AND month = ?",
		ownerID, categoryID, month.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, ownerID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, name, institution FROM accounts WHERE owner_id = ? ORDER BY name COLLATE NOCASE",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var institution sql.NullString
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &institution); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Institution = institution.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (id, owner_id, name, institution) VALUES (?, ?, ?, ?)",
		a.ID, a.OwnerID, a.Name, nullable(a.Institution))
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) CreateImportBatch(ctx context.Context, b core.ImportBatch) (core.ImportBatch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.ImportedAt.IsZero() {
		b.ImportedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO import_batches (id, owner_id, filename, row_count, success_count, error_count, imported_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.OwnerID, b.Filename, b.RowCount, b.SuccessCount, b.ErrorCount, b.ImportedAt.Format(timeFormat))
	if err != nil {
		return core.ImportBatch{}, fmt.Errorf("create import batch: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListImportBatches(ctx context.Context, ownerID string) ([]core.ImportBatch, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, filename, row_count, success_count, error_count, imported_at FROM import_batches WHERE owner_id = ? ORDER BY imported_at DESC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	defer rows.Close()

	var out []core.ImportBatch
	for rows.Next() {
		var b core.ImportBatch
		var atStr string
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Filename, &b.RowCount, &b.SuccessCount, &b.ErrorCount, &atStr); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}
		at, err := time.Parse(timeFormat, atStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp %q: %w", atStr, err)
		}
		b.ImportedAt = at
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SavePreset(ctx context.Context, p core.MappingPreset) (core.MappingPreset, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	mappingJSON, err := json.Marshal(p.Mapping)
	if err != nil {
		return core.MappingPreset{}, fmt.Errorf("marshal mapping: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO column_mapping_presets (id, owner_id, name, mapping, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.OwnerID, p.Name, string(mappingJSON), p.CreatedAt.Format(timeFormat))
	if err != nil {
		return core.MappingPreset{}, fmt.Errorf("save preset: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPresets(ctx context.Context, ownerID string) ([]core.MappingPreset, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, owner_id, name, mapping, created_at FROM column_mapping_presets WHERE owner_id = ? ORDER BY created_at DESC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []core.MappingPreset
	for rows.Next() {
		var p core.MappingPreset
		var mappingJSON, atStr string
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &mappingJSON, &atStr); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		if err := json.Unmarshal([]byte(mappingJSON), &p.Mapping); err != nil {
			return nil, fmt.Errorf("unmarshal stored mapping: %w", err)
		}
		at, err := time.Parse(timeFormat, atStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored timestamp %q: %w", atStr, err)
		}
		p.CreatedAt = at
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ownerID string, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

var _ store.Store = (*SQLiteRepository)(nil)
