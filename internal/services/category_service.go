package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

// CategoryService manages the per-owner category set, including the default
// categories seeded on first use.
type CategoryService struct {
	store store.Store
}

func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{store: st}
}

// CategoryWithStats pairs a category with its usage for list views.
type CategoryWithStats struct {
	core.Category
	TransactionCount int             `json:"transaction_count"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

// EnsureDefaults seeds the default category set for an owner that has none.
// Safe to call on every request that touches categories.
func (s *CategoryService) EnsureDefaults(ctx context.Context, ownerID string) error {
	existing, err := s.store.ListCategories(ctx, ownerID, true)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, seed := range core.DefaultCategories() {
		c := core.Category{
			OwnerID:  ownerID,
			Name:     seed.Name,
			Color:    seed.Color,
			IsSystem: seed.IsSystem,
		}
		if _, err := s.store.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", seed.Name, err)
		}
	}
	return nil
}

// List returns the owner's categories, optionally including archived ones.
func (s *CategoryService) List(ctx context.Context, ownerID string, includeArchived bool) ([]core.Category, error) {
	if err := s.EnsureDefaults(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, ownerID, includeArchived)
}

// ListWithStats augments each category with its all-time transaction count
// and total expense spend. Per-category reads run concurrently.
func (s *CategoryService) ListWithStats(ctx context.Context, ownerID string, includeArchived bool) ([]CategoryWithStats, error) {
	categories, err := s.List(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryWithStats, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			txs, total, err := s.store.ListTransactions(gctx, ownerID, store.TransactionFilter{
				CategoryID: category.ID,
			})
			if err != nil {
				return fmt.Errorf("category usage: %w", err)
			}
			spent := decimal.Zero
			for _, t := range txs {
				if !t.IsIncome {
					spent = spent.Add(t.Amount.Abs())
				}
			}
			out[i] = CategoryWithStats{Category: category, TransactionCount: total, TotalSpent: spent}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a user category. Names are unique per owner, case-insensitively.
func (s *CategoryService) Create(ctx context.Context, ownerID, name, color string) (core.Category, error) {
	name = strings.TrimSpace(name)
	c := core.Category{OwnerID: ownerID, Name: name, Color: color}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.ensureNameFree(ctx, ownerID, name, ""); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, c)
}

// Update renames or recolors a category. System categories only accept a
// color change.
func (s *CategoryService) Update(ctx context.Context, ownerID, id, name, color string) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return core.Category{}, err
	}

	name = strings.TrimSpace(name)
	if existing.IsSystem && name != "" && !strings.EqualFold(name, existing.Name) {
		return core.Category{}, core.ErrSystemCategory
	}
	if name != "" && !strings.EqualFold(name, existing.Name) {
		if err := s.ensureNameFree(ctx, ownerID, name, id); err != nil {
			return core.Category{}, err
		}
		existing.Name = name
	}
	if color != "" {
		existing.Color = color
	}
	if err := existing.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.UpdateCategory(ctx, existing)
}

// Archive hides a category from pickers without touching its transactions.
func (s *CategoryService) Archive(ctx context.Context, ownerID, id string) error {
	return s.setArchived(ctx, ownerID, id, true)
}

func (s *CategoryService) Unarchive(ctx context.Context, ownerID, id string) error {
	return s.setArchived(ctx, ownerID, id, false)
}

func (s *CategoryService) setArchived(ctx context.Context, ownerID, id string, archived bool) error {
	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.IsSystem {
		return core.ErrSystemCategory
	}
	return s.store.SetCategoryArchived(ctx, ownerID, id, archived)
}

// Delete removes a user category. Its transactions are left uncategorized.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	c, err := s.store.GetCategory(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if c.IsSystem {
		return core.ErrSystemCategory
	}
	if err := s.store.RetargetCategory(ctx, ownerID, id, ""); err != nil {
		return fmt.Errorf("detach transactions: %w", err)
	}
	return s.store.DeleteCategory(ctx, ownerID, id)
}

// Merge moves every transaction from the source category to the target, then
// deletes the source. The source must be a user category; the target may be
// any category the owner has.
func (s *CategoryService) Merge(ctx context.Context, ownerID, sourceID, targetID string) error {
	if sourceID == targetID {
		return fmt.Errorf("merge category into itself")
	}
	source, err := s.store.GetCategory(ctx, ownerID, sourceID)
	if err != nil {
		return err
	}
	if source.IsSystem {
		return core.ErrSystemCategory
	}
	if _, err := s.store.GetCategory(ctx, ownerID, targetID); err != nil {
		return err
	}
	if err := s.store.RetargetCategory(ctx, ownerID, sourceID, targetID); err != nil {
		return fmt.Errorf("retarget transactions: %w", err)
	}
	return s.store.DeleteCategory(ctx, ownerID, sourceID)
}

func (s *CategoryService) ensureNameFree(ctx context.Context, ownerID, name, excludeID string) error {
	existing, err := s.store.ListCategories(ctx, ownerID, true)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range existing {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return fmt.Errorf("category %q already exists", c.Name)
		}
	}
	return nil
}
