package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

// BudgetService computes budget-vs-actual rollups and manages budget rows.
type BudgetService struct {
	store store.Store
	now   func() time.Time
}

func NewBudgetService(st store.Store) *BudgetService {
	return &BudgetService{store: st, now: time.Now}
}

// CategoryBudgetStatus pairs an active category with its month budget (if
// any) and the month's expense total. Percentage and remaining are zero when
// no budget exists.
type CategoryBudgetStatus struct {
	Category   core.Category   `json:"category"`
	Budget     *core.Budget    `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// MonthOption is one entry of the available-months selector.
type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MonthlyStatus returns the budget-vs-spend status of every active category
// for the month. Per-category spend reads are independent and issued
// concurrently.
func (s *BudgetService) MonthlyStatus(ctx context.Context, ownerID string, month core.Month) ([]CategoryBudgetStatus, error) {
	categories, err := s.store.ListCategories(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	budgets, err := s.store.ListBudgets(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	budgetByCategory := make(map[string]core.Budget, len(budgets))
	for _, b := range budgets {
		budgetByCategory[b.CategoryID] = b
	}

	statuses := make([]CategoryBudgetStatus, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			spent, err := s.monthSpend(gctx, ownerID, category.ID, month)
			if err != nil {
				return err
			}

			status := CategoryBudgetStatus{
				Category:  category,
				Spent:     spent,
				Remaining: decimal.Zero,
			}
			if b, ok := budgetByCategory[category.ID]; ok {
				budget := b
				status.Budget = &budget
				status.Remaining = budget.Amount.Sub(spent)
				status.Percentage = percentage(spent, budget.Amount)
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return statuses, nil
}

// monthSpend sums abs(amount) over the category's non-income transactions in
// the month.
func (s *BudgetService) monthSpend(ctx context.Context, ownerID, categoryID string, month core.Month) (decimal.Decimal, error) {
	start, end := month.Bounds()
	txs, _, err := s.store.ListTransactions(ctx, ownerID, store.TransactionFilter{
		DateFrom:   &start,
		DateTo:     &end,
		CategoryID: categoryID,
		Type:       "expense",
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("category spend: %w", err)
	}

	spent := decimal.Zero
	for _, t := range txs {
		spent = spent.Add(t.Amount.Abs())
	}
	return spent, nil
}

// SetBudget upserts the budget for (owner, category, month); an existing row
// gets its amount replaced.
func (s *BudgetService) SetBudget(ctx context.Context, ownerID, categoryID string, month core.Month, amount decimal.Decimal) (core.Budget, error) {
	b := core.Budget{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Month:      month,
		Amount:     amount,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	return saved, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, ownerID, categoryID string, month core.Month) error {
	if err := s.store.DeleteBudget(ctx, ownerID, categoryID, month); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// AvailableMonths enumerates every month between the owner's earliest and
// latest transaction dates, extended one month forward for planning, most
// recent first. An empty ledger yields just the current month.
func (s *BudgetService) AvailableMonths(ctx context.Context, ownerID string) ([]MonthOption, error) {
	earliest, latest, ok, err := s.store.DateSpan(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("date span: %w", err)
	}
	if !ok {
		m := core.CurrentMonth(s.now())
		return []MonthOption{{Value: m.String(), Label: m.Label()}}, nil
	}

	first := earliest.MonthOf()
	last := latest.MonthOf().Next()

	var months []MonthOption
	for m := first; !last.Before(m); m = m.Next() {
		months = append(months, MonthOption{Value: m.String(), Label: m.Label()})
	}

	// Most recent first
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}
	return months, nil
}

// percentage returns spent/budget*100, or 0 for a non-positive budget.
func percentage(spent, budget decimal.Decimal) float64 {
	if budget.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := spent.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
