package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

const (
	recentTransactionLimit = 10
	maxBudgetAlerts        = 10
	alertWarningThreshold  = 80.0
	alertOverThreshold     = 100.0
)

// DashboardService computes the dashboard summary: month totals, category
// spend ranking, daily spend trend, recent transactions and budget alerts.
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

func NewDashboardService(st store.Store) *DashboardService {
	return &DashboardService{store: st, now: time.Now}
}

type (
	Totals struct {
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
		Net      decimal.Decimal `json:"net"`
	}

	CategorySpend struct {
		Name   string          `json:"name"`
		Color  string          `json:"color"`
		Amount decimal.Decimal `json:"amount"`
	}

	DailySpend struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	// BudgetAlert surfaces a budgeted category whose spend ratio is high or
	// whose absolute spend is large. Level is "ok" below 80% utilization,
	// "warning" in [80, 100) and "over" at 100% and beyond.
	BudgetAlert struct {
		CategoryName  string          `json:"category_name"`
		CategoryColor string          `json:"category_color"`
		BudgetAmount  decimal.Decimal `json:"budget_amount"`
		Spent         decimal.Decimal `json:"spent"`
		Percentage    float64         `json:"percentage"`
		Level         string          `json:"level"`
	}

	Summary struct {
		Totals             Totals             `json:"summary"`
		SpendingByCategory []CategorySpend    `json:"spending_by_category"`
		SpendingTrend      []DailySpend       `json:"spending_trend"`
		RecentTransactions []core.Transaction `json:"recent_transactions"`
		BudgetAlerts       []BudgetAlert      `json:"budget_alerts"`
	}
)

// TrendDays resolves a trend period ("7", "14", "30" or "month") to a day
// count. "month" means days elapsed in the current month.
func TrendDays(period string, now time.Time) int {
	switch period {
	case "14":
		return 14
	case "30":
		return 30
	case "month":
		return now.Day()
	default:
		return 7
	}
}

// Summary computes the full dashboard for the current month. Per-budget spend
// reads are independent and issued concurrently.
func (s *DashboardService) Summary(ctx context.Context, ownerID, trendPeriod string) (Summary, error) {
	now := s.now()
	month := core.CurrentMonth(now)
	monthStart, monthEnd := month.Bounds()

	monthTxs, _, err := s.store.ListTransactions(ctx, ownerID, store.TransactionFilter{
		DateFrom: &monthStart,
		DateTo:   &monthEnd,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("month transactions: %w", err)
	}

	categories, err := s.store.ListCategories(ctx, ownerID, true)
	if err != nil {
		return Summary{}, fmt.Errorf("list categories: %w", err)
	}
	categoryByID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	summary := Summary{
		Totals:             computeTotals(monthTxs),
		SpendingByCategory: spendingByCategory(monthTxs, categoryByID),
	}

	trend, err := s.spendingTrend(ctx, ownerID, TrendDays(trendPeriod, now), now)
	if err != nil {
		return Summary{}, err
	}
	summary.SpendingTrend = trend

	recent, _, err := s.store.ListTransactions(ctx, ownerID, store.TransactionFilter{
		Limit: recentTransactionLimit,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("recent transactions: %w", err)
	}
	summary.RecentTransactions = recent

	alerts, err := s.budgetAlerts(ctx, ownerID, month, categoryByID)
	if err != nil {
		return Summary{}, err
	}
	summary.BudgetAlerts = alerts

	return summary, nil
}

func computeTotals(txs []core.Transaction) Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if t.IsIncome {
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount.Abs())
		}
	}
	return Totals{Income: income, Expenses: expenses, Net: income.Sub(expenses)}
}

// spendingByCategory groups the month's expenses by category name, ranked by
// amount descending. Transactions without a category land in "Uncategorized".
func spendingByCategory(txs []core.Transaction, categoryByID map[string]core.Category) []CategorySpend {
	grouped := make(map[string]*CategorySpend)
	for _, t := range txs {
		if t.IsIncome {
			continue
		}
		name, color := "Uncategorized", "#6B7280"
		if c, ok := categoryByID[t.CategoryID]; ok {
			name, color = c.Name, c.Color
		}
		entry, ok := grouped[name]
		if !ok {
			entry = &CategorySpend{Name: name, Color: color, Amount: decimal.Zero}
			grouped[name] = entry
		}
		entry.Amount = entry.Amount.Add(t.Amount.Abs())
	}

	out := make([]CategorySpend, 0, len(grouped))
	for _, entry := range grouped {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// spendingTrend returns a zero-filled daily expense series for the window
// ending today, in chronological order.
func (s *DashboardService) spendingTrend(ctx context.Context, ownerID string, days int, now time.Time) ([]DailySpend, error) {
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	windowStart := core.Date{Time: today.AddDate(0, 0, -(days - 1))}

	txs, _, err := s.store.ListTransactions(ctx, ownerID, store.TransactionFilter{
		DateFrom: &windowStart,
		DateTo:   &today,
		Type:     "expense",
	})
	if err != nil {
		return nil, fmt.Errorf("trend transactions: %w", err)
	}

	byDay := make(map[string]decimal.Decimal, days)
	for _, t := range txs {
		byDay[t.Date.ISO()] = byDay[t.Date.ISO()].Add(t.Amount.Abs())
	}

	trend := make([]DailySpend, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := core.Date{Time: today.AddDate(0, 0, -i)}
		trend = append(trend, DailySpend{Date: day.ISO(), Amount: byDay[day.ISO()]})
	}
	return trend, nil
}

// budgetAlerts combines any budgeted category at or above 80% utilization
// with the five highest-spend budgeted categories, over-80% entries first,
// deduplicated by category name and capped at ten.
func (s *DashboardService) budgetAlerts(ctx context.Context, ownerID string, month core.Month, categoryByID map[string]core.Category) ([]BudgetAlert, error) {
	budgets, err := s.store.ListBudgets(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	monthStart, monthEnd := month.Bounds()
	alerts := make([]BudgetAlert, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, budget := range budgets {
		g.Go(func() error {
			txs, _, err := s.store.ListTransactions(gctx, ownerID, store.TransactionFilter{
				DateFrom:   &monthStart,
				DateTo:     &monthEnd,
				CategoryID: budget.CategoryID,
				Type:       "expense",
			})
			if err != nil {
				return fmt.Errorf("budget spend: %w", err)
			}

			spent := decimal.Zero
			for _, t := range txs {
				spent = spent.Add(t.Amount.Abs())
			}

			pct := percentage(spent, budget.Amount)
			category := categoryByID[budget.CategoryID]
			alerts[i] = BudgetAlert{
				CategoryName:  category.Name,
				CategoryColor: category.Color,
				BudgetAmount:  budget.Amount,
				Spent:         spent,
				Percentage:    pct,
				Level:         alertLevel(pct),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return featuredAlerts(alerts), nil
}

func alertLevel(pct float64) string {
	switch {
	case pct >= alertOverThreshold:
		return "over"
	case pct >= alertWarningThreshold:
		return "warning"
	default:
		return "ok"
	}
}

func featuredAlerts(alerts []BudgetAlert) []BudgetAlert {
	bySpend := make([]BudgetAlert, len(alerts))
	copy(bySpend, alerts)
	sort.Slice(bySpend, func(i, j int) bool {
		return bySpend[i].Spent.GreaterThan(bySpend[j].Spent)
	})

	top5 := bySpend
	if len(top5) > 5 {
		top5 = top5[:5]
	}
	inTop5 := make(map[string]bool, len(top5))
	for _, a := range top5 {
		inTop5[a.CategoryName] = true
	}

	var over80 []BudgetAlert
	for _, a := range alerts {
		if a.Percentage >= alertWarningThreshold && !inTop5[a.CategoryName] {
			over80 = append(over80, a)
		}
	}

	seen := make(map[string]bool)
	var featured []BudgetAlert
	for _, a := range append(over80, top5...) {
		if seen[a.CategoryName] {
			continue
		}
		seen[a.CategoryName] = true
		featured = append(featured, a)
		if len(featured) == maxBudgetAlerts {
			break
		}
	}
	return featured
}
