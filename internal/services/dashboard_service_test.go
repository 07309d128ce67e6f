package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrence-gonsalves/truespend/internal/core"
	"github.com/terrence-gonsalves/truespend/internal/store/memory"
)

func TestTrendDays(t *testing.T) {
	now := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   int
	}{
		{"7", 7},
		{"14", 14},
		{"30", 30},
		{"month", 18},
		{"", 7},
		{"junk", 7},
	}
	for _, tt := range tests {
		if got := TrendDays(tt.period, now); got != tt.want {
			t.Errorf("TrendDays(%q) = %d, want %d", tt.period, got, tt.want)
		}
	}
}

func TestAlertLevel(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "ok"},
		{79.9, "ok"},
		{80, "warning"},
		{99.9, "warning"},
		{100, "over"},
		{140, "over"},
	}
	for _, tt := range tests {
		if got := alertLevel(tt.pct); got != tt.want {
			t.Errorf("alertLevel(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestFeaturedAlerts(t *testing.T) {
	alert := func(name string, spent int64, pct float64) BudgetAlert {
		return BudgetAlert{
			CategoryName: name,
			Spent:        decimal.NewFromInt(spent),
			Percentage:   pct,
			Level:        alertLevel(pct),
		}
	}

	// Seven budgeted categories: the five biggest spenders plus two smaller
	// ones that are over their budgets anyway.
	alerts := []BudgetAlert{
		alert("Rent", 1500, 75),
		alert("Groceries", 600, 60),
		alert("Dining", 400, 95),
		alert("Transport", 300, 50),
		alert("Utilities", 250, 40),
		alert("Hobbies", 90, 110),
		alert("Coffee", 40, 85),
	}

	featured := featuredAlerts(alerts)
	require.Len(t, featured, 7)

	// Over-threshold categories outside the top five lead the list.
	assert.Equal(t, "Hobbies", featured[0].CategoryName)
	assert.Equal(t, "Coffee", featured[1].CategoryName)
	// Then the top spenders, ranked by spend.
	assert.Equal(t, "Rent", featured[2].CategoryName)

	names := make(map[string]int)
	for _, a := range featured {
		names[a.CategoryName]++
	}
	for name, n := range names {
		assert.Equal(t, 1, n, "duplicate alert for %s", name)
	}
}

func TestFeaturedAlerts_Cap(t *testing.T) {
	var alerts []BudgetAlert
	for i := 0; i < 9; i++ {
		alerts = append(alerts, BudgetAlert{
			CategoryName: fmt.Sprintf("over-%d", i),
			Spent:        decimal.NewFromInt(int64(10 + i)),
			Percentage:   120,
		})
	}
	for i := 0; i < 5; i++ {
		alerts = append(alerts, BudgetAlert{
			CategoryName: fmt.Sprintf("big-%d", i),
			Spent:        decimal.NewFromInt(int64(1000 + i)),
			Percentage:   20,
		})
	}

	featured := featuredAlerts(alerts)
	assert.Len(t, featured, maxBudgetAlerts)
}

func TestSummary(t *testing.T) {
	st := memory.New()
	svc := NewDashboardService(st)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }

	groceries, err := st.CreateCategory(context.Background(), core.Category{
		OwnerID: testOwner, Name: "Groceries", Color: "#10B981",
	})
	require.NoError(t, err)

	addTransaction(t, st, testOwner, "2024-03-01", "SALARY", "2000.00", "")
	addTransaction(t, st, testOwner, "2024-03-05", "MARKET", "-120.00", groceries.ID)
	addTransaction(t, st, testOwner, "2024-03-09", "TAKEOUT", "-30.00", "")
	// Previous month stays out of the totals
	addTransaction(t, st, testOwner, "2024-02-10", "OLD", "-500.00", groceries.ID)

	month, _ := core.ParseMonth("2024-03")
	budgets := NewBudgetService(st)
	_, err = budgets.SetBudget(context.Background(), testOwner, groceries.ID, month, decimal.NewFromInt(140))
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), testOwner, "7")
	require.NoError(t, err)

	assert.True(t, summary.Totals.Income.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.Totals.Expenses.Equal(decimal.NewFromInt(150)))
	assert.True(t, summary.Totals.Net.Equal(decimal.NewFromInt(1850)))

	require.Len(t, summary.SpendingByCategory, 2)
	assert.Equal(t, "Groceries", summary.SpendingByCategory[0].Name)
	assert.Equal(t, "Uncategorized", summary.SpendingByCategory[1].Name)
	assert.Equal(t, "#6B7280", summary.SpendingByCategory[1].Color)

	// Seven zero-filled days ending today, chronological
	require.Len(t, summary.SpendingTrend, 7)
	assert.Equal(t, "2024-03-04", summary.SpendingTrend[0].Date)
	assert.Equal(t, "2024-03-10", summary.SpendingTrend[6].Date)
	assert.True(t, summary.SpendingTrend[1].Amount.Equal(decimal.NewFromInt(120)), "2024-03-05 spend")
	assert.True(t, summary.SpendingTrend[6].Amount.IsZero())

	require.Len(t, summary.RecentTransactions, 4)
	assert.Equal(t, "TAKEOUT", summary.RecentTransactions[0].Description)

	require.Len(t, summary.BudgetAlerts, 1)
	a := summary.BudgetAlerts[0]
	assert.Equal(t, "Groceries", a.CategoryName)
	assert.True(t, a.Spent.Equal(decimal.NewFromInt(120)))
	assert.InDelta(t, 85.7, a.Percentage, 0.1)
	assert.Equal(t, "warning", a.Level)
}
