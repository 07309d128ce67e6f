package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionHash_Deterministic(t *testing.T) {
	date := NewDate(2024, 1, 15)
	amount := decimal.NewFromFloat(-45.50)

	h1 := TransactionHash(date, "COFFEE SHOP", amount)
	h2 := TransactionHash(date, "COFFEE SHOP", amount)
	if h1 != h2 {
		t.Errorf("same input produced different hashes: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestTransactionHash_TrailingZerosCollapse(t *testing.T) {
	date := NewDate(2024, 1, 15)

	a, _ := decimal.NewFromString("45.00")
	b, _ := decimal.NewFromString("45")
	if TransactionHash(date, "X", a) != TransactionHash(date, "X", b) {
		t.Error("45.00 and 45 should hash identically")
	}

	c, _ := decimal.NewFromString("45.10")
	d, _ := decimal.NewFromString("45.1")
	if TransactionHash(date, "X", c) != TransactionHash(date, "X", d) {
		t.Error("45.10 and 45.1 should hash identically")
	}
}

func TestTransactionHash_FieldSensitivity(t *testing.T) {
	date := NewDate(2024, 1, 15)
	amount := decimal.NewFromInt(-45)
	base := TransactionHash(date, "COFFEE", amount)

	if TransactionHash(NewDate(2024, 1, 16), "COFFEE", amount) == base {
		t.Error("different date should change the hash")
	}
	if TransactionHash(date, "COFFEE BAR", amount) == base {
		t.Error("different description should change the hash")
	}
	if TransactionHash(date, "COFFEE", decimal.NewFromInt(45)) == base {
		t.Error("different sign should change the hash")
	}
}

func TestIsIncome(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"100.50", true},
		{"0.01", true},
		{"0", false}, // zero is an expense, not income
		{"-0.01", false},
		{"-45", false},
	}
	for _, tt := range tests {
		amount, _ := decimal.NewFromString(tt.amount)
		if got := IsIncome(amount); got != tt.want {
			t.Errorf("IsIncome(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}
