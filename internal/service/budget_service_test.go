package service

import (
	"context"
	"testing"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newBudgetFixture() (*budgetService, *memBudgetRepo, *memAuditRepo) {
	budgets := newMemBudgetRepo()
	audits := &memAuditRepo{}
	svc := NewBudgetService(budgets, audits, memTxManager{}).(*budgetService)
	return svc, budgets, audits
}

func directorActor() Actor {
	return Actor{ID: uuid.New(), Role: model.RoleDirector, Area: "Dirección"}
}

func TestEvaluateBudgetTiers(t *testing.T) {
	cases := []struct {
		name             string
		total            string
		spent            string
		requested        string
		wantLevel        string
		requiresApproval bool
	}{
		{"well under budget", "100000", "10000", "5000", model.BudgetAlertNone, false},
		{"crosses 75 percent", "100000", "70000", "6000", model.BudgetAlertInfo, false},
		{"crosses 90 percent", "100000", "85000", "6000", model.BudgetAlertWarning, false},
		{"exactly at limit", "100000", "90000", "10000", model.BudgetAlertCritical, true},
		{"over limit", "100000", "95000", "10000", model.BudgetAlertCritical, true},
		{"zero total with spend", "0", "0", "1", model.BudgetAlertCritical, true},
		{"zero total no spend", "0", "0", "0", model.BudgetAlertNone, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateBudget("Finanzas", 2026, dec(tc.total), dec(tc.spent), dec(tc.requested))
			assert.Equal(t, tc.wantLevel, got.AlertLevel)
			assert.Equal(t, tc.requiresApproval, got.RequiresApproval)
			assert.True(t, got.Available.Equal(dec(tc.total).Sub(dec(tc.spent))))
		})
	}
}

func TestEvaluateBudgetFinanzasOverCommit(t *testing.T) {
	// 900k committed of 1M, a 150k request lands at 105%
	got := EvaluateBudget("Finanzas", 2026, dec("1000000"), dec("900000"), dec("150000"))
	assert.Equal(t, model.BudgetAlertCritical, got.AlertLevel)
	assert.True(t, got.RequiresApproval)
	assert.InDelta(t, 105.0, got.NewPercentage, 0.001)
}

func TestBudgetCheckAvailability(t *testing.T) {
	svc, budgets, _ := newBudgetFixture()
	ctx := context.Background()

	require.NoError(t, budgets.Create(ctx, &model.Budget{Area: "Mantenimiento", Year: 2026, TotalAmount: dec("500000")}))
	budgets.spent[spendKey("Mantenimiento", 2026)] = dec("400000")

	availability, err := svc.CheckAvailability(ctx, "Mantenimiento", dec("50000"), 2026)
	require.NoError(t, err)
	assert.Equal(t, model.BudgetAlertWarning, availability.AlertLevel)
	assert.False(t, availability.RequiresApproval)
	assert.True(t, availability.Available.Equal(dec("100000")))
}

func TestBudgetCheckAvailabilityMissingBudget(t *testing.T) {
	svc, _, _ := newBudgetFixture()

	_, err := svc.CheckAvailability(context.Background(), "Sistemas", dec("1000"), 2026)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestBudgetCheckAvailabilityNegativeAmount(t *testing.T) {
	svc, _, _ := newBudgetFixture()

	_, err := svc.CheckAvailability(context.Background(), "Sistemas", dec("-1"), 2026)
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestBudgetCreate(t *testing.T) {
	svc, _, audits := newBudgetFixture()
	ctx := context.Background()
	actor := directorActor()

	budget, err := svc.Create(ctx, actor, BudgetDTO{Area: "Cocina", Year: 2026, TotalAmount: dec("250000")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, budget.ID)
	assert.Contains(t, audits.actions(), model.ActionCreateBudget)

	// Same area/year is rejected
	_, err = svc.Create(ctx, actor, BudgetDTO{Area: "Cocina", Year: 2026, TotalAmount: dec("300000")})
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestBudgetCreateRequiresDirector(t *testing.T) {
	svc, _, _ := newBudgetFixture()
	actor := Actor{ID: uuid.New(), Role: model.RoleComprador, Area: "Compras"}

	_, err := svc.Create(context.Background(), actor, BudgetDTO{Area: "Cocina", Year: 2026, TotalAmount: dec("1000")})
	assert.ErrorIs(t, err, apierror.ErrAuthorization)
}

func TestBudgetCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newBudgetFixture()

	_, err := svc.Create(context.Background(), directorActor(), BudgetDTO{Area: "Cocina", Year: 2026, TotalAmount: decimal.Zero})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestBudgetOverview(t *testing.T) {
	svc, budgets, _ := newBudgetFixture()
	ctx := context.Background()

	require.NoError(t, budgets.Create(ctx, &model.Budget{Area: "Cocina", Year: 2026, TotalAmount: dec("100000")}))
	require.NoError(t, budgets.Create(ctx, &model.Budget{Area: "Limpieza", Year: 2026, TotalAmount: dec("50000")}))
	budgets.spent[spendKey("Cocina", 2026)] = dec("80000")

	overview, err := svc.Overview(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, overview, 2)

	byArea := make(map[string]Availability, len(overview))
	for _, a := range overview {
		byArea[a.Area] = a
	}
	assert.Equal(t, model.BudgetAlertInfo, byArea["Cocina"].AlertLevel)
	assert.Equal(t, model.BudgetAlertNone, byArea["Limpieza"].AlertLevel)
}
