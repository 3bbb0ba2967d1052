package testutil_test

import (
	"testing"
	"time"

	"tesoro/internal/errors"
	"tesoro/internal/models"
	"tesoro/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "accounts", "categories", "transactions", "budgets", "debts", "goals", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if user.Status != models.UserStatusActive {
		t.Errorf("expected active user, got %s", user.Status)
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "50.25")
	if !account.CurrentBalance.Equal(testutil.Dec("50.25")) {
		t.Errorf("expected balance 50.25, got %s", account.CurrentBalance)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, &category.ID, models.TransactionTypeExpense, "10", date)
	if !tx.Amount.Equal(testutil.Dec("10")) {
		t.Errorf("expected amount 10, got %s", tx.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID)
	if !budget.AmountLimit.Equal(testutil.Dec("200")) {
		t.Errorf("expected budget limit 200, got %s", budget.AmountLimit)
	}

	debt := testutil.CreateTestDebt(t, db, user.ID, "1000", "600")
	if !debt.RemainingAmount.Equal(testutil.Dec("600")) {
		t.Errorf("expected remaining 600, got %s", debt.RemainingAmount)
	}

	goal := testutil.CreateTestGoal(t, db, user.ID, "500", "0", models.GoalStatusActive)
	if goal.Status != models.GoalStatusActive {
		t.Errorf("expected active goal, got %s", goal.Status)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrUserNotFound, "USER_NOT_FOUND")
	testutil.AssertNoError(t, nil)
}
