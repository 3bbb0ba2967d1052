package services

import (
	"testing"
	"time"

	"tesoro/internal/models"
	"tesoro/internal/testutil"
)

func TestCreateGoal(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(user.ID, GoalInput{Name: "Vacation", TargetAmount: dec("2000"), Deadline: ptr(day("2025-03-20"))})
		testutil.AssertNoError(t, err)

		if goal.Status != models.GoalStatusActive {
			t.Errorf("expected active, got %s", goal.Status)
		}
		if !goal.CurrentAmount.IsZero() {
			t.Errorf("expected zero current amount, got %s", goal.CurrentAmount)
		}
		if !goal.RemainingAmount.Equal(dec("2000")) {
			t.Errorf("expected remaining 2000, got %s", goal.RemainingAmount)
		}
		if goal.DaysRemaining == nil || *goal.DaysRemaining != 10 {
			t.Errorf("expected 10 days remaining, got %v", goal.DaysRemaining)
		}
	})

	t.Run("deadline_today_is_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGoal(user.ID, GoalInput{Name: "Today", TargetAmount: dec("10"), Deadline: ptr(day("2025-03-10"))})
		testutil.AssertNoError(t, err)
	})

	tests := []struct {
		name string
		in   GoalInput
	}{
		{name: "past_deadline", in: GoalInput{Name: "Late", TargetAmount: dec("10"), Deadline: ptr(day("2025-03-09"))}},
		{name: "zero_target", in: GoalInput{Name: "Zero", TargetAmount: dec("0")}},
		{name: "current_above_target", in: GoalInput{Name: "Over", TargetAmount: dec("10"), CurrentAmount: ptr(dec("11"))}},
		{name: "bad_status", in: GoalInput{Name: "Odd", TargetAmount: dec("10"), Status: ptr(models.GoalStatus("archived"))}},
		{name: "empty_name", in: GoalInput{Name: "", TargetAmount: dec("10")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := newTestGoalService(db)
			user := testutil.CreateTestUser(t, db)

			_, err := svc.CreateGoal(user.ID, tt.in)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		})
	}
}

func TestGetUserGoals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestGoal(t, db, user.ID, "100", "10", models.GoalStatusActive)
	testutil.CreateTestGoal(t, db, user.ID, "100", "10", models.GoalStatusPaused)
	testutil.CreateTestGoal(t, db, user.ID, "100", "100", models.GoalStatusCompleted)

	all, err := svc.GetUserGoals(user.ID, nil)
	testutil.AssertNoError(t, err)
	if len(all) != 3 {
		t.Errorf("expected 3 goals, got %d", len(all))
	}

	paused, err := svc.GetUserGoals(user.ID, ptr(models.GoalStatusPaused))
	testutil.AssertNoError(t, err)
	if len(paused) != 1 || paused[0].Status != models.GoalStatusPaused {
		t.Errorf("expected one paused goal, got %d", len(paused))
	}

	_, err = svc.GetUserGoals(user.ID, ptr(models.GoalStatus("nope")))
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestUpdateGoal(t *testing.T) {
	t.Run("target_below_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "60", models.GoalStatusActive)

		_, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{TargetAmount: ptr(dec("50"))})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("target_and_current_together", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "60", models.GoalStatusActive)

		updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{TargetAmount: ptr(dec("50")), CurrentAmount: ptr(dec("20"))})
		testutil.AssertNoError(t, err)
		if !updated.TargetAmount.Equal(dec("50")) || !updated.CurrentAmount.Equal(dec("20")) {
			t.Errorf("unexpected amounts %s/%s", updated.CurrentAmount, updated.TargetAmount)
		}
	})

	t.Run("reaching_target_completes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "60", models.GoalStatusActive)

		updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{CurrentAmount: ptr(dec("100"))})
		testutil.AssertNoError(t, err)
		if updated.Status != models.GoalStatusCompleted {
			t.Errorf("expected completed, got %s", updated.Status)
		}
		if !updated.IsCompleted {
			t.Error("expected IsCompleted")
		}
	})

	t.Run("explicit_status_wins", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "60", models.GoalStatusActive)

		updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{CurrentAmount: ptr(dec("100")), Status: ptr(models.GoalStatusPaused)})
		testutil.AssertNoError(t, err)
		if updated.Status != models.GoalStatusPaused {
			t.Errorf("expected paused, got %s", updated.Status)
		}
	})

	t.Run("deadline_set_and_cleared", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "0", models.GoalStatusActive)

		updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{Deadline: ptr(day("2025-04-09"))})
		testutil.AssertNoError(t, err)
		if updated.DaysRemaining == nil || *updated.DaysRemaining != 30 {
			t.Errorf("expected 30 days remaining, got %v", updated.DaysRemaining)
		}

		cleared, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{ClearDeadline: true})
		testutil.AssertNoError(t, err)
		if cleared.Deadline != nil || cleared.DaysRemaining != nil {
			t.Error("expected deadline to be cleared")
		}
	})

	t.Run("past_deadline", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "100", "0", models.GoalStatusActive)

		_, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{Deadline: ptr(day("2024-12-31"))})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAddFunds(t *testing.T) {
	t.Run("completes_on_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "1000", "900", models.GoalStatusActive)

		view, err := svc.AddFunds(user.ID, goal.ID, dec("100"))
		testutil.AssertNoError(t, err)
		if view.Status != models.GoalStatusCompleted {
			t.Errorf("expected completed, got %s", view.Status)
		}
		if !view.RemainingAmount.IsZero() {
			t.Errorf("expected nothing remaining, got %s", view.RemainingAmount)
		}
	})

	t.Run("exceeds_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "1000", "900", models.GoalStatusActive)

		_, err := svc.AddFunds(user.ID, goal.ID, dec("150"))
		testutil.AssertAppError(t, err, "GOAL_TARGET_EXCEEDED")
		if err.Error() != "Adding 150.00 would exceed the target amount. Maximum you can add: 100.00" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("non_positive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "1000", "0", models.GoalStatusActive)

		_, err := svc.AddFunds(user.ID, goal.ID, dec("-5"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestWithdrawFunds(t *testing.T) {
	t.Run("reopens_completed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "500", "500", models.GoalStatusCompleted)

		view, err := svc.WithdrawFunds(user.ID, goal.ID, dec("50"))
		testutil.AssertNoError(t, err)
		if view.Status != models.GoalStatusActive {
			t.Errorf("expected active, got %s", view.Status)
		}
		if !view.CurrentAmount.Equal(dec("450")) {
			t.Errorf("expected 450, got %s", view.CurrentAmount)
		}

		stored, err := svc.GetGoalByID(user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		if stored.Status != models.GoalStatusActive {
			t.Errorf("expected stored status active, got %s", stored.Status)
		}
	})

	t.Run("paused_stays_paused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "500", "100", models.GoalStatusPaused)

		view, err := svc.WithdrawFunds(user.ID, goal.ID, dec("100"))
		testutil.AssertNoError(t, err)
		if view.Status != models.GoalStatusPaused {
			t.Errorf("expected paused, got %s", view.Status)
		}
	})

	t.Run("more_than_saved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestGoalService(db)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, "500", "100", models.GoalStatusActive)

		_, err := svc.WithdrawFunds(user.ID, goal.ID, dec("100.01"))
		testutil.AssertAppError(t, err, "INSUFFICIENT_GOAL_FUNDS")
	})
}

func TestGetGoalSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestGoalService(db)
	user := testutil.CreateTestUser(t, db)

	near := testutil.CreateTestGoal(t, db, user.ID, "1000", "250", models.GoalStatusActive)
	overdue := testutil.CreateTestGoal(t, db, user.ID, "1000", "250", models.GoalStatusActive)
	testutil.CreateTestGoal(t, db, user.ID, "2000", "2000", models.GoalStatusCompleted)

	setDeadline := func(g *models.Goal, d time.Time) {
		t.Helper()
		if err := db.Model(g).Update("deadline", d).Error; err != nil {
			t.Fatalf("failed to set deadline: %v", err)
		}
	}
	setDeadline(near, day("2025-03-15"))
	setDeadline(overdue, day("2025-03-01"))

	summary, err := svc.GetGoalSummary(user.ID)
	testutil.AssertNoError(t, err)

	if summary.TotalGoals != 3 || summary.ActiveGoals != 2 || summary.CompletedGoals != 1 {
		t.Errorf("unexpected counts %+v", *summary)
	}
	if !summary.TotalTarget.Equal(dec("4000")) || !summary.TotalSaved.Equal(dec("2500")) {
		t.Errorf("unexpected totals target=%s saved=%s", summary.TotalTarget, summary.TotalSaved)
	}
	if summary.OverallProgress != 62.5 {
		t.Errorf("expected progress 62.5, got %v", summary.OverallProgress)
	}
	if summary.GoalsNearDeadline != 1 {
		t.Errorf("expected 1 goal near deadline, got %d", summary.GoalsNearDeadline)
	}
	if summary.OverdueGoals != 1 {
		t.Errorf("expected 1 overdue goal, got %d", summary.OverdueGoals)
	}
}
