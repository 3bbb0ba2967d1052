package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// goalService handles savings-goal business logic.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

func (s *goalService) view(g *models.Goal) *GoalView {
	return &GoalView{Goal: *g, GoalProgress: ledger.GoalProgressOf(g, s.now())}
}

// CreateGoal creates a savings goal. The deadline may not be in the past.
func (s *goalService) CreateGoal(userID string, in GoalInput) (*GoalView, error) {
	current := decimal.Zero
	if in.CurrentAmount != nil {
		current = *in.CurrentAmount
	}
	status := models.GoalStatusActive
	if in.Status != nil {
		status = *in.Status
	}

	if err := ledger.ValidateGoal(ledger.GoalDraft{
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: current,
		Status:        status,
	}); err != nil {
		return nil, err
	}

	var deadline *time.Time
	if in.Deadline != nil {
		if err := ledger.ValidateDeadline(*in.Deadline, s.now()); err != nil {
			return nil, err
		}
		d := ledger.Day(*in.Deadline)
		deadline = &d
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: current,
		Deadline:      deadline,
		Status:        status,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.view(goal), nil
}

// GetUserGoals retrieves a user's goals with their progress, optionally
// restricted to one status.
func (s *goalService) GetUserGoals(userID string, status *models.GoalStatus) ([]GoalView, error) {
	q := s.db.Where("user_id = ?", userID)
	if status != nil {
		if !ledger.IsGoalStatus(*status) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status. Must be 'active', 'completed', or 'paused'")
		}
		q = q.Where("status = ?", *status)
	}

	var goals []models.Goal
	if err := q.Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]GoalView, 0, len(goals))
	for i := range goals {
		views = append(views, *s.view(&goals[i]))
	}
	return views, nil
}

// GetGoalByID retrieves a goal owned by the user, with its progress.
func (s *goalService) GetGoalByID(userID, goalID string) (*GoalView, error) {
	goal, err := loadOwned[models.Goal](s.db, goalID, userID, apperrors.ErrGoalNotFound, "access this goal")
	if err != nil {
		return nil, err
	}
	return s.view(goal), nil
}

// UpdateGoal applies a partial update. Raising the current amount to the
// target completes the goal unless a status is given explicitly.
func (s *goalService) UpdateGoal(userID, goalID string, in GoalUpdate) (*GoalView, error) {
	goal, err := loadOwned[models.Goal](s.db, goalID, userID, apperrors.ErrGoalNotFound, "update this goal")
	if err != nil {
		return nil, err
	}

	draft := ledger.GoalDraft{
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Status:        goal.Status,
	}
	updates := make(map[string]interface{})

	if in.Name != nil {
		draft.Name = *in.Name
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.TargetAmount != nil {
		if in.CurrentAmount == nil && goal.CurrentAmount.GreaterThan(*in.TargetAmount) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"Cannot set target amount less than current amount. Please update current amount first.")
		}
		draft.TargetAmount = *in.TargetAmount
		updates["target_amount"] = *in.TargetAmount
	}
	if in.CurrentAmount != nil {
		draft.CurrentAmount = *in.CurrentAmount
		updates["current_amount"] = *in.CurrentAmount
		if draft.CurrentAmount.GreaterThanOrEqual(draft.TargetAmount) && goal.Status != models.GoalStatusCompleted {
			draft.Status = models.GoalStatusCompleted
			updates["status"] = models.GoalStatusCompleted
		}
	}
	if in.Status != nil {
		draft.Status = *in.Status
		updates["status"] = *in.Status
	}
	if err := ledger.ValidateGoal(draft); err != nil {
		return nil, err
	}

	switch {
	case in.ClearDeadline:
		updates["deadline"] = nil
	case in.Deadline != nil:
		if err := ledger.ValidateDeadline(*in.Deadline, s.now()); err != nil {
			return nil, err
		}
		updates["deadline"] = ledger.Day(*in.Deadline)
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetGoalByID(userID, goal.ID)
}

// DeleteGoal deletes a goal owned by the user.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := loadOwned[models.Goal](s.db, goalID, userID, apperrors.ErrGoalNotFound, "delete this goal")
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddFunds adds to a goal's current amount. Reaching the target completes the goal.
func (s *goalService) AddFunds(userID, goalID string, amount decimal.Decimal) (*GoalView, error) {
	return s.changeFunds(userID, goalID, amount, "add funds to this goal", func(g *models.Goal) (decimal.Decimal, error) {
		next := g.CurrentAmount.Add(amount)
		if next.GreaterThan(g.TargetAmount) {
			room := g.TargetAmount.Sub(g.CurrentAmount)
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrGoalTargetExceeded,
				fmt.Sprintf("Adding %s would exceed the target amount. Maximum you can add: %s",
					amount.StringFixed(2), room.StringFixed(2)))
		}
		return next, nil
	})
}

// WithdrawFunds takes from a goal's current amount. Dropping below the target
// reopens a completed goal.
func (s *goalService) WithdrawFunds(userID, goalID string, amount decimal.Decimal) (*GoalView, error) {
	return s.changeFunds(userID, goalID, amount, "withdraw funds from this goal", func(g *models.Goal) (decimal.Decimal, error) {
		if amount.GreaterThan(g.CurrentAmount) {
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrInsufficientGoalFunds,
				fmt.Sprintf("Cannot withdraw more than the current amount (%s)", g.CurrentAmount.StringFixed(2)))
		}
		return g.CurrentAmount.Sub(amount), nil
	})
}

func (s *goalService) changeFunds(userID, goalID string, amount decimal.Decimal, action string, next func(*models.Goal) (decimal.Decimal, error)) (*GoalView, error) {
	if err := ledger.RequirePositive(amount, "Amount"); err != nil {
		return nil, err
	}

	var goal *models.Goal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		goal, err = loadOwnedForUpdate[models.Goal](tx, goalID, userID, apperrors.ErrGoalNotFound, action)
		if err != nil {
			return err
		}

		current, err := next(goal)
		if err != nil {
			return err
		}
		goal.CurrentAmount = current
		goal.Status = ledger.GoalStatusAfterChange(goal.Status, current, goal.TargetAmount)

		updates := map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"status":         goal.Status,
		}
		if err := tx.Model(goal).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(goal), nil
}

// GetGoalSummary aggregates a user's goals as of today.
func (s *goalService) GetGoalSummary(userID string) (*ledger.GoalSummary, error) {
	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary := ledger.SummarizeGoals(goals, s.now())
	return &summary, nil
}
