package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"tesoro/internal/models"
)

// DebtProgress holds the figures derived from a debt's amounts.
type DebtProgress struct {
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	PaymentProgress float64         `json:"payment_progress"`
	IsPaidOff       bool            `json:"is_paid_off"`
}

// DebtProgressOf derives paid amount, percentage paid and payoff state.
func DebtProgressOf(d *models.Debt) DebtProgress {
	paid := d.TotalAmount.Sub(d.RemainingAmount)
	return DebtProgress{
		PaidAmount:      paid,
		PaymentProgress: Percent(paid, d.TotalAmount),
		IsPaidOff:       d.RemainingAmount.IsZero(),
	}
}

// GoalProgress holds the figures derived from a goal's amounts and deadline.
type GoalProgress struct {
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Progress        float64         `json:"progress"`
	IsCompleted     bool            `json:"is_completed"`
	DaysRemaining   *int            `json:"days_remaining"`
	IsOverdue       bool            `json:"is_overdue"`
}

// GoalProgressOf derives remaining amount, percentage saved and deadline
// distance relative to today. DaysRemaining is nil for goals without a deadline.
func GoalProgressOf(g *models.Goal, today time.Time) GoalProgress {
	p := GoalProgress{
		RemainingAmount: g.TargetAmount.Sub(g.CurrentAmount),
		Progress:        Percent(g.CurrentAmount, g.TargetAmount),
		IsCompleted:     g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount),
	}
	if g.Deadline != nil {
		days := DaysBetween(today, *g.Deadline)
		p.DaysRemaining = &days
		p.IsOverdue = days < 0
	}
	return p
}

// GoalStatusAfterChange returns the status a goal should hold once its
// current amount becomes newCurrent: reaching the target completes it, and
// falling below the target reopens a completed goal. Paused goals that do
// not reach the target stay paused.
func GoalStatusAfterChange(status models.GoalStatus, newCurrent, target decimal.Decimal) models.GoalStatus {
	if newCurrent.GreaterThanOrEqual(target) {
		return models.GoalStatusCompleted
	}
	if status == models.GoalStatusCompleted {
		return models.GoalStatusActive
	}
	return status
}
