package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// Goal is a savings target. Reaching the target completes it; withdrawing
// below the target reopens a completed goal.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"current_amount"`
	Deadline      *time.Time      `gorm:"type:date" json:"deadline"`
	Status        GoalStatus      `gorm:"not null;default:'active'" json:"status"`
}

// OwnerID implements Owned.
func (g *Goal) OwnerID() string { return g.UserID }
