package models

import "github.com/shopspring/decimal"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
)

// Budget caps spending for one category. A user has at most one budget per category.
type Budget struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"category_id"`
	AmountLimit decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount_limit"`
	Period      BudgetPeriod    `gorm:"not null" json:"period"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// OwnerID implements Owned.
func (b *Budget) OwnerID() string { return b.UserID }
