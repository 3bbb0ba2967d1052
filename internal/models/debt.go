package models

import "github.com/shopspring/decimal"

// Debt tracks an amount owed. RemainingAmount only decreases through payments
// and never exceeds TotalAmount.
type Debt struct {
	Base
	UserID          string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string           `gorm:"not null" json:"name"`
	TotalAmount     decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	RemainingAmount decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"remaining_amount"`
	InterestRate    *float64         `gorm:"type:numeric(5,2)" json:"interest_rate"`
	MinimumPayment  *decimal.Decimal `gorm:"type:numeric(14,2)" json:"minimum_payment"`
	DueDay          *int             `json:"due_day"`
}

// OwnerID implements Owned.
func (d *Debt) OwnerID() string { return d.UserID }
