package models

import "github.com/shopspring/decimal"

// DefaultAccountTypeID is used when an account is created without a type.
const DefaultAccountTypeID = 1

// Account represents a financial account. CurrentBalance is a cache of the
// signed sum of the account's transactions plus its opening balance and is
// only changed by balance reconciliation after creation.
type Account struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string          `gorm:"not null" json:"name"`
	AccountTypeID  int             `gorm:"not null;default:1" json:"account_type_id"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"current_balance"`
}

// OwnerID implements Owned.
func (a *Account) OwnerID() string { return a.UserID }

// AccountKind groups account types for balance subtotals.
type AccountKind string

const (
	AccountKindBank       AccountKind = "bank"
	AccountKindCash       AccountKind = "cash"
	AccountKindCredit     AccountKind = "credit"
	AccountKindInvestment AccountKind = "investment"
)

// accountKinds maps the seeded account_type_id values to their kind.
var accountKinds = map[int]AccountKind{
	1: AccountKindBank,
	2: AccountKindCash,
	3: AccountKindCredit,
	4: AccountKindInvestment,
}

// AccountKindOf returns the kind of an account type id. Unknown ids report false.
func AccountKindOf(typeID int) (AccountKind, bool) {
	k, ok := accountKinds[typeID]
	return k, ok
}
