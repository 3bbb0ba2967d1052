package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
)

func invalid(format string, args ...any) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RequireName trims name and rejects it when empty.
func RequireName(name, entity string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("%s name is required", entity)
	}
	return name, nil
}

// RequirePositive rejects amounts that are zero or negative.
func RequirePositive(amount decimal.Decimal, field string) error {
	if !amount.IsPositive() {
		return invalid("%s must be greater than 0", field)
	}
	return nil
}

// AccountDraft is the final state of an account about to be written.
type AccountDraft struct {
	Name          string
	AccountTypeID int
}

// ValidateAccount checks an account before it is written.
func ValidateAccount(d AccountDraft) error {
	if _, err := RequireName(d.Name, "Account"); err != nil {
		return err
	}
	if d.AccountTypeID < 1 {
		return invalid("account_type_id must be a positive integer")
	}
	return nil
}

// IsCategoryType reports whether t is a known category type.
func IsCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}

// ValidateCategory checks a category before it is written.
func ValidateCategory(name string, categoryType models.CategoryType) error {
	if _, err := RequireName(name, "Category"); err != nil {
		return err
	}
	if !IsCategoryType(categoryType) {
		return invalid("Invalid category type. Must be 'income' or 'expense'")
	}
	return nil
}

// IsBudgetPeriod reports whether p is a known budget period.
func IsBudgetPeriod(p models.BudgetPeriod) bool {
	return p == models.BudgetPeriodMonthly || p == models.BudgetPeriodWeekly
}

// ValidateBudget checks a budget before it is written.
func ValidateBudget(amountLimit decimal.Decimal, period models.BudgetPeriod) error {
	if err := RequirePositive(amountLimit, "Amount limit"); err != nil {
		return err
	}
	if !IsBudgetPeriod(period) {
		return invalid("Invalid period. Must be 'monthly' or 'weekly'")
	}
	return nil
}

// DebtDraft is the final state of a debt about to be written.
type DebtDraft struct {
	Name            string
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
	InterestRate    *float64
	MinimumPayment  *decimal.Decimal
	DueDay          *int
}

// ValidateDebt checks the cross-field ranges of a debt.
func ValidateDebt(d DebtDraft) error {
	if _, err := RequireName(d.Name, "Debt"); err != nil {
		return err
	}
	if err := RequirePositive(d.TotalAmount, "Total amount"); err != nil {
		return err
	}
	if d.RemainingAmount.IsNegative() {
		return invalid("Remaining amount cannot be negative")
	}
	if d.RemainingAmount.GreaterThan(d.TotalAmount) {
		return invalid("Remaining amount cannot be greater than total amount")
	}
	if d.InterestRate != nil && (*d.InterestRate < 0 || *d.InterestRate > 100) {
		return invalid("Interest rate must be between 0 and 100")
	}
	if d.MinimumPayment != nil {
		if d.MinimumPayment.IsNegative() {
			return invalid("Minimum payment cannot be negative")
		}
		if d.MinimumPayment.GreaterThan(d.TotalAmount) {
			return invalid("Minimum payment cannot be greater than total amount")
		}
	}
	if d.DueDay != nil && (*d.DueDay < 1 || *d.DueDay > 31) {
		return invalid("Due day must be between 1 and 31")
	}
	return nil
}

// IsGoalStatus reports whether s is a known goal status.
func IsGoalStatus(s models.GoalStatus) bool {
	switch s {
	case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusPaused:
		return true
	}
	return false
}

// GoalDraft is the final state of a goal about to be written.
type GoalDraft struct {
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        models.GoalStatus
}

// ValidateGoal checks the amounts and status of a goal.
func ValidateGoal(d GoalDraft) error {
	if _, err := RequireName(d.Name, "Goal"); err != nil {
		return err
	}
	if err := RequirePositive(d.TargetAmount, "Target amount"); err != nil {
		return err
	}
	if d.CurrentAmount.IsNegative() {
		return invalid("Current amount cannot be negative")
	}
	if d.CurrentAmount.GreaterThan(d.TargetAmount) {
		return invalid("Current amount cannot be greater than target amount")
	}
	if !IsGoalStatus(d.Status) {
		return invalid("Invalid status. Must be 'active', 'completed', or 'paused'")
	}
	return nil
}

// ValidateDeadline rejects deadlines before today.
func ValidateDeadline(deadline, today time.Time) error {
	if Day(deadline).Before(Day(today)) {
		return invalid("Deadline cannot be in the past")
	}
	return nil
}

// IsTransactionType reports whether t is a known transaction type.
func IsTransactionType(t models.TransactionType) bool {
	switch t {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionDraft is the final state of a transaction about to be written.
type TransactionDraft struct {
	Type   models.TransactionType
	Amount decimal.Decimal
	Date   time.Time
}

// ValidateTransaction checks type, amount and date of a transaction.
func ValidateTransaction(d TransactionDraft) error {
	if !IsTransactionType(d.Type) {
		return apperrors.ErrInvalidTransactionType
	}
	if err := RequirePositive(d.Amount, "Amount"); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return invalid("Date is required")
	}
	return nil
}

// CheckCategoryMatchesType enforces that income transactions use income
// categories and expense transactions use expense categories. Transfers
// accept either.
func CheckCategoryMatchesType(categoryType models.CategoryType, txType models.TransactionType) error {
	switch txType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if string(categoryType) != string(txType) {
			return apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch,
				fmt.Sprintf("Category type must be '%s' for %s transactions", txType, txType))
		}
	}
	return nil
}

// NormalizeDescription trims a description and maps blank text to nil.
func NormalizeDescription(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
