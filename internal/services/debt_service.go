package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// debtService handles debt-related business logic.
type debtService struct {
	db *gorm.DB
}

// NewDebtService creates a new DebtServicer.
func NewDebtService(db *gorm.DB) DebtServicer {
	return &debtService{db: db}
}

func newDebtView(d *models.Debt) *DebtView {
	return &DebtView{Debt: *d, DebtProgress: ledger.DebtProgressOf(d)}
}

// CreateDebt records a new debt. The remaining amount defaults to the total.
func (s *debtService) CreateDebt(userID string, in DebtInput) (*DebtView, error) {
	remaining := in.TotalAmount
	if in.RemainingAmount != nil {
		remaining = *in.RemainingAmount
	}

	draft := ledger.DebtDraft{
		Name:            in.Name,
		TotalAmount:     in.TotalAmount,
		RemainingAmount: remaining,
		InterestRate:    in.InterestRate,
		MinimumPayment:  in.MinimumPayment,
		DueDay:          in.DueDay,
	}
	if err := ledger.ValidateDebt(draft); err != nil {
		return nil, err
	}

	debt := &models.Debt{
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		TotalAmount:     in.TotalAmount,
		RemainingAmount: remaining,
		InterestRate:    in.InterestRate,
		MinimumPayment:  in.MinimumPayment,
		DueDay:          in.DueDay,
	}
	if err := s.db.Create(debt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return newDebtView(debt), nil
}

// GetUserDebts retrieves a user's debts with their payment progress, newest first.
func (s *debtService) GetUserDebts(userID string) ([]DebtView, error) {
	var debts []models.Debt
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]DebtView, 0, len(debts))
	for i := range debts {
		views = append(views, *newDebtView(&debts[i]))
	}
	return views, nil
}

// GetDebtByID retrieves a debt owned by the user, with its payment progress.
func (s *debtService) GetDebtByID(userID, debtID string) (*DebtView, error) {
	debt, err := loadOwned[models.Debt](s.db, debtID, userID, apperrors.ErrDebtNotFound, "access this debt")
	if err != nil {
		return nil, err
	}
	return newDebtView(debt), nil
}

// UpdateDebt applies a partial update after checking the merged debt.
func (s *debtService) UpdateDebt(userID, debtID string, in DebtUpdate) (*DebtView, error) {
	debt, err := loadOwned[models.Debt](s.db, debtID, userID, apperrors.ErrDebtNotFound, "update this debt")
	if err != nil {
		return nil, err
	}

	draft := ledger.DebtDraft{
		Name:            debt.Name,
		TotalAmount:     debt.TotalAmount,
		RemainingAmount: debt.RemainingAmount,
		InterestRate:    debt.InterestRate,
		MinimumPayment:  debt.MinimumPayment,
		DueDay:          debt.DueDay,
	}
	updates := make(map[string]interface{})
	if in.Name != nil {
		draft.Name = *in.Name
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.TotalAmount != nil {
		draft.TotalAmount = *in.TotalAmount
		updates["total_amount"] = *in.TotalAmount
	}
	if in.RemainingAmount != nil {
		draft.RemainingAmount = *in.RemainingAmount
		updates["remaining_amount"] = *in.RemainingAmount
	}
	if in.InterestRate != nil {
		draft.InterestRate = in.InterestRate
		updates["interest_rate"] = *in.InterestRate
	}
	if in.MinimumPayment != nil {
		draft.MinimumPayment = in.MinimumPayment
		updates["minimum_payment"] = *in.MinimumPayment
	}
	if in.DueDay != nil {
		draft.DueDay = in.DueDay
		updates["due_day"] = *in.DueDay
	}
	if err := ledger.ValidateDebt(draft); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(debt).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetDebtByID(userID, debt.ID)
}

// DeleteDebt deletes a debt owned by the user.
func (s *debtService) DeleteDebt(userID, debtID string) error {
	debt, err := loadOwned[models.Debt](s.db, debtID, userID, apperrors.ErrDebtNotFound, "delete this debt")
	if err != nil {
		return err
	}
	if err := s.db.Delete(debt).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MakePayment reduces the remaining amount of a debt. The payment must be
// positive and may not exceed what is still owed.
func (s *debtService) MakePayment(userID, debtID string, amount decimal.Decimal) (*DebtView, error) {
	if err := ledger.RequirePositive(amount, "Payment amount"); err != nil {
		return nil, err
	}

	var view *DebtView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		debt, err := loadOwnedForUpdate[models.Debt](tx, debtID, userID, apperrors.ErrDebtNotFound, "make payments on this debt")
		if err != nil {
			return err
		}
		if amount.GreaterThan(debt.RemainingAmount) {
			return apperrors.WithMessage(apperrors.ErrPaymentExceedsRemaining,
				fmt.Sprintf("Payment amount cannot be greater than remaining amount (%s)", debt.RemainingAmount.StringFixed(2)))
		}

		debt.RemainingAmount = debt.RemainingAmount.Sub(amount)
		if err := tx.Model(debt).Update("remaining_amount", debt.RemainingAmount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		view = newDebtView(debt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetDebtSummary aggregates a user's debts.
func (s *debtService) GetDebtSummary(userID string) (*ledger.DebtSummary, error) {
	var debts []models.Debt
	if err := s.db.Where("user_id = ?", userID).Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary := ledger.SummarizeDebts(debts)
	return &summary, nil
}
