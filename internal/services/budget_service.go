package services

import (
	"fmt"

	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func duplicateBudget(categoryName string) error {
	return apperrors.WithMessage(apperrors.ErrDuplicateBudget,
		fmt.Sprintf("A budget for category %q already exists", categoryName))
}

// budgetExists reports whether the user has a budget for the category other than exceptID.
func (s *budgetService) budgetExists(userID, categoryID, exceptID string) (bool, error) {
	q := s.db.Model(&models.Budget{}).Where("user_id = ? AND category_id = ?", userID, categoryID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CreateBudget creates a budget for a category. A user has at most one budget per category.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	if err := ledger.ValidateBudget(in.AmountLimit, in.Period); err != nil {
		return nil, err
	}

	category, err := loadOwned[models.Category](s.db, in.CategoryID, userID, apperrors.ErrCategoryNotFound, "use this category")
	if err != nil {
		return nil, err
	}

	exists, err := s.budgetExists(userID, category.ID, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateBudget(category.Name)
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  category.ID,
		AmountLimit: in.AmountLimit,
		Period:      in.Period,
	}

	if err := s.db.Create(budget).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, duplicateBudget(category.Name)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.Category = category
	return budget, nil
}

// GetUserBudgets retrieves a user's budgets with their categories, optionally
// restricted to one period.
func (s *budgetService) GetUserBudgets(userID string, period *models.BudgetPeriod) ([]models.Budget, error) {
	q := s.db.Preload("Category").Where("user_id = ?", userID)
	if period != nil {
		if !ledger.IsBudgetPeriod(*period) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid period. Must be 'monthly' or 'weekly'")
		}
		q = q.Where("period = ?", *period)
	}

	budgets := []models.Budget{}
	if err := q.Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID retrieves a budget owned by the user, with its category.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return loadOwned[models.Budget](s.db.Preload("Category"), budgetID, userID, apperrors.ErrBudgetNotFound, "access this budget")
}

// UpdateBudget changes a budget's limit, period or category.
func (s *budgetService) UpdateBudget(userID, budgetID string, in BudgetUpdate) (*models.Budget, error) {
	budget, err := loadOwned[models.Budget](s.db, budgetID, userID, apperrors.ErrBudgetNotFound, "update this budget")
	if err != nil {
		return nil, err
	}

	limit, period := budget.AmountLimit, budget.Period
	if in.AmountLimit != nil {
		limit = *in.AmountLimit
	}
	if in.Period != nil {
		period = *in.Period
	}
	if err := ledger.ValidateBudget(limit, period); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"amount_limit": limit,
		"period":       period,
	}

	categoryName := ""
	if in.CategoryID != nil {
		category, err := loadOwned[models.Category](s.db, *in.CategoryID, userID, apperrors.ErrCategoryNotFound, "use this category")
		if err != nil {
			return nil, err
		}
		categoryName = category.Name
		if category.ID != budget.CategoryID {
			exists, err := s.budgetExists(userID, category.ID, budget.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, duplicateBudget(category.Name)
			}
		}
		updates["category_id"] = category.ID
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, duplicateBudget(categoryName)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// DeleteBudget deletes a budget owned by the user.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := loadOwned[models.Budget](s.db, budgetID, userID, apperrors.ErrBudgetNotFound, "delete this budget")
	if err != nil {
		return err
	}
	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetSummary aggregates a user's budgets by period and category.
func (s *budgetService) GetBudgetSummary(userID string) (*ledger.BudgetSummary, error) {
	budgets, err := s.GetUserBudgets(userID, nil)
	if err != nil {
		return nil, err
	}
	summary := ledger.SummarizeBudgets(budgets)
	return &summary, nil
}
