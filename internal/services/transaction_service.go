package services

import (
	"errors"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
)

// transactionSortColumns are the columns a transaction list may be sorted by.
var transactionSortColumns = []string{"date", "amount", "created_at"}

const transactionDefaultOrder = "date DESC, created_at DESC"

// transactionService handles transaction-related business logic. Every write
// reconciles the owning account's balance inside the same store transaction.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

// CreateTransaction records a transaction and applies it to its account.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if err := ledger.ValidateTransaction(ledger.TransactionDraft{Type: in.Type, Amount: in.Amount, Date: in.Date}); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := loadOwnedForUpdate[models.Account](tx, in.AccountID, userID, apperrors.ErrAccountNotFound, "use this account")
		if err != nil {
			return err
		}
		category, err := loadOwned[models.Category](tx, in.CategoryID, userID, apperrors.ErrCategoryNotFound, "use this category")
		if err != nil {
			return err
		}
		if err := ledger.CheckCategoryMatchesType(category.Type, in.Type); err != nil {
			return err
		}

		created = &models.Transaction{
			UserID:      userID,
			AccountID:   account.ID,
			CategoryID:  &category.ID,
			Type:        in.Type,
			Amount:      in.Amount,
			Description: ledger.NormalizeDescription(in.Description),
			Date:        ledger.Day(in.Date),
			IsRecurring: in.IsRecurring,
		}
		if err := tx.Create(created).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.accountService.ApplyToBalance(tx, account.ID, created.Type, created.Amount)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's
// transactions, newest first unless a sort is requested.
func (s *transactionService) GetUserTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if filter.Type != nil && !ledger.IsTransactionType(*filter.Type) {
		return nil, apperrors.ErrInvalidTransactionType
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	order := pagination.OrderBy(page.Sort, transactionSortColumns, transactionDefaultOrder)
	if err := base.Preload("Account").Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order(order).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.IsRecurring != nil {
		q = q.Where("is_recurring = ?", *f.IsRecurring)
	}
	return applyWindow(q, ledger.Window{Start: f.StartDate, End: f.EndDate})
}

// applyWindow restricts q to transactions dated inside w, both ends inclusive.
func applyWindow(q *gorm.DB, w ledger.Window) *gorm.DB {
	if w.Start != nil {
		q = q.Where("date >= ?", ledger.Day(*w.Start))
	}
	if w.End != nil {
		q = q.Where("date <= ?", ledger.Day(*w.End))
	}
	return q
}

// GetTransactionByID retrieves a transaction owned by the user, with its account and category.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return loadOwned[models.Transaction](s.db.Preload("Account").Preload("Category"),
		transactionID, userID, apperrors.ErrTransactionNotFound, "access this transaction")
}

// UpdateTransaction applies a partial update. The stored amount is reverted
// from its original account and the resulting amount applied to the
// resulting account, which may differ, all in one store transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := loadOwnedForUpdate[models.Transaction](tx, transactionID, userID, apperrors.ErrTransactionNotFound, "update this transaction")
		if err != nil {
			return err
		}

		next := *existing
		updates := make(map[string]interface{})

		if in.Type != nil {
			next.Type = *in.Type
			updates["type"] = next.Type
		}
		if in.Amount != nil {
			next.Amount = *in.Amount
			updates["amount"] = next.Amount
		}
		if in.Date != nil {
			next.Date = ledger.Day(*in.Date)
			updates["date"] = next.Date
		}
		if err := ledger.ValidateTransaction(ledger.TransactionDraft{Type: next.Type, Amount: next.Amount, Date: next.Date}); err != nil {
			return err
		}

		if in.AccountID != nil {
			account, err := loadOwned[models.Account](tx, *in.AccountID, userID, apperrors.ErrAccountNotFound, "use this account")
			if err != nil {
				return err
			}
			next.AccountID = account.ID
			updates["account_id"] = account.ID
		}

		if in.CategoryID != nil || in.Type != nil {
			if err := s.checkCategory(tx, userID, in.CategoryID, existing.CategoryID, next.Type, updates); err != nil {
				return err
			}
		}

		if in.Description != nil {
			updates["description"] = ledger.NormalizeDescription(in.Description)
		}
		if in.IsRecurring != nil {
			updates["is_recurring"] = *in.IsRecurring
		}

		if err := lockAccounts(tx, existing.AccountID, next.AccountID); err != nil {
			return err
		}
		if err := s.accountService.RevertFromBalance(tx, existing.AccountID, existing.Type, existing.Amount); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(existing).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return s.accountService.ApplyToBalance(tx, next.AccountID, next.Type, next.Amount)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// checkCategory resolves the category a transaction will carry after an
// update and checks it against the resulting type. A transaction whose
// category was deleted keeps no category and skips the check.
func (s *transactionService) checkCategory(tx *gorm.DB, userID string, requested, current *string, txType models.TransactionType, updates map[string]interface{}) error {
	categoryID := current
	if requested != nil {
		categoryID = requested
	}
	if categoryID == nil {
		return nil
	}

	category, err := loadOwned[models.Category](tx, *categoryID, userID, apperrors.ErrCategoryNotFound, "use this category")
	if err != nil {
		return err
	}
	if err := ledger.CheckCategoryMatchesType(category.Type, txType); err != nil {
		return err
	}
	if requested != nil {
		updates["category_id"] = category.ID
	}
	return nil
}

// DeleteTransaction reverts a transaction from its account and deletes it.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := loadOwnedForUpdate[models.Transaction](tx, transactionID, userID, apperrors.ErrTransactionNotFound, "delete this transaction")
		if err != nil {
			return err
		}
		if err := s.accountService.RevertFromBalance(tx, existing.AccountID, existing.Type, existing.Amount); err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetRecurringTransactions retrieves a user's recurring transactions, newest first.
func (s *transactionService) GetRecurringTransactions(userID string) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := s.db.Preload("Account").Preload("Category").
		Where("user_id = ? AND is_recurring = ?", userID, true).
		Order(transactionDefaultOrder).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// inWindow loads the user's transactions dated inside w, with their categories.
func (s *transactionService) inWindow(userID string, w ledger.Window) ([]models.Transaction, error) {
	var transactions []models.Transaction
	q := applyWindow(s.db.Preload("Category").Where("user_id = ?", userID), w)
	if err := q.Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetSummary totals a user's transactions by type over an optional window.
func (s *transactionService) GetSummary(userID string, window ledger.Window) (*ledger.TransactionSummary, error) {
	transactions, err := s.inWindow(userID, window)
	if err != nil {
		return nil, err
	}
	summary := ledger.SummarizeTransactions(transactions)
	return &summary, nil
}

// GetByCategory groups a user's transactions by category name over an optional window.
func (s *transactionService) GetByCategory(userID string, window ledger.Window) (map[string]ledger.CategoryBreakdown, error) {
	transactions, err := s.inWindow(userID, window)
	if err != nil {
		return nil, err
	}
	return ledger.GroupByCategory(transactions), nil
}

// GetMonthlyReport composes the summary and category breakdown of one calendar month.
func (s *transactionService) GetMonthlyReport(userID string, year, month int) (*ledger.MonthlyReport, error) {
	start, end, err := ledger.MonthRange(year, month)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	transactions, err := s.inWindow(userID, ledger.Window{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}

	report, err := ledger.BuildMonthlyReport(year, month, transactions)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// lockAccounts takes row locks on the given accounts in ascending id order,
// so concurrent moves between the same two accounts cannot deadlock.
func lockAccounts(tx *gorm.DB, ids ...string) error {
	for _, id := range lockOrder(ids...) {
		var account models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id).First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// lockOrder returns ids sorted and without duplicates.
func lockOrder(ids ...string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
