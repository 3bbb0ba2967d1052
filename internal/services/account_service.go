package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account with an optional opening balance.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	if in.AccountTypeID == 0 {
		in.AccountTypeID = models.DefaultAccountTypeID
	}
	if err := ledger.ValidateAccount(ledger.AccountDraft{Name: in.Name, AccountTypeID: in.AccountTypeID}); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		AccountTypeID:  in.AccountTypeID,
		CurrentBalance: in.CurrentBalance,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts retrieves all accounts of a user, oldest first.
func (s *accountService) GetUserAccounts(userID string) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID retrieves an account owned by the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	return loadOwned[models.Account](s.db, accountID, userID, apperrors.ErrAccountNotFound, "access this account")
}

// UpdateAccount updates the name and type of an account.
func (s *accountService) UpdateAccount(userID, accountID string, in AccountUpdate) (*models.Account, error) {
	account, err := loadOwned[models.Account](s.db, accountID, userID, apperrors.ErrAccountNotFound, "update this account")
	if err != nil {
		return nil, err
	}

	draft := ledger.AccountDraft{Name: account.Name, AccountTypeID: account.AccountTypeID}
	updates := make(map[string]interface{})
	if in.Name != nil {
		draft.Name = *in.Name
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.AccountTypeID != nil {
		draft.AccountTypeID = *in.AccountTypeID
		updates["account_type_id"] = *in.AccountTypeID
	}
	if err := ledger.ValidateAccount(draft); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount deletes an account and the transactions recorded on it.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := loadOwned[models.Account](s.db, accountID, userID, apperrors.ErrAccountNotFound, "delete this account")
	if err != nil {
		return err
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetTotalBalance sums the balances of all of a user's accounts, overall and
// per account kind. Accounts of an unknown type only count towards the total.
func (s *accountService) GetTotalBalance(userID string) (*BalanceTotals, error) {
	accounts, err := s.GetUserAccounts(userID)
	if err != nil {
		return nil, err
	}

	totals := &BalanceTotals{}
	for i := range accounts {
		balance := accounts[i].CurrentBalance
		totals.Total = totals.Total.Add(balance)

		kind, _ := models.AccountKindOf(accounts[i].AccountTypeID)
		switch kind {
		case models.AccountKindBank:
			totals.Bank = totals.Bank.Add(balance)
		case models.AccountKindCash:
			totals.Cash = totals.Cash.Add(balance)
		case models.AccountKindCredit:
			totals.Credit = totals.Credit.Add(balance)
		case models.AccountKindInvestment:
			totals.Investment = totals.Investment.Add(balance)
		}
	}
	return totals, nil
}

// ApplyToBalance records a transaction's effect on its account. It must run
// inside tx; the account row stays locked until tx ends.
func (s *accountService) ApplyToBalance(tx *gorm.DB, accountID string, txType models.TransactionType, amount decimal.Decimal) error {
	return s.adjustBalance(tx, accountID, func(balance decimal.Decimal) decimal.Decimal {
		return ledger.ApplyTransaction(balance, txType, amount)
	})
}

// RevertFromBalance undoes a transaction's effect on its account. It must run
// inside tx; the account row stays locked until tx ends.
func (s *accountService) RevertFromBalance(tx *gorm.DB, accountID string, txType models.TransactionType, amount decimal.Decimal) error {
	return s.adjustBalance(tx, accountID, func(balance decimal.Decimal) decimal.Decimal {
		return ledger.RevertTransaction(balance, txType, amount)
	})
}

func (s *accountService) adjustBalance(tx *gorm.DB, accountID string, next func(decimal.Decimal) decimal.Decimal) error {
	var account models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", accountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := next(account.CurrentBalance)
	if err := tx.Model(&account).Update("current_balance", balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
