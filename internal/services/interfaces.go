package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tesoro/internal/ledger"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
)

// RegisterInput holds the fields of a new user registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Currency string
}

// UserUpdate holds the user fields that may be changed. Nil fields are left untouched.
type UserUpdate struct {
	FullName *string
	Currency *string
	Password *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Activate(token string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(id string, in UserUpdate) (*models.User, error)
	ChangeStatus(id string, status models.UserStatus) (*models.User, error)
	DeleteUser(id string) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Sign(user *models.User) (string, error)
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthServicer defines the contract for sign-in and session checks.
type AuthServicer interface {
	SignIn(identifier, password string) (*SignInResult, error)
	VerifySession(userID string) (*models.User, error)
}

// AccountInput holds the fields of a new account.
type AccountInput struct {
	Name           string
	AccountTypeID  int
	CurrentBalance decimal.Decimal
}

// AccountUpdate holds the account fields that may be changed. The balance only
// moves through transactions.
type AccountUpdate struct {
	Name          *string
	AccountTypeID *int
}

// BalanceTotals sums account balances overall and per account kind.
type BalanceTotals struct {
	Total      decimal.Decimal `json:"total"`
	Bank       decimal.Decimal `json:"bank"`
	Cash       decimal.Decimal `json:"cash"`
	Credit     decimal.Decimal `json:"credit"`
	Investment decimal.Decimal `json:"investment"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(userID string) ([]models.Account, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, in AccountUpdate) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	GetTotalBalance(userID string) (*BalanceTotals, error)
	ApplyToBalance(tx *gorm.DB, accountID string, txType models.TransactionType, amount decimal.Decimal) error
	RevertFromBalance(tx *gorm.DB, accountID string, txType models.TransactionType, amount decimal.Decimal) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	GetCategoryStats(userID string) (*ledger.CategoryStats, error)
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	CategoryID  string
	AmountLimit decimal.Decimal
	Period      models.BudgetPeriod
}

// BudgetUpdate holds the budget fields that may be changed.
type BudgetUpdate struct {
	CategoryID  *string
	AmountLimit *decimal.Decimal
	Period      *models.BudgetPeriod
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, period *models.BudgetPeriod) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, in BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetSummary(userID string) (*ledger.BudgetSummary, error)
}

// DebtInput holds the fields of a new debt. RemainingAmount defaults to TotalAmount.
type DebtInput struct {
	Name            string
	TotalAmount     decimal.Decimal
	RemainingAmount *decimal.Decimal
	InterestRate    *float64
	MinimumPayment  *decimal.Decimal
	DueDay          *int
}

// DebtUpdate holds the debt fields that may be changed.
type DebtUpdate struct {
	Name            *string
	TotalAmount     *decimal.Decimal
	RemainingAmount *decimal.Decimal
	InterestRate    *float64
	MinimumPayment  *decimal.Decimal
	DueDay          *int
}

// DebtView is a debt together with its derived payment progress.
type DebtView struct {
	models.Debt
	ledger.DebtProgress
}

// DebtServicer defines the contract for debt-related business logic.
type DebtServicer interface {
	CreateDebt(userID string, in DebtInput) (*DebtView, error)
	GetUserDebts(userID string) ([]DebtView, error)
	GetDebtByID(userID, debtID string) (*DebtView, error)
	UpdateDebt(userID, debtID string, in DebtUpdate) (*DebtView, error)
	DeleteDebt(userID, debtID string) error
	MakePayment(userID, debtID string, amount decimal.Decimal) (*DebtView, error)
	GetDebtSummary(userID string) (*ledger.DebtSummary, error)
}

// GoalInput holds the fields of a new goal.
type GoalInput struct {
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	Status        *models.GoalStatus
}

// GoalUpdate holds the goal fields that may be changed. ClearDeadline removes
// the deadline and takes precedence over Deadline.
type GoalUpdate struct {
	Name          *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
	Status        *models.GoalStatus
}

// GoalView is a goal together with its derived progress.
type GoalView struct {
	models.Goal
	ledger.GoalProgress
}

// GoalServicer defines the contract for goal-related business logic.
type GoalServicer interface {
	CreateGoal(userID string, in GoalInput) (*GoalView, error)
	GetUserGoals(userID string, status *models.GoalStatus) ([]GoalView, error)
	GetGoalByID(userID, goalID string) (*GoalView, error)
	UpdateGoal(userID, goalID string, in GoalUpdate) (*GoalView, error)
	DeleteGoal(userID, goalID string) error
	AddFunds(userID, goalID string, amount decimal.Decimal) (*GoalView, error)
	WithdrawFunds(userID, goalID string, amount decimal.Decimal) (*GoalView, error)
	GetGoalSummary(userID string) (*ledger.GoalSummary, error)
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	AccountID   string
	CategoryID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
	IsRecurring bool
}

// TransactionUpdate holds the transaction fields that may be changed.
type TransactionUpdate struct {
	AccountID   *string
	CategoryID  *string
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	IsRecurring *bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
// The date window is inclusive on both ends.
type TransactionFilter struct {
	Type        *models.TransactionType
	AccountID   *string
	CategoryID  *string
	StartDate   *time.Time
	EndDate     *time.Time
	IsRecurring *bool
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetRecurringTransactions(userID string) ([]models.Transaction, error)
	GetSummary(userID string, window ledger.Window) (*ledger.TransactionSummary, error)
	GetByCategory(userID string, window ledger.Window) (map[string]ledger.CategoryBreakdown, error)
	GetMonthlyReport(userID string, year, month int) (*ledger.MonthlyReport, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
