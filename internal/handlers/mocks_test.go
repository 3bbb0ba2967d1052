package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tesoro/internal/ledger"
	"tesoro/internal/middleware"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
	"tesoro/internal/services"
)

// --- users and auth ---

type mockUserService struct {
	registerFn     func(ctx context.Context, in services.RegisterInput) (*models.User, error)
	activateFn     func(token string) (*models.User, error)
	getUserByIDFn  func(id string) (*models.User, error)
	listUsersFn    func(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	updateUserFn   func(id string, in services.UserUpdate) (*models.User, error)
	changeStatusFn func(id string, status models.UserStatus) (*models.User, error)
	deleteUserFn   func(id string) error
}

func (m *mockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return &models.User{}, nil
}

func (m *mockUserService) Activate(token string) (*models.User, error) {
	if m.activateFn != nil {
		return m.activateFn(token)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(page)
	}
	resp := pagination.NewPageResponse([]models.User{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockUserService) UpdateUser(id string, in services.UserUpdate) (*models.User, error) {
	if m.updateUserFn != nil {
		return m.updateUserFn(id, in)
	}
	return &models.User{}, nil
}

func (m *mockUserService) ChangeStatus(id string, status models.UserStatus) (*models.User, error) {
	if m.changeStatusFn != nil {
		return m.changeStatusFn(id, status)
	}
	return &models.User{}, nil
}

func (m *mockUserService) DeleteUser(id string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(id)
	}
	return nil
}

type mockAuthService struct {
	signInFn        func(identifier, password string) (*services.SignInResult, error)
	verifySessionFn func(userID string) (*models.User, error)
}

func (m *mockAuthService) SignIn(identifier, password string) (*services.SignInResult, error) {
	if m.signInFn != nil {
		return m.signInFn(identifier, password)
	}
	return &services.SignInResult{User: &models.User{}}, nil
}

func (m *mockAuthService) VerifySession(userID string) (*models.User, error) {
	if m.verifySessionFn != nil {
		return m.verifySessionFn(userID)
	}
	return &models.User{}, nil
}

type mockRevoker struct {
	revoked []string
	err     error
}

func (m *mockRevoker) Revoke(_ context.Context, claims *middleware.Claims) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, claims.ID)
	return nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]interface{}
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

// --- accounts ---

type mockAccountService struct {
	createAccountFn   func(userID string, in services.AccountInput) (*models.Account, error)
	getUserAccountsFn func(userID string) ([]models.Account, error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
	updateAccountFn   func(userID, accountID string, in services.AccountUpdate) (*models.Account, error)
	deleteAccountFn   func(userID, accountID string) error
	getTotalBalanceFn func(userID string) (*services.BalanceTotals, error)
}

func (m *mockAccountService) CreateAccount(userID string, in services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, in)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetUserAccounts(userID string) ([]models.Account, error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID)
	}
	return []models.Account{}, nil
}

func (m *mockAccountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID string, in services.AccountUpdate) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, in)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

func (m *mockAccountService) GetTotalBalance(userID string) (*services.BalanceTotals, error) {
	if m.getTotalBalanceFn != nil {
		return m.getTotalBalanceFn(userID)
	}
	return &services.BalanceTotals{}, nil
}

func (m *mockAccountService) ApplyToBalance(*gorm.DB, string, models.TransactionType, decimal.Decimal) error {
	return nil
}

func (m *mockAccountService) RevertFromBalance(*gorm.DB, string, models.TransactionType, decimal.Decimal) error {
	return nil
}

// --- categories ---

type mockCategoryService struct {
	createCategoryFn    func(userID, name string, categoryType models.CategoryType) (*models.Category, error)
	getUserCategoriesFn func(userID string, categoryType *models.CategoryType) ([]models.Category, error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, categoryType)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, categoryType)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, categoryType)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

func (m *mockCategoryService) GetCategoryStats(string) (*ledger.CategoryStats, error) {
	return &ledger.CategoryStats{}, nil
}

// --- budgets ---

type mockBudgetService struct {
	createBudgetFn   func(userID string, in services.BudgetInput) (*models.Budget, error)
	getUserBudgetsFn func(userID string, period *models.BudgetPeriod) ([]models.Budget, error)
	updateBudgetFn   func(userID, budgetID string, in services.BudgetUpdate) (*models.Budget, error)
	deleteBudgetFn   func(userID, budgetID string) error
}

func (m *mockBudgetService) CreateBudget(userID string, in services.BudgetInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID string, period *models.BudgetPeriod) ([]models.Budget, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, period)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(string, string) (*models.Budget, error) {
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID string, in services.BudgetUpdate) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetSummary(string) (*ledger.BudgetSummary, error) {
	return &ledger.BudgetSummary{}, nil
}

// --- debts ---

type mockDebtService struct {
	createDebtFn  func(userID string, in services.DebtInput) (*services.DebtView, error)
	updateDebtFn  func(userID, debtID string, in services.DebtUpdate) (*services.DebtView, error)
	makePaymentFn func(userID, debtID string, amount decimal.Decimal) (*services.DebtView, error)
}

func (m *mockDebtService) CreateDebt(userID string, in services.DebtInput) (*services.DebtView, error) {
	if m.createDebtFn != nil {
		return m.createDebtFn(userID, in)
	}
	return &services.DebtView{}, nil
}

func (m *mockDebtService) GetUserDebts(string) ([]services.DebtView, error) {
	return []services.DebtView{}, nil
}

func (m *mockDebtService) GetDebtByID(string, string) (*services.DebtView, error) {
	return &services.DebtView{}, nil
}

func (m *mockDebtService) UpdateDebt(userID, debtID string, in services.DebtUpdate) (*services.DebtView, error) {
	if m.updateDebtFn != nil {
		return m.updateDebtFn(userID, debtID, in)
	}
	return &services.DebtView{}, nil
}

func (m *mockDebtService) DeleteDebt(string, string) error {
	return nil
}

func (m *mockDebtService) MakePayment(userID, debtID string, amount decimal.Decimal) (*services.DebtView, error) {
	if m.makePaymentFn != nil {
		return m.makePaymentFn(userID, debtID, amount)
	}
	return &services.DebtView{}, nil
}

func (m *mockDebtService) GetDebtSummary(string) (*ledger.DebtSummary, error) {
	return &ledger.DebtSummary{}, nil
}

// --- goals ---

type mockGoalService struct {
	createGoalFn    func(userID string, in services.GoalInput) (*services.GoalView, error)
	getUserGoalsFn  func(userID string, status *models.GoalStatus) ([]services.GoalView, error)
	updateGoalFn    func(userID, goalID string, in services.GoalUpdate) (*services.GoalView, error)
	addFundsFn      func(userID, goalID string, amount decimal.Decimal) (*services.GoalView, error)
	withdrawFundsFn func(userID, goalID string, amount decimal.Decimal) (*services.GoalView, error)
}

func (m *mockGoalService) CreateGoal(userID string, in services.GoalInput) (*services.GoalView, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, in)
	}
	return &services.GoalView{}, nil
}

func (m *mockGoalService) GetUserGoals(userID string, status *models.GoalStatus) ([]services.GoalView, error) {
	if m.getUserGoalsFn != nil {
		return m.getUserGoalsFn(userID, status)
	}
	return []services.GoalView{}, nil
}

func (m *mockGoalService) GetGoalByID(string, string) (*services.GoalView, error) {
	return &services.GoalView{}, nil
}

func (m *mockGoalService) UpdateGoal(userID, goalID string, in services.GoalUpdate) (*services.GoalView, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(userID, goalID, in)
	}
	return &services.GoalView{}, nil
}

func (m *mockGoalService) DeleteGoal(string, string) error {
	return nil
}

func (m *mockGoalService) AddFunds(userID, goalID string, amount decimal.Decimal) (*services.GoalView, error) {
	if m.addFundsFn != nil {
		return m.addFundsFn(userID, goalID, amount)
	}
	return &services.GoalView{}, nil
}

func (m *mockGoalService) WithdrawFunds(userID, goalID string, amount decimal.Decimal) (*services.GoalView, error) {
	if m.withdrawFundsFn != nil {
		return m.withdrawFundsFn(userID, goalID, amount)
	}
	return &services.GoalView{}, nil
}

func (m *mockGoalService) GetGoalSummary(string) (*ledger.GoalSummary, error) {
	return &ledger.GoalSummary{}, nil
}

// --- transactions ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.TransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	updateTransactionFn   func(userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
	getSummaryFn          func(userID string, window ledger.Window) (*ledger.TransactionSummary, error)
	getMonthlyReportFn    func(userID string, year, month int) (*ledger.MonthlyReport, error)
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, filter services.TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(string, string) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetRecurringTransactions(string) ([]models.Transaction, error) {
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetSummary(userID string, window ledger.Window) (*ledger.TransactionSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, window)
	}
	return &ledger.TransactionSummary{}, nil
}

func (m *mockTransactionService) GetByCategory(string, ledger.Window) (map[string]ledger.CategoryBreakdown, error) {
	return map[string]ledger.CategoryBreakdown{}, nil
}

func (m *mockTransactionService) GetMonthlyReport(userID string, year, month int) (*ledger.MonthlyReport, error) {
	if m.getMonthlyReportFn != nil {
		return m.getMonthlyReportFn(userID, year, month)
	}
	return &ledger.MonthlyReport{}, nil
}

// verify interface compliance
var (
	_ services.UserServicer        = (*mockUserService)(nil)
	_ services.AuthServicer        = (*mockAuthService)(nil)
	_ services.AuditServicer       = (*mockAuditService)(nil)
	_ services.AccountServicer     = (*mockAccountService)(nil)
	_ services.CategoryServicer    = (*mockCategoryService)(nil)
	_ services.BudgetServicer      = (*mockBudgetService)(nil)
	_ services.DebtServicer        = (*mockDebtService)(nil)
	_ services.GoalServicer        = (*mockGoalService)(nil)
	_ services.TransactionServicer = (*mockTransactionService)(nil)
	_ SessionRevoker               = (*mockRevoker)(nil)
)
