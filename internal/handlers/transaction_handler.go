package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
	"tesoro/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService, now: time.Now}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// The date defaults to today.
type CreateTransactionRequest struct {
	AccountID   string                 `json:"account_id" binding:"required"`
	CategoryID  string                 `json:"category_id" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount      *decimal.Decimal       `json:"amount" binding:"required" swaggertype:"string" example:"42.50"`
	Description *string                `json:"description" binding:"omitempty,max=500"`
	Date        *string                `json:"date" binding:"omitempty,calendar_day" example:"2025-03-10"`
	IsRecurring bool                   `json:"is_recurring"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	AccountID   *string                 `json:"account_id" binding:"omitempty,min=1"`
	CategoryID  *string                 `json:"category_id" binding:"omitempty,min=1"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount      *decimal.Decimal        `json:"amount" swaggertype:"string"`
	Description *string                 `json:"description" binding:"omitempty,max=500"`
	Date        *string                 `json:"date" binding:"omitempty,calendar_day"`
	IsRecurring *bool                   `json:"is_recurring"`
}

// TransactionQuery holds the list filters accepted as query parameters.
type TransactionQuery struct {
	Type        string `form:"type" binding:"omitempty,transaction_type"`
	AccountID   string `form:"account_id"`
	CategoryID  string `form:"category_id"`
	StartDate   string `form:"start_date" binding:"omitempty,calendar_day"`
	EndDate     string `form:"end_date" binding:"omitempty,calendar_day"`
	IsRecurring *bool  `form:"is_recurring"`
}

func (q TransactionQuery) filter() (services.TransactionFilter, error) {
	var f services.TransactionFilter
	if q.Type != "" {
		t := models.TransactionType(q.Type)
		f.Type = &t
	}
	if q.AccountID != "" {
		f.AccountID = &q.AccountID
	}
	if q.CategoryID != "" {
		f.CategoryID = &q.CategoryID
	}
	w, err := WindowQuery{StartDate: q.StartDate, EndDate: q.EndDate}.window()
	if err != nil {
		return f, err
	}
	f.StartDate, f.EndDate = w.Start, w.End
	f.IsRecurring = q.IsRecurring
	return f, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income, expense or transfer and update the account balance
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} DataResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or category type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account or category not owned"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	date := ledger.Day(h.now())
	parsed, err := parseOptionalDay(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if parsed != nil {
		date = *parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      *req.Amount,
		Description: req.Description,
		Date:        date,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"account_id": transaction.AccountID,
			"type":       transaction.Type,
			"amount":     transaction.Amount.String(),
		})

	respondWithData(c, http.StatusCreated, transaction, "")
}

// GetUserTransactions handles the retrieval of transactions for a user
// @Summary     Get user transactions
// @Description Get a filtered, paginated list of transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type         query string false "Filter by type (income, expense, transfer)"
// @Param       account_id   query string false "Filter by account"
// @Param       category_id  query string false "Filter by category"
// @Param       start_date   query string false "Inclusive start day (YYYY-MM-DD)"
// @Param       end_date     query string false "Inclusive end day (YYYY-MM-DD)"
// @Param       is_recurring query bool   false "Filter by recurring flag"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Param       sort         query string false "Sort column (date, amount, created_at); prefix - for descending"
// @Success     200 {object} DataResponse "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, result, "")
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} DataResponse "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, transaction, "")
}

// UpdateTransaction handles updating a transaction
// @Summary     Update transaction
// @Description Update a transaction. The old amount is reverted from its account and the new one applied.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} DataResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or category type mismatch"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseOptionalDay(req.Date, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), services.TransactionUpdate{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, transaction, "")
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction and revert its effect on the account balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} DataResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")
	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, nil, "Transaction deleted successfully")
}

// GetRecurringTransactions handles listing recurring transactions
// @Summary     Recurring transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Recurring transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/recurring [get]
func (h *TransactionHandler) GetRecurringTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetRecurringTransactions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, transactions, "")
}

func (h *TransactionHandler) bindWindow(c *gin.Context) (string, ledger.Window, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return "", ledger.Window{}, false
	}

	var query WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return "", ledger.Window{}, false
	}
	w, err := query.window()
	if err != nil {
		respondWithError(c, err)
		return "", ledger.Window{}, false
	}
	return userID, w, true
}

// GetSummary handles the income/expense summary
// @Summary     Transaction summary
// @Description Income, expense and net totals with counts per type, optionally within a date window
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string false "Inclusive start day (YYYY-MM-DD)"
// @Param       end_date   query string false "Inclusive end day (YYYY-MM-DD)"
// @Success     200 {object} DataResponse "Summary"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	userID, window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	summary, err := h.transactionService.GetSummary(userID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, summary, "")
}

// GetByCategory handles the per-category breakdown
// @Summary     Transactions by category
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string false "Inclusive start day (YYYY-MM-DD)"
// @Param       end_date   query string false "Inclusive end day (YYYY-MM-DD)"
// @Success     200 {object} DataResponse "Totals keyed by category name"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/by-category [get]
func (h *TransactionHandler) GetByCategory(c *gin.Context) {
	userID, window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	breakdown, err := h.transactionService.GetByCategory(userID, window)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, breakdown, "")
}

// GetMonthlyReport handles the monthly report
// @Summary     Monthly report
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       year  path int true "Year"
// @Param       month path int true "Month (1-12)"
// @Success     200 {object} DataResponse "Monthly report"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/report/{year}/{month} [get]
func (h *TransactionHandler) GetMonthlyReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid month"))
		return
	}

	report, err := h.transactionService.GetMonthlyReport(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, report, "")
}
