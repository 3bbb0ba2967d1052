package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
	"tesoro/internal/services"
)

// BudgetHandler handles budget-related requests
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget
type CreateBudgetRequest struct {
	CategoryID  string              `json:"category_id" binding:"required"`
	AmountLimit *decimal.Decimal    `json:"amount_limit" binding:"required" swaggertype:"string" example:"500.00"`
	Period      models.BudgetPeriod `json:"period" binding:"required,budget_period"`
}

// UpdateBudgetRequest represents the request payload for updating a budget
type UpdateBudgetRequest struct {
	CategoryID  *string              `json:"category_id" binding:"omitempty,min=1"`
	AmountLimit *decimal.Decimal     `json:"amount_limit" swaggertype:"string" example:"500.00"`
	Period      *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
}

// CreateBudget handles the creation of a new budget
// @Summary     Create a budget
// @Description Create a spending limit for a category. One budget per category.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} DataResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Category not owned"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, services.BudgetInput{
		CategoryID:  req.CategoryID,
		AmountLimit: *req.AmountLimit,
		Period:      req.Period,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category_id": budget.CategoryID, "amount_limit": budget.AmountLimit.String(), "period": budget.Period})

	respondWithData(c, http.StatusCreated, budget, "")
}

// GetUserBudgets handles the retrieval of budgets for a user
// @Summary     Get user budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "Filter by period (monthly, weekly)"
// @Success     200 {object} DataResponse "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) GetUserBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var period *models.BudgetPeriod
	if raw := c.Query("period"); raw != "" {
		p := models.BudgetPeriod(raw)
		if !ledger.IsBudgetPeriod(p) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be monthly or weekly"))
			return
		}
		period = &p
	}

	budgets, err := h.budgetService.GetUserBudgets(userID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, budgets, "")
}

// GetBudgetByID handles the retrieval of a specific budget
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} DataResponse "Budget details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, budget, "")
}

// UpdateBudget handles updating a budget
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} DataResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate budget"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, c.Param("id"), services.BudgetUpdate{
		CategoryID:  req.CategoryID,
		AmountLimit: req.AmountLimit,
		Period:      req.Period,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, budget, "")
}

// DeleteBudget handles deleting a budget
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} DataResponse "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID := c.Param("id")
	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, nil, "Budget deleted successfully")
}

// GetBudgetSummary handles the budget overview
// @Summary     Budget summary
// @Description Totals of budget limits per period and per category
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Budget summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets/summary [get]
func (h *BudgetHandler) GetBudgetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetBudgetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, summary, "")
}
