package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tesoro/internal/services"
)

// DebtHandler handles debt-related requests.
type DebtHandler struct {
	debtService  services.DebtServicer
	auditService services.AuditServicer
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(debtService services.DebtServicer, auditService services.AuditServicer) *DebtHandler {
	return &DebtHandler{debtService: debtService, auditService: auditService}
}

// CreateDebtRequest represents the request payload for creating a debt.
type CreateDebtRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=100"`
	TotalAmount     *decimal.Decimal `json:"total_amount" binding:"required" swaggertype:"string" example:"10000.00"`
	RemainingAmount *decimal.Decimal `json:"remaining_amount" swaggertype:"string" example:"7500.00"`
	InterestRate    *float64         `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	MinimumPayment  *decimal.Decimal `json:"minimum_payment" swaggertype:"string" example:"250.00"`
	DueDay          *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
}

// UpdateDebtRequest represents the request payload for updating a debt.
type UpdateDebtRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=100"`
	TotalAmount     *decimal.Decimal `json:"total_amount" swaggertype:"string"`
	RemainingAmount *decimal.Decimal `json:"remaining_amount" swaggertype:"string"`
	InterestRate    *float64         `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	MinimumPayment  *decimal.Decimal `json:"minimum_payment" swaggertype:"string"`
	DueDay          *int             `json:"due_day" binding:"omitempty,min=1,max=31"`
}

// AmountRequest carries a single positive amount for payments and fund movements.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"100.00"`
}

// CreateDebt handles the creation of a new debt
// @Summary     Create a debt
// @Description Create a debt. remaining_amount defaults to total_amount.
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateDebtRequest true "Debt details"
// @Success     201 {object} DataResponse "Debt created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /debts [post]
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateDebtRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.CreateDebt(userID, services.DebtInput{
		Name:            req.Name,
		TotalAmount:     *req.TotalAmount,
		RemainingAmount: req.RemainingAmount,
		InterestRate:    req.InterestRate,
		MinimumPayment:  req.MinimumPayment,
		DueDay:          req.DueDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_DEBT", "debt", debt.ID, c.ClientIP(),
		map[string]interface{}{"name": debt.Name, "total_amount": debt.TotalAmount.String()})

	respondWithData(c, http.StatusCreated, debt, "")
}

// GetUserDebts handles the retrieval of debts for a user
// @Summary     Get user debts
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Debts with payment progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /debts [get]
func (h *DebtHandler) GetUserDebts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debts, err := h.debtService.GetUserDebts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, debts, "")
}

// GetDebtByID handles the retrieval of a specific debt
// @Summary     Get debt by ID
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     200 {object} DataResponse "Debt details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Router      /debts/{id} [get]
func (h *DebtHandler) GetDebtByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debt, err := h.debtService.GetDebtByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, debt, "")
}

// UpdateDebt handles updating a debt
// @Summary     Update debt
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Debt ID"
// @Param       request body UpdateDebtRequest true "Updated debt details"
// @Success     200 {object} DataResponse "Updated debt"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Router      /debts/{id} [put]
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateDebtRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.UpdateDebt(userID, c.Param("id"), services.DebtUpdate{
		Name:            req.Name,
		TotalAmount:     req.TotalAmount,
		RemainingAmount: req.RemainingAmount,
		InterestRate:    req.InterestRate,
		MinimumPayment:  req.MinimumPayment,
		DueDay:          req.DueDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_DEBT", "debt", debt.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, debt, "")
}

// DeleteDebt handles deleting a debt
// @Summary     Delete debt
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Debt ID"
// @Success     200 {object} DataResponse "Debt deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Router      /debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	debtID := c.Param("id")
	if err := h.debtService.DeleteDebt(userID, debtID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_DEBT", "debt", debtID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, nil, "Debt deleted successfully")
}

// MakePayment handles a payment towards a debt
// @Summary     Pay towards a debt
// @Description Reduce the remaining amount. The payment cannot exceed what is left.
// @Tags        debts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Debt ID"
// @Param       request body AmountRequest true "Payment amount"
// @Success     200 {object} DataResponse "Updated debt"
// @Failure     400 {object} ErrorResponse "Invalid amount or payment exceeds remaining"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Debt not found"
// @Router      /debts/{id}/payment [post]
func (h *DebtHandler) MakePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AmountRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.MakePayment(userID, c.Param("id"), *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEBT_PAYMENT", "debt", debt.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "remaining_amount": debt.RemainingAmount.String()})

	respondWithData(c, http.StatusOK, debt, "Payment recorded")
}

// GetDebtSummary handles the debt overview
// @Summary     Debt summary
// @Tags        debts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Debt summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /debts/summary [get]
func (h *DebtHandler) GetDebtSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.debtService.GetDebtSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, summary, "")
}
