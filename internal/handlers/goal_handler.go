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

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name          string             `json:"name" binding:"required,min=1,max=100"`
	TargetAmount  *decimal.Decimal   `json:"target_amount" binding:"required" swaggertype:"string" example:"5000.00"`
	CurrentAmount *decimal.Decimal   `json:"current_amount" swaggertype:"string" example:"0"`
	Deadline      *string            `json:"deadline" binding:"omitempty,calendar_day" example:"2026-12-31"`
	Status        *models.GoalStatus `json:"status" binding:"omitempty,goal_status"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
// An empty deadline string removes the deadline.
type UpdateGoalRequest struct {
	Name          *string            `json:"name" binding:"omitempty,min=1,max=100"`
	TargetAmount  *decimal.Decimal   `json:"target_amount" swaggertype:"string"`
	CurrentAmount *decimal.Decimal   `json:"current_amount" swaggertype:"string"`
	Deadline      *string            `json:"deadline" example:"2026-12-31"`
	Status        *models.GoalStatus `json:"status" binding:"omitempty,goal_status"`
}

// CreateGoal handles the creation of a new goal
// @Summary     Create a goal
// @Description Create a savings goal. The deadline cannot be in the past.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} DataResponse "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	deadline, err := parseOptionalDay(req.Deadline, "deadline")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, services.GoalInput{
		Name:          req.Name,
		TargetAmount:  *req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
		Status:        req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": goal.Name, "target_amount": goal.TargetAmount.String()})

	respondWithData(c, http.StatusCreated, goal, "")
}

// GetUserGoals handles the retrieval of goals for a user
// @Summary     Get user goals
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status (active, completed, paused)"
// @Success     200 {object} DataResponse "Goals with progress"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals [get]
func (h *GoalHandler) GetUserGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var status *models.GoalStatus
	if raw := c.Query("status"); raw != "" {
		s := models.GoalStatus(raw)
		if !ledger.IsGoalStatus(s) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be active, completed or paused"))
			return
		}
		status = &s
	}

	goals, err := h.goalService.GetUserGoals(userID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, goals, "")
}

// GetGoalByID handles the retrieval of a specific goal
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} DataResponse "Goal details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoalByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, goal, "")
}

// UpdateGoal handles updating a goal
// @Summary     Update goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Updated goal details"
// @Success     200 {object} DataResponse "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	update := services.GoalUpdate{
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Status:        req.Status,
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			update.ClearDeadline = true
		} else {
			update.Deadline, err = parseOptionalDay(req.Deadline, "deadline")
			if err != nil {
				respondWithError(c, err)
				return
			}
		}
	}

	goal, err := h.goalService.UpdateGoal(userID, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_GOAL", "goal", goal.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, goal, "")
}

// DeleteGoal handles deleting a goal
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} DataResponse "Goal deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID := c.Param("id")
	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, nil, "Goal deleted successfully")
}

// AddFunds handles adding money to a goal
// @Summary     Add funds to a goal
// @Description Increase the saved amount. Reaching the target completes the goal.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Goal ID"
// @Param       request body AmountRequest true "Amount to add"
// @Success     200 {object} DataResponse "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid amount or target exceeded"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/add-funds [post]
func (h *GoalHandler) AddFunds(c *gin.Context) {
	h.moveFunds(c, "GOAL_ADD_FUNDS", h.goalService.AddFunds)
}

// WithdrawFunds handles taking money out of a goal
// @Summary     Withdraw funds from a goal
// @Description Decrease the saved amount. Dropping below the target reopens a completed goal.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Goal ID"
// @Param       request body AmountRequest true "Amount to withdraw"
// @Success     200 {object} DataResponse "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid amount or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id}/withdraw-funds [post]
func (h *GoalHandler) WithdrawFunds(c *gin.Context) {
	h.moveFunds(c, "GOAL_WITHDRAW_FUNDS", h.goalService.WithdrawFunds)
}

func (h *GoalHandler) moveFunds(c *gin.Context, action string, move func(userID, goalID string, amount decimal.Decimal) (*services.GoalView, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AmountRequest
	if !bindJSON(c, &req) {
		return
	}

	goal, err := move(userID, c.Param("id"), *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, action, "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String(), "current_amount": goal.CurrentAmount.String()})

	respondWithData(c, http.StatusOK, goal, "")
}

// GetGoalSummary handles the goal overview
// @Summary     Goal summary
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Goal summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals/summary [get]
func (h *GoalHandler) GetGoalSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.goalService.GetGoalSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, summary, "")
}
