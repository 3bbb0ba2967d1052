package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
	"tesoro/internal/services"
)

// AdminHandler handles user management requests authenticated by API key.
type AdminHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{userService: userService, auditService: auditService}
}

// ChangeStatusRequest represents the payload for changing a user's status.
type ChangeStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,user_status"`
}

// ListUsers handles listing all users
// @Summary     List users
// @Description Get a paginated list of users
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} DataResponse "Paginated users"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.userService.ListUsers(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, result, "")
}

// GetUser handles fetching a single user
// @Summary     Get user
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path string true "User ID"
// @Success     200 {object} DataResponse "User"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, user, "")
}

// ChangeStatus handles changing a user's status
// @Summary     Change user status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string              true "User ID"
// @Param       request body ChangeStatusRequest true "New status"
// @Success     200 {object} DataResponse "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id}/status [patch]
func (h *AdminHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	user, err := h.userService.ChangeStatus(id, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "ADMIN_CHANGE_STATUS", "user", user.ID, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	respondWithData(c, http.StatusOK, user, "User status updated")
}

// DeleteUser handles deleting a user
// @Summary     Delete user
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id path string true "User ID"
// @Success     200 {object} DataResponse "User deleted"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.userService.DeleteUser(id); err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, nil, "User deleted successfully")
}
