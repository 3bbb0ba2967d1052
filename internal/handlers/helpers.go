package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/middleware"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// respondWithData writes the success envelope. An empty message is omitted.
func respondWithData(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// bindJSON binds the request body, mapping binding failures to ErrInvalidInput.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

// parseOptionalDay parses an optional calendar day. Nil or blank input yields nil.
func parseOptionalDay(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	day, err := ledger.ParseDay(*raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+field+": expected YYYY-MM-DD")
	}
	return &day, nil
}

// WindowQuery is the optional inclusive date window accepted by aggregate endpoints.
type WindowQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,calendar_day"`
	EndDate   string `form:"end_date" binding:"omitempty,calendar_day"`
}

// window converts the query into a ledger.Window.
func (q WindowQuery) window() (ledger.Window, error) {
	start, err := parseOptionalDay(&q.StartDate, "start_date")
	if err != nil {
		return ledger.Window{}, err
	}
	end, err := parseOptionalDay(&q.EndDate, "end_date")
	if err != nil {
		return ledger.Window{}, err
	}
	return ledger.Window{Start: start, End: end}, nil
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

// DataResponse represents a successful response.
type DataResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}
