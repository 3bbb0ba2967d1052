package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tesoro/internal/middleware"
	"tesoro/internal/services"
)

// SessionRevoker ends a signed-in session before its token expires.
type SessionRevoker interface {
	Revoke(ctx context.Context, claims *middleware.Claims) error
}

// CookieOptions controls the session cookie set at login.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	authService  services.AuthServicer
	sessions     SessionRevoker
	auditService services.AuditServicer
	cookie       CookieOptions
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, authService services.AuthServicer, sessions SessionRevoker, auditService services.AuditServicer, cookie CookieOptions) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * time.Hour
	}
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		sessions:     sessions,
		auditService: auditService,
		cookie:       cookie,
	}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" binding:"max=100"`
	Currency string `json:"currency" binding:"omitempty,iso4217"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Currency *string `json:"currency" binding:"omitempty,iso4217"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, token, maxAge, "/", "", h.cookie.Secure, true)
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register an inactive user and send the activation email
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} DataResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email or username taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Currency: req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusCreated, user, "Registered user. Please check your email to activate your account.")
}

// Activate handles account activation
// @Summary     Activate account
// @Description Activate a registered user with the emailed token
// @Tags        auth
// @Produce     json
// @Param       token path string true "Activation token"
// @Success     200 {object} DataResponse "Account activated"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/activate/{token} [get]
func (h *AuthHandler) Activate(c *gin.Context) {
	user, err := h.userService.Activate(c.Param("token"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "ACTIVATE", "user", user.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, user, "Account successfully activated")
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate by email or username. The token is returned and set as an httpOnly cookie.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} DataResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     403 {object} ErrorResponse "Account inactive or suspended"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.SignIn(req.EmailOrUsername, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()))
	h.auditService.Log(result.User.ID, "LOGIN", "user", result.User.ID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, result, "Login successful")
}

// Logout handles user logout
// @Summary     Logout user
// @Description Revoke the current session token and clear the session cookie
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Logged out"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
		respondWithError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	h.auditService.Log(claims.UserID, "LOGOUT", "user", claims.UserID, c.ClientIP(), nil)

	respondWithData(c, http.StatusOK, nil, "Logout successful")
}

// Verify handles session verification
// @Summary     Verify session
// @Description Return the user behind the current session
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "Session user"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.authService.VerifySession(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, user, "")
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} DataResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithData(c, http.StatusOK, user, "")
}

// UpdateProfile updates the user's profile
// @Summary     Update user profile
// @Description Update full name, currency or password of the authenticated user
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} DataResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(userID, services.UserUpdate{
		FullName: req.FullName,
		Currency: req.Currency,
		Password: req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.FullName != nil {
		changes["full_name"] = *req.FullName
	}
	if req.Currency != nil {
		changes["currency"] = *req.Currency
	}
	if req.Password != nil {
		changes["password"] = "changed"
	}
	h.auditService.Log(userID, "UPDATE_PROFILE", "user", userID, c.ClientIP(), changes)

	respondWithData(c, http.StatusOK, user, "")
}
