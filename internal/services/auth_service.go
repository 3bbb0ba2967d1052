package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
)

// authService handles sign-in and session verification.
type authService struct {
	db     *gorm.DB
	issuer TokenIssuer
}

// NewAuthService creates a new AuthServicer that signs tokens with issuer.
func NewAuthService(db *gorm.DB, issuer TokenIssuer) AuthServicer {
	return &authService{db: db, issuer: issuer}
}

// SignIn authenticates by email or username and issues a session token.
// Only active users may sign in.
func (s *authService) SignIn(identifier, password string) (*SignInResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "identifier and password are required")
	}

	var user models.User
	err := s.db.Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSignInUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := checkStatus(user.Status); err != nil {
		return nil, err
	}

	token, err := s.issuer.Sign(&user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &SignInResult{Token: token, User: &user}, nil
}

func checkStatus(status models.UserStatus) error {
	switch status {
	case models.UserStatusActive:
		return nil
	case models.UserStatusInactive:
		return apperrors.WithMessage(apperrors.ErrAccountInactive, "Please activate your account via the email sent to you")
	case models.UserStatusSuspended:
		return apperrors.WithMessage(apperrors.ErrAccountSuspended, "Your account is suspended and cannot be accessed at this time")
	default:
		return apperrors.WithMessage(apperrors.ErrAccountStatusInvalid, "Your account status is not valid for access")
	}
}

// VerifySession re-fetches the user behind a session.
func (s *authService) VerifySession(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
