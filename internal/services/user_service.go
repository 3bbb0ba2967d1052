package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/logger"
	"tesoro/internal/mailer"
	"tesoro/internal/models"
	"tesoro/internal/pagination"
	"tesoro/internal/uuid"
)

// activationTokenBytes is the entropy of an activation token before hex encoding.
const activationTokenBytes = 32

// userService handles user-related business logic.
type userService struct {
	db            *gorm.DB
	notifier      mailer.Notifier
	activationTTL time.Duration
	bcryptCost    int
	now           func() time.Time
}

// NewUserService creates a new UserServicer. Activation messages go to notifier.
func NewUserService(db *gorm.DB, notifier mailer.Notifier, activationTTL time.Duration) UserServicer {
	if activationTTL <= 0 {
		activationTTL = 24 * time.Hour
	}
	return &userService{
		db:            db,
		notifier:      notifier,
		activationTTL: activationTTL,
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// Register creates an inactive user and sends the activation message.
// Notification failures are logged and never fail the registration.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUsername
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	token, err := newActivationToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiry := s.now().Add(s.activationTTL)

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	user := &models.User{
		Username:              username,
		Email:                 email,
		Password:              string(hashedPassword),
		FullName:              strings.TrimSpace(in.FullName),
		Currency:              currency,
		Status:                models.UserStatusInactive,
		ActivationToken:       &token,
		ActivationTokenExpiry: &expiry,
	}

	if err := s.db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.notifier != nil {
		msg := mailer.ActivationMessage{Email: user.Email, Username: user.Username, Token: token}
		if err := s.notifier.SendActivation(ctx, msg); err != nil {
			logger.Get().Errorw("failed to send activation email", "error", err, "user_id", user.ID)
		}
	}

	return user, nil
}

func newActivationToken() (string, error) {
	b := make([]byte, activationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Activate marks the user holding token as active and clears the token.
func (s *userService) Activate(token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.ErrInvalidActivationToken
	}

	var user models.User
	if err := s.db.Where("activation_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidActivationToken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.ActivationTokenExpiry != nil && s.now().After(*user.ActivationTokenExpiry) {
		return nil, apperrors.ErrActivationTokenExpired
	}

	updates := map[string]interface{}{
		"status":                  models.UserStatusActive,
		"activation_token":        nil,
		"activation_token_expiry": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserByID(user.ID)
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrUserNotFound
	}
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListUsers retrieves a paginated list of all users, newest first.
func (s *userService) ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.User{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	order := pagination.OrderBy(page.Sort, []string{"created_at", "username", "email"}, "created_at DESC")
	if err := base.Scopes(pagination.Paginate(page)).Order(order).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(users, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateUser updates profile fields; a new password is re-hashed.
func (s *userService) UpdateUser(id string, in UserUpdate) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency cannot be empty")
		}
		updates["currency"] = currency
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["password"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetUserByID(user.ID)
}

// ChangeStatus sets a user's status.
func (s *userService) ChangeStatus(id string, status models.UserStatus) (*models.User, error) {
	switch status {
	case models.UserStatusInactive, models.UserStatusActive, models.UserStatusSuspended:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status")
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Status = status
	return user, nil
}

// DeleteUser removes a user together with everything they own.
func (s *userService) DeleteUser(id string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.Transaction{},
			&models.Budget{},
			&models.Category{},
			&models.Account{},
			&models.Debt{},
			&models.Goal{},
			&models.AuditLog{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", user.ID).Delete(m).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
