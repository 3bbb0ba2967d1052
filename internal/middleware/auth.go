package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
	"tesoro/internal/session"
	"tesoro/internal/uuid"
)

// TokenCookieName is the cookie that carries the session token for browsers.
const TokenCookieName = "token"

const tokenIssuer = "tesoro-api"

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

// Claims are the claims carried by a session token.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens. Revoked token ids are kept
// in store until the token would have expired.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	store  session.Store
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. A nil store disables revocation.
func NewTokenManager(secret string, ttl time.Duration, store session.Store) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Sign issues a session token for user.
func (m *TokenManager) Sign(user *models.User) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a token's signature, lifetime and revocation state.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}

	if m.store != nil && claims.ID != "" {
		revoked, err := m.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if revoked {
			return nil, apperrors.ErrInvalidToken
		}
	}

	return claims, nil
}

// Revoke denylists the token behind claims for the rest of its lifetime.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.store == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return m.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(m.now()))
}

// tokenFromRequest reads the bearer token, falling back to the session cookie.
func tokenFromRequest(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrUnauthorized, "No token provided, authorization denied")
}

// AuthMiddleware verifies the session token and sets the user in the context.
func (m *TokenManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		claims, err := m.Parse(c.Request.Context(), tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*Claims, error) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type in context")
	}
	return claims, nil
}
