package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tesoro/internal/mailer"
	"tesoro/internal/models"
)

// fixedNow is the clock used by services under test.
var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []mailer.ActivationMessage
	err  error
}

func (n *recordingNotifier) SendActivation(_ context.Context, msg mailer.ActivationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

type stubIssuer struct {
	token string
	err   error
}

func (s stubIssuer) Sign(*models.User) (string, error) {
	return s.token, s.err
}

func newTestUserService(db *gorm.DB, notifier mailer.Notifier) *userService {
	return &userService{
		db:            db,
		notifier:      notifier,
		activationTTL: time.Hour,
		bcryptCost:    bcrypt.MinCost,
		now:           func() time.Time { return fixedNow },
	}
}

func newTestGoalService(db *gorm.DB) *goalService {
	return &goalService{db: db, now: func() time.Time { return fixedNow }}
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
