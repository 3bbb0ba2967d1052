package services

import (
	"errors"
	"strings"
	"testing"

	"tesoro/internal/models"
	"tesoro/internal/testutil"
)

func TestSignIn(t *testing.T) {
	t.Run("by_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthService(db, stubIssuer{token: "signed"})
		user := testutil.CreateTestUser(t, db)

		result, err := svc.SignIn(strings.ToUpper(user.Email), testutil.TestPassword)
		testutil.AssertNoError(t, err)

		if result.Token != "signed" {
			t.Errorf("expected issued token, got %q", result.Token)
		}
		if result.User.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, result.User.ID)
		}
	})

	t.Run("by_username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthService(db, stubIssuer{token: "signed"})
		user := testutil.CreateTestUser(t, db)

		result, err := svc.SignIn(user.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if result.User.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, result.User.ID)
		}
	})

	tests := []struct {
		name     string
		status   models.UserStatus
		password string
		wantCode string
	}{
		{name: "wrong_password", status: models.UserStatusActive, password: "nope", wantCode: "INVALID_CREDENTIALS"},
		{name: "inactive", status: models.UserStatusInactive, password: testutil.TestPassword, wantCode: "ACCOUNT_INACTIVE"},
		{name: "suspended", status: models.UserStatusSuspended, password: testutil.TestPassword, wantCode: "ACCOUNT_SUSPENDED"},
		{name: "unknown_status", status: models.UserStatus("archived"), password: testutil.TestPassword, wantCode: "ACCOUNT_STATUS_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewAuthService(db, stubIssuer{token: "signed"})
			user := testutil.CreateTestUserWithStatus(t, db, tt.status)

			_, err := svc.SignIn(user.Email, tt.password)
			testutil.AssertAppError(t, err, tt.wantCode)
		})
	}

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthService(db, stubIssuer{token: "signed"})

		_, err := svc.SignIn("ghost@example.com", "pw")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("empty_identifier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthService(db, stubIssuer{token: "signed"})

		_, err := svc.SignIn(" ", "pw")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("issuer_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthService(db, stubIssuer{err: errors.New("no key")})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SignIn(user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}

func TestVerifySession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuthService(db, stubIssuer{})
	user := testutil.CreateTestUser(t, db)

	got, err := svc.VerifySession(user.ID)
	testutil.AssertNoError(t, err)
	if got.Username != user.Username {
		t.Errorf("expected %s, got %s", user.Username, got.Username)
	}

	_, err = svc.VerifySession("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "UNAUTHORIZED")
}
