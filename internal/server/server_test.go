package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tesoro/internal/config"
	"tesoro/internal/mailer"
	"tesoro/internal/middleware"
	"tesoro/internal/services"
	"tesoro/internal/session"
	"tesoro/internal/testutil"
)

const testAdminKey = "flow-admin-key"

func init() {
	gin.SetMode(gin.TestMode)
}

// outbox records activation messages instead of sending them.
type outbox struct {
	mu   sync.Mutex
	sent []mailer.ActivationMessage
}

func (o *outbox) SendActivation(_ context.Context, msg mailer.ActivationMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) tokenFor(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range o.sent {
		if msg.Email == email {
			return msg.Token
		}
	}
	t.Fatalf("no activation message sent to %s", email)
	return ""
}

type flow struct {
	router *gin.Engine
	db     *gorm.DB
	outbox *outbox
}

func newFlow(t *testing.T) *flow {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		Env:           "test",
		CORSOrigin:    "http://localhost:5173",
		AdminAPIKey:   testAdminKey,
		AuthRateLimit: 1000,
		AuthRateBurst: 1000,
	}

	box := &outbox{}
	tokens := middleware.NewTokenManager("flow-secret", time.Hour, session.NewMemoryStore())
	accountService := services.NewAccountService(db)

	router := New(Deps{
		Config: cfg,
		Tokens: tokens,
		Services: Services{
			User:        services.NewUserService(db, box, time.Hour),
			Auth:        services.NewAuthService(db, tokens),
			Account:     accountService,
			Category:    services.NewCategoryService(db),
			Transaction: services.NewTransactionService(db, accountService),
			Budget:      services.NewBudgetService(db),
			Debt:        services.NewDebtService(db),
			Goal:        services.NewGoalService(db),
			Audit:       services.NewAuditService(db),
		},
	})

	return &flow{router: router, db: db, outbox: box}
}

func (f *flow) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, rec)
	obj, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	return obj
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
	detail, _ := body["error"].(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectDecimal(t *testing.T, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", got, got)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	if !d.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s, got %s", want, s)
	}
}

// signUp registers, activates and signs in a user, returning the session token.
func (f *flow) signUp(t *testing.T, username string) string {
	t.Helper()
	email := username + "@example.com"
	rec := f.do(http.MethodPost, "/api/v1/auth/register",
		`{"username":"`+username+`","email":"`+email+`","password":"password123","full_name":"Flow User"}`, "")
	expectStatus(t, rec, http.StatusCreated)

	rec = f.do(http.MethodGet, "/api/v1/auth/activate/"+f.outbox.tokenFor(t, email), "", "")
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email_or_username":"`+username+`","password":"password123"}`, "")
	expectStatus(t, rec, http.StatusOK)
	token, _ := data(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("expected a session token")
	}
	return token
}

func TestHealth(t *testing.T) {
	f := newFlow(t)
	rec := f.do(http.MethodGet, "/api/health", "", "")
	expectStatus(t, rec, http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	f := newFlow(t)
	rec := f.do(http.MethodOptions, "/api/v1/accounts", "", "")
	expectStatus(t, rec, http.StatusNoContent)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow-origin %q", got)
	}
}

func TestRegistrationFlow(t *testing.T) {
	f := newFlow(t)

	rec := f.do(http.MethodPost, "/api/v1/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`, "")
	expectStatus(t, rec, http.StatusCreated)
	if _, leaked := data(t, rec)["password"]; leaked {
		t.Error("password must not be serialized")
	}

	t.Run("duplicate email", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/auth/register",
			`{"username":"alice2","email":"alice@example.com","password":"password123"}`, "")
		expectStatus(t, rec, http.StatusConflict)
		if code := errorCode(t, rec); code != "DUPLICATE_EMAIL" {
			t.Errorf("expected DUPLICATE_EMAIL, got %s", code)
		}
	})

	t.Run("login before activation", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/auth/login", `{"email_or_username":"alice","password":"password123"}`, "")
		expectStatus(t, rec, http.StatusForbidden)
		if code := errorCode(t, rec); code != "ACCOUNT_INACTIVE" {
			t.Errorf("expected ACCOUNT_INACTIVE, got %s", code)
		}
	})

	t.Run("unknown activation token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/auth/activate/not-a-token", "", "")
		expectStatus(t, rec, http.StatusBadRequest)
	})

	rec = f.do(http.MethodGet, "/api/v1/auth/activate/"+f.outbox.tokenFor(t, "alice@example.com"), "", "")
	expectStatus(t, rec, http.StatusOK)
	if status := data(t, rec)["status"]; status != "active" {
		t.Errorf("expected active user, got %v", status)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/auth/login", `{"email_or_username":"alice","password":"nope-nope"}`, "")
		expectStatus(t, rec, http.StatusUnauthorized)
		if code := errorCode(t, rec); code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/auth/login", `{"email_or_username":"nobody","password":"password123"}`, "")
		expectStatus(t, rec, http.StatusUnauthorized)
		if code := errorCode(t, rec); code != "USER_NOT_FOUND" {
			t.Errorf("expected USER_NOT_FOUND, got %s", code)
		}
	})

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email_or_username":"alice@example.com","password":"password123"}`, "")
	expectStatus(t, rec, http.StatusOK)
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || !sessionCookie.HttpOnly {
		t.Fatalf("expected an httpOnly session cookie, got %v", sessionCookie)
	}
	if sessionCookie.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("expected cookie to live as long as the token, got max-age %d", sessionCookie.MaxAge)
	}

	t.Run("cookie session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		expectStatus(t, rec, http.StatusOK)
		if email := data(t, rec)["email"]; email != "alice@example.com" {
			t.Errorf("unexpected profile email %v", email)
		}
	})
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFlow(t)
	token := f.signUp(t, "bob")

	expectStatus(t, f.do(http.MethodGet, "/api/v1/auth/verify", "", token), http.StatusOK)
	expectStatus(t, f.do(http.MethodPost, "/api/v1/auth/logout", "", token), http.StatusOK)

	rec := f.do(http.MethodGet, "/api/v1/auth/verify", "", token)
	expectStatus(t, rec, http.StatusUnauthorized)
	if code := errorCode(t, rec); code != "INVALID_TOKEN" {
		t.Errorf("expected INVALID_TOKEN, got %s", code)
	}
	expectStatus(t, f.do(http.MethodGet, "/api/v1/accounts", "", token), http.StatusUnauthorized)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFlow(t)
	paths := []string{"/api/v1/profile", "/api/v1/accounts", "/api/v1/transactions", "/api/v1/goals/summary"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := f.do(http.MethodGet, path, "", "")
			expectStatus(t, rec, http.StatusUnauthorized)
		})
	}
}

func TestLedgerFlow(t *testing.T) {
	f := newFlow(t)
	token := f.signUp(t, "carol")

	rec := f.do(http.MethodPost, "/api/v1/accounts", `{"name":"Checking","current_balance":"2000.00"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	accountID, _ := data(t, rec)["id"].(string)

	rec = f.do(http.MethodPost, "/api/v1/categories", `{"name":"Groceries","type":"expense"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	groceriesID, _ := data(t, rec)["id"].(string)

	rec = f.do(http.MethodPost, "/api/v1/categories", `{"name":"Salary","type":"income"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	salaryID, _ := data(t, rec)["id"].(string)

	t.Run("category names are unique ignoring case", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/categories", `{"name":"groceries","type":"expense"}`, token)
		expectStatus(t, rec, http.StatusBadRequest)
		if code := errorCode(t, rec); code != "DUPLICATE_CATEGORY" {
			t.Errorf("expected DUPLICATE_CATEGORY, got %s", code)
		}
	})

	rec = f.do(http.MethodPost, "/api/v1/transactions",
		`{"account_id":"`+accountID+`","category_id":"`+groceriesID+`","type":"expense","amount":"42.50","date":"2025-03-10"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	expenseID, _ := data(t, rec)["id"].(string)

	rec = f.do(http.MethodPost, "/api/v1/transactions",
		`{"account_id":"`+accountID+`","category_id":"`+salaryID+`","type":"income","amount":"500","date":"2025-03-15"}`, token)
	expectStatus(t, rec, http.StatusCreated)

	t.Run("category must match type", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/v1/transactions",
			`{"account_id":"`+accountID+`","category_id":"`+salaryID+`","type":"expense","amount":"5"}`, token)
		expectStatus(t, rec, http.StatusBadRequest)
		if code := errorCode(t, rec); code != "CATEGORY_TYPE_MISMATCH" {
			t.Errorf("expected CATEGORY_TYPE_MISMATCH, got %s", code)
		}
	})

	rec = f.do(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	expectStatus(t, rec, http.StatusOK)
	expectDecimal(t, data(t, rec)["current_balance"], "2457.50")

	rec = f.do(http.MethodPut, "/api/v1/transactions/"+expenseID, `{"amount":"100"}`, token)
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(http.MethodGet, "/api/v1/accounts/balance", "", token)
	expectStatus(t, rec, http.StatusOK)
	expectDecimal(t, data(t, rec)["total"], "2400")

	rec = f.do(http.MethodGet, "/api/v1/transactions/summary?start_date=2025-03-01&end_date=2025-03-31", "", token)
	expectStatus(t, rec, http.StatusOK)
	summary := data(t, rec)
	expectDecimal(t, summary["income"], "500")
	expectDecimal(t, summary["expense"], "100")

	expectStatus(t, f.do(http.MethodGet, "/api/v1/transactions/report/2025/3", "", token), http.StatusOK)
	expectStatus(t, f.do(http.MethodGet, "/api/v1/transactions/report/2025/13", "", token), http.StatusBadRequest)

	rec = f.do(http.MethodDelete, "/api/v1/transactions/"+expenseID, "", token)
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	expectStatus(t, rec, http.StatusOK)
	expectDecimal(t, data(t, rec)["current_balance"], "2500")

	t.Run("other users are forbidden from the account", func(t *testing.T) {
		other := f.signUp(t, "dave")
		rec := f.do(http.MethodGet, "/api/v1/accounts/"+accountID, "", other)
		expectStatus(t, rec, http.StatusForbidden)
		if code := errorCode(t, rec); code != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %s", code)
		}
	})
}

func TestDebtAndGoalFlow(t *testing.T) {
	f := newFlow(t)
	token := f.signUp(t, "erin")

	rec := f.do(http.MethodPost, "/api/v1/debts", `{"name":"Car loan","total_amount":"1000"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	debtID, _ := data(t, rec)["id"].(string)

	rec = f.do(http.MethodPost, "/api/v1/debts/"+debtID+"/payment", `{"amount":"1200"}`, token)
	expectStatus(t, rec, http.StatusBadRequest)
	if code := errorCode(t, rec); code != "PAYMENT_EXCEEDS_REMAINING" {
		t.Errorf("expected PAYMENT_EXCEEDS_REMAINING, got %s", code)
	}

	rec = f.do(http.MethodPost, "/api/v1/debts/"+debtID+"/payment", `{"amount":"400"}`, token)
	expectStatus(t, rec, http.StatusOK)
	expectDecimal(t, data(t, rec)["remaining_amount"], "600")

	rec = f.do(http.MethodPost, "/api/v1/goals", `{"name":"Holiday","target_amount":"300","deadline":"2099-06-30"}`, token)
	expectStatus(t, rec, http.StatusCreated)
	goalID, _ := data(t, rec)["id"].(string)

	rec = f.do(http.MethodPut, "/api/v1/goals/"+goalID, `{"deadline":""}`, token)
	expectStatus(t, rec, http.StatusOK)
	if deadline := data(t, rec)["deadline"]; deadline != nil {
		t.Errorf("expected deadline cleared, got %v", deadline)
	}

	rec = f.do(http.MethodPost, "/api/v1/goals/"+goalID+"/add-funds", `{"amount":"300"}`, token)
	expectStatus(t, rec, http.StatusOK)
	if status := data(t, rec)["status"]; status != "completed" {
		t.Errorf("expected completed goal, got %v", status)
	}
}

func TestAdminRoutes(t *testing.T) {
	f := newFlow(t)
	f.signUp(t, "frank")

	t.Run("missing key", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/admin/users", "", "")
		expectStatus(t, rec, http.StatusUnauthorized)
		if code := errorCode(t, rec); code != "INVALID_API_KEY" {
			t.Errorf("expected INVALID_API_KEY, got %s", code)
		}
	})

	t.Run("list users", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.Header.Set(middleware.AdminAPIKeyHeader, testAdminKey)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		expectStatus(t, rec, http.StatusOK)
	})
}
