package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/nomicho/internal/consumption"
	"github.com/hitoshi/nomicho/internal/house"
	"github.com/hitoshi/nomicho/internal/middleware"
	"github.com/hitoshi/nomicho/internal/model"
)

// mockSessionFinderForRouter はRouter統合テスト用のSessionFinderモック。
type mockSessionFinderForRouter struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinderForRouter) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// createTestRouter はテスト用の完全なルーターを構築するヘルパー。
func createTestRouter(healthErr error) http.Handler {
	sessionFinder := &mockSessionFinderForRouter{
		sessions: map[string]*model.Session{
			"valid-session": {
				ID:        "valid-session",
				UserID:    "user-test-1",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			},
		},
	}

	deps := &RouterDeps{
		HealthChecker: &mockHealthChecker{err: healthErr},
		SessionFinder: sessionFinder,
		RateLimiter:   middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		AuthService: &mockAuthService{
			getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
				return &model.User{ID: "user-test-1", Username: "taro", Email: "taro@example.com"}, nil
			},
		},
		AuthConfig:  AuthHandlerConfig{SessionMaxAge: 86400},
		UserService: &mockUserService{},
		HouseService: &mockHouseService{
			listHousesFn: func(ctx context.Context, callerID string) ([]house.HouseInfo, error) {
				return []house.HouseInfo{
					{House: model.House{ID: "house-1", Name: "テストハウス"}},
				}, nil
			},
		},
		DrinkService: &mockDrinkService{},
		ConsumptionService: &mockConsumptionService{
			recordFn: func(ctx context.Context, callerID string, input consumption.RecordInput) (*model.Consumption, error) {
				return &model.Consumption{
					ID:          "cons-1",
					UserID:      callerID,
					DrinkTypeID: input.DrinkTypeID,
					Quantity:    1,
					Cost:        decimal.RequireFromString("250.00"),
				}, nil
			},
		},
		DebtService: &mockDebtService{},
	}

	return NewRouter(deps)
}

// --- ルーティング統合テスト ---

func TestNewRouter_Health(t *testing.T) {
	router := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_Health_DBUnreachable(t *testing.T) {
	router := createTestRouter(context.DeadlineExceeded)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestNewRouter_AuthMe_NoAuthRequired(t *testing.T) {
	router := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /auth/me status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_APIRoutes_RequireSession(t *testing.T) {
	router := createTestRouter(nil)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/houses"},
		{http.MethodGet, "/api/drinks"},
		{http.MethodGet, "/api/consumptions/recent"},
		{http.MethodGet, "/api/houses/house-1/debts"},
		{http.MethodDelete, "/api/users/me"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestNewRouter_ListHouses_WithSession(t *testing.T) {
	router := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/houses", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /api/houses status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "テストハウス") {
		t.Errorf("body = %q, want it to contain the house name", w.Body.String())
	}
}

func TestNewRouter_RecordConsumption_WithSession(t *testing.T) {
	router := createTestRouter(nil)

	body := strings.NewReader(`{"drink_type_id": "drink-1", "quantity": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/consumptions", body)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("POST /api/consumptions status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestNewRouter_SecurityHeaders(t *testing.T) {
	router := createTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
