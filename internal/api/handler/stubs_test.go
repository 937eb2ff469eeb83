package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lyvo/session-gateway/internal/api/middleware"
	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

const (
	testDevice = "6f1c7a52-8f7e-4c3b-9d0a-2b1e4f5a6c7d"
	testTab    = "tab-a"
)

var errBoom = errors.New("boom")

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSessionService struct {
	loginFn    func(ctx context.Context, o ports.Origin, email, password string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, o ports.Origin, in ports.RegisterInput) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, o ports.Origin) (*ports.LogoutResult, error)
	rewriteFn  func(ctx context.Context, o ports.Origin) (domain.SessionRecord, error)
	profileFn  func(ctx context.Context, o ports.Origin, f domain.ProfileFields) (domain.SessionRecord, error)
	current    domain.SessionRecord
}

func (s *stubSessionService) Login(ctx context.Context, o ports.Origin, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, o, email, password)
}

func (s *stubSessionService) Register(ctx context.Context, o ports.Origin, in ports.RegisterInput) (*ports.LoginResult, error) {
	return s.registerFn(ctx, o, in)
}

func (s *stubSessionService) Logout(ctx context.Context, o ports.Origin) (*ports.LogoutResult, error) {
	return s.logoutFn(ctx, o)
}

func (s *stubSessionService) Refresh(ctx context.Context, o ports.Origin) (domain.SessionRecord, error) {
	return s.rewriteFn(ctx, o)
}

func (s *stubSessionService) CompleteOnboarding(ctx context.Context, o ports.Origin) (domain.SessionRecord, error) {
	return s.rewriteFn(ctx, o)
}

func (s *stubSessionService) UpdateProfile(ctx context.Context, o ports.Origin, f domain.ProfileFields) (domain.SessionRecord, error) {
	return s.profileFn(ctx, o, f)
}

func (s *stubSessionService) Current(_ context.Context, _ string) domain.SessionRecord {
	return s.current
}

type stubAuthService struct {
	profileFn    func(ctx context.Context, userID string) (*domain.User, error)
	onboardingFn func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (string, *domain.User, error) {
	return "", nil, errBoom
}

func (s *stubAuthService) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errBoom
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) CompleteOnboarding(ctx context.Context, userID string) (*domain.User, error) {
	return s.onboardingFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(context.Context, string, domain.ProfileFields) (*domain.User, error) {
	return nil, errBoom
}

type stubSessions struct {
	mu      sync.Mutex
	records map[string]domain.SessionRecord
}

func newStubSessions() *stubSessions {
	return &stubSessions{records: make(map[string]domain.SessionRecord)}
}

func (s *stubSessions) Read(_ context.Context, deviceID string) domain.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[deviceID]
}

func (s *stubSessions) set(deviceID string, rec domain.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[deviceID] = rec
}

func session(u domain.UserProfile) domain.SessionRecord {
	return domain.SessionRecord{Token: "t", User: &u}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest runs the Device middleware for the test device and tab, then
// returns the context handed to the handler.
func newRequest(t *testing.T, e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.AddCookie(deviceCookie())
	req.Header.Set(middleware.TabHeader, testTab)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var out echo.Context
	h := middleware.Device(middleware.DeviceOptions{})(func(c echo.Context) error {
		out = c
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("device middleware: %v", err)
	}
	return out, rec
}

func deviceCookie() *http.Cookie {
	return &http.Cookie{Name: middleware.DeviceCookie, Value: testDevice}
}
