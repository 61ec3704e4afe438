package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

type emptyDirectory struct{}

func (emptyDirectory) Create(_ context.Context, req *professionals.ApplicationRequest) (*professionals.Professional, error) {
	return &professionals.Professional{UserID: req.UserID, Status: professionals.StatusPending}, nil
}

func (emptyDirectory) GetByID(context.Context, string) (*professionals.Professional, error) {
	return nil, professionals.ErrProfessionalNotFound
}

func (emptyDirectory) GetByUserID(context.Context, string) (*professionals.Professional, error) {
	return nil, professionals.ErrProfessionalNotFound
}

func (emptyDirectory) List(context.Context, string, int, int) ([]*professionals.Professional, error) {
	return nil, nil
}

func (emptyDirectory) ListApprovedByCondition(context.Context, string) ([]*professionals.Professional, error) {
	return nil, nil
}

func (emptyDirectory) UpdateStatus(context.Context, string, string) error {
	return nil
}

type staticConditions struct {
	conditions []catalog.Condition
}

func (s *staticConditions) ListConditions(context.Context) ([]catalog.Condition, error) {
	return s.conditions, nil
}

func (s *staticConditions) GetCondition(_ context.Context, id string) (*catalog.Condition, error) {
	for i := range s.conditions {
		if s.conditions[i].ID == id {
			return &s.conditions[i], nil
		}
	}
	return nil, catalog.ErrConditionNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	source := &staticConditions{conditions: []catalog.Condition{
		{ID: "diabetes", Name: "Diabetes", IsActive: true},
	}}

	cfg := &Config{
		Logger:               logger,
		CatalogHandler:       catalog.NewHandler(source, logger),
		ProfessionalsHandler: professionals.NewHandler(emptyDirectory{}, logger),
		AdminAuthSecret:      "test-secret",
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterConditionsArePublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/conditions", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var conditions []catalog.Condition
	if err := json.NewDecoder(rr.Body).Decode(&conditions); err != nil {
		t.Fatalf("failed to decode conditions: %v", err)
	}
	if len(conditions) != 1 || conditions[0].ID != "diabetes" {
		t.Errorf("unexpected conditions: %+v", conditions)
	}
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/professionals", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterAuthedRoutesRequireIdentity(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/professionals/my/profile", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterIdentityHeaderAccepted(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/professionals/my/profile", nil)
	req.Header.Set("X-User-Id", "user-1")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	// No profile exists for this user in the fixture.
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
