package reporting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
)

type stubProfiles struct {
	byUser map[string]*professionals.Professional
}

func (s *stubProfiles) GetByUserID(ctx context.Context, userID string) (*professionals.Professional, error) {
	if p, ok := s.byUser[userID]; ok {
		return p, nil
	}
	return nil, professionals.ErrProfessionalNotFound
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestOverview(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT patient_id\) FROM appointments`).WillReturnRows(countRows(42))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM professionals WHERE status = 'approved'`).WillReturnRows(countRows(7))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM professionals WHERE status = 'pending'`).WillReturnRows(countRows(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments`).WillReturnRows(countRows(120))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE status = 'completed'`).WillReturnRows(countRows(80))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE status = 'cancelled'`).WillReturnRows(countRows(10))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE status = 'scheduled'`).WillReturnRows(countRows(15))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(fee\), 0\) FROM appointments WHERE payment_status = 'paid'`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(64000))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(fee\), 0\) FROM appointments WHERE payment_status = 'paid' AND created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8000))

	h := NewHandler(db, &stubProfiles{}, 50, 0.15, nil)
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/overview", nil)
	rec := httptest.NewRecorder()
	h.Overview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got OverviewResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Patients != 42 || got.Professionals != 7 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.Revenue.TotalFees != 64000 {
		t.Fatalf("expected total fees 64000, got %d", got.Revenue.TotalFees)
	}
	if got.Revenue.Commission != 9600 {
		t.Fatalf("expected commission 9600, got %d", got.Revenue.Commission)
	}
	if got.Revenue.ThisMonth != 8000 {
		t.Fatalf("expected this month 8000, got %d", got.Revenue.ThisMonth)
	}
}

func TestStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT patient_id\) FROM appointments WHERE professional_id`).
		WithArgs("prof-1").WillReturnRows(countRows(12))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE professional_id = \$1 AND status = 'completed'`).
		WithArgs("prof-1").WillReturnRows(countRows(9))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments WHERE professional_id = \$1 AND status = 'scheduled'`).
		WithArgs("prof-1").WillReturnRows(countRows(2))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(fee\), 0\) FROM appointments WHERE professional_id = \$1 AND payment_status = 'paid'$`).
		WithArgs("prof-1").WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(7200))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(fee\), 0\) FROM appointments WHERE professional_id = \$1 AND payment_status = 'paid' AND created_at`).
		WithArgs("prof-1", sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(900))

	profiles := &stubProfiles{byUser: map[string]*professionals.Professional{
		"pro-user-1": {ID: "prof-1", UserID: "pro-user-1"},
	}}
	h := NewHandler(db, profiles, 50, 0.15, nil)

	req := httptest.NewRequest(http.MethodGet, "/professional/dashboard/stats", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), "pro-user-1"))
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TotalPatients != 12 || got.Completed != 9 || got.Upcoming != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.GrossFees != 7200 || got.ThisMonthFees != 900 {
		t.Fatalf("unexpected fees: %+v", got)
	}
	if got.Earnings.Payout != 7200-int(float64(7200)*0.15) {
		t.Fatalf("unexpected payout: %+v", got.Earnings)
	}
}

func TestStatsWithoutProfile(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	h := NewHandler(db, &stubProfiles{}, 50, 0.15, nil)
	req := httptest.NewRequest(http.MethodGet, "/professional/dashboard/stats", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), "stranger"))
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
