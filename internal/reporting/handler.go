// Package reporting serves the admin analytics overview and the
// professional dashboard, aggregated straight from SQL.
package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/healthconsult/telehealth-platform/internal/billing"
	"github.com/healthconsult/telehealth-platform/internal/identity"
	"github.com/healthconsult/telehealth-platform/internal/professionals"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// ProfileResolver maps an authenticated user to their professional profile.
type ProfileResolver interface {
	GetByUserID(ctx context.Context, userID string) (*professionals.Professional, error)
}

// Handler aggregates platform analytics.
type Handler struct {
	db             *sql.DB
	profiles       ProfileResolver
	platformFee    int
	commissionRate float64
	logger         *logging.Logger
}

// NewHandler creates a reporting handler.
func NewHandler(db *sql.DB, profiles ProfileResolver, platformFee int, commissionRate float64, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		db:             db,
		profiles:       profiles,
		platformFee:    platformFee,
		commissionRate: commissionRate,
		logger:         logger,
	}
}

// OverviewResponse contains the admin dashboard metrics.
type OverviewResponse struct {
	Patients            int `json:"patients"`
	Professionals       int `json:"professionals"`
	PendingApplications int `json:"pending_applications"`
	Appointments        struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Cancelled int `json:"cancelled"`
		Upcoming  int `json:"upcoming"`
	} `json:"appointments"`
	Revenue struct {
		TotalFees  int `json:"total_fees"`
		Commission int `json:"commission"`
		ThisMonth  int `json:"this_month_fees"`
	} `json:"revenue"`
}

// Overview handles GET /admin/analytics/overview
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var resp OverviewResponse

	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT patient_id) FROM appointments`,
	).Scan(&resp.Patients)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM professionals WHERE status = 'approved'`,
	).Scan(&resp.Professionals)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM professionals WHERE status = 'pending'`,
	).Scan(&resp.PendingApplications)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments`,
	).Scan(&resp.Appointments.Total)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE status = 'completed'`,
	).Scan(&resp.Appointments.Completed)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE status = 'cancelled'`,
	).Scan(&resp.Appointments.Cancelled)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE status = 'scheduled' AND scheduled_at > now()`,
	).Scan(&resp.Appointments.Upcoming)

	var totalFees, thisMonth int
	if err := h.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE payment_status = 'paid'`,
	).Scan(&totalFees); err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.logger.Error("failed to aggregate revenue", "error", err)
		http.Error(w, "failed to load overview", http.StatusInternalServerError)
		return
	}
	h.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE payment_status = 'paid' AND created_at >= $1`,
		monthStart,
	).Scan(&thisMonth)

	resp.Revenue.TotalFees = totalFees
	resp.Revenue.Commission = int(float64(totalFees) * h.commissionRate)
	resp.Revenue.ThisMonth = thisMonth

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// StatsResponse contains a professional's dashboard numbers.
type StatsResponse struct {
	ProfessionalID string          `json:"professional_id"`
	TotalPatients  int             `json:"total_patients"`
	Completed      int             `json:"completed_appointments"`
	Upcoming       int             `json:"upcoming_appointments"`
	GrossFees      int             `json:"gross_fees"`
	ThisMonthFees  int             `json:"this_month_fees"`
	Earnings       billing.Amounts `json:"earnings_breakdown"`
}

// Stats handles GET /professional/dashboard/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	prof, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, professionals.ErrProfessionalNotFound) {
			http.Error(w, "professional profile not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve professional", "error", err, "user_id", userID)
		http.Error(w, "failed to resolve professional", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	resp := StatsResponse{ProfessionalID: prof.ID}

	monthStart := time.Now().UTC()
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT patient_id) FROM appointments WHERE professional_id = $1`,
		prof.ID,
	).Scan(&resp.TotalPatients)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE professional_id = $1 AND status = 'completed'`,
		prof.ID,
	).Scan(&resp.Completed)

	h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE professional_id = $1 AND status = 'scheduled' AND scheduled_at > now()`,
		prof.ID,
	).Scan(&resp.Upcoming)

	if err := h.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE professional_id = $1 AND payment_status = 'paid'`,
		prof.ID,
	).Scan(&resp.GrossFees); err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.logger.Error("failed to aggregate earnings", "error", err, "professional_id", prof.ID)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	h.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE professional_id = $1 AND payment_status = 'paid' AND created_at >= $2`,
		prof.ID, monthStart,
	).Scan(&resp.ThisMonthFees)

	resp.Earnings = billing.BookingAmounts(resp.GrossFees, h.platformFee, h.commissionRate)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
