// Package fees implements the consultation fee change workflow:
// professionals request a new fee, admins approve or reject, and the
// active fee is resolved from the latest approved request.
package fees

import (
	"strings"
	"time"

	"github.com/healthconsult/telehealth-platform/internal/professionals"
)

// Review statuses for a fee change request.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// FeeChangeRequest is a professional's proposal to change their
// consultation fee. CurrentFee snapshots the active fee at request time.
type FeeChangeRequest struct {
	ID             string     `json:"id"`
	ProfessionalID string     `json:"professional_id"`
	CurrentFee     int        `json:"current_fee"`
	RequestedFee   int        `json:"requested_fee"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ChangeRequest is the request body for proposing a fee change.
type ChangeRequest struct {
	RequestedFee int    `json:"requested_fee"`
	Reason       string `json:"reason"`
}

// Validate checks the proposal against the platform fee bounds.
func (r *ChangeRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return ErrReasonRequired
	}
	if r.RequestedFee < professionals.MinConsultationFee || r.RequestedFee > professionals.MaxConsultationFee {
		return professionals.ErrFeeOutOfRange
	}
	return nil
}
