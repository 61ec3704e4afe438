// Package professionals manages provider profiles and admin approval.
package professionals

import (
	"strings"
	"time"
)

// Review statuses for a professional profile.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Consultation fee bounds in whole currency units. The same range caps
// fee change requests, so no reviewed fee can leave it.
const (
	MinConsultationFee = 100
	MaxConsultationFee = 10_000
)

// Professional is a service provider offering paid consultations.
// ConsultationFee is the initial default fee; the active fee is resolved
// through the fee change workflow once a change is approved.
type Professional struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Qualification   string    `json:"qualification"`
	YearsExperience int       `json:"years_experience"`
	Bio             string    `json:"bio"`
	Languages       []string  `json:"languages"`
	ConsultationFee int       `json:"consultation_fee"`
	Conditions      []string  `json:"conditions"`
	ProfileImage    string    `json:"profile_image"`
	Rating          float64   `json:"rating"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplicationRequest is the request body for applying as a professional.
type ApplicationRequest struct {
	UserID          string   `json:"-"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Qualification   string   `json:"qualification"`
	YearsExperience int      `json:"years_experience"`
	Bio             string   `json:"bio"`
	Languages       []string `json:"languages"`
	ConsultationFee int      `json:"consultation_fee"`
	Conditions      []string `json:"conditions"`
	ProfileImage    string   `json:"profile_image"`
}

// Validate checks the application request.
func (r *ApplicationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if len(r.Conditions) == 0 {
		return ErrConditionsRequired
	}
	if r.ConsultationFee < MinConsultationFee || r.ConsultationFee > MaxConsultationFee {
		return ErrFeeOutOfRange
	}
	return nil
}

// ValidStatus reports whether s is a known review status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}
