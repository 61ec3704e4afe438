package fees

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/healthconsult/telehealth-platform/internal/observability/metrics"
	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

var feesTracer = otel.Tracer("healthconsult.internal.fees")

// Repository is the persistence surface the workflow depends on.
type Repository interface {
	CreatePending(ctx context.Context, req *FeeChangeRequest) error
	GetByID(ctx context.Context, id string) (*FeeChangeRequest, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]*FeeChangeRequest, error)
	ListByStatus(ctx context.Context, status string) ([]*FeeChangeRequest, error)
	Review(ctx context.Context, id, status, notes, reviewedBy string) (*FeeChangeRequest, error)
	LatestApprovedFee(ctx context.Context, professionalID string) (int, bool, error)
}

// DefaultFeeSource resolves a professional's default consultation fee,
// used when no fee change was ever approved.
type DefaultFeeSource interface {
	DefaultFee(ctx context.Context, professionalID string) (int, error)
}

// Service runs the fee change workflow.
type Service struct {
	repo      Repository
	directory DefaultFeeSource
	metrics   *metrics.ConsultationMetrics
	logger    *logging.Logger
}

// NewService creates a fee change workflow service.
func NewService(repo Repository, directory DefaultFeeSource, m *metrics.ConsultationMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		directory: directory,
		metrics:   m,
		logger:    logger.Component("fees"),
	}
}

// RequestChange opens a pending fee change request for a professional.
// The current active fee is snapshotted onto the request so reviewers see
// what the change is relative to.
func (s *Service) RequestChange(ctx context.Context, professionalID string, change *ChangeRequest) (*FeeChangeRequest, error) {
	ctx, span := feesTracer.Start(ctx, "fees.request_change")
	defer span.End()
	span.SetAttributes(attribute.String("professional_id", professionalID))

	if err := change.Validate(); err != nil {
		return nil, err
	}

	current, err := s.ActiveFee(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	req := &FeeChangeRequest{
		ID:             uuid.New().String(),
		ProfessionalID: professionalID,
		CurrentFee:     current,
		RequestedFee:   change.RequestedFee,
		Reason:         change.Reason,
		Status:         StatusPending,
	}
	if err := s.repo.CreatePending(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("fee change requested",
		"request_id", req.ID,
		"professional_id", professionalID,
		"current_fee", current,
		"requested_fee", change.RequestedFee)
	return req, nil
}

// Approve accepts a pending request. Review notes are optional.
func (s *Service) Approve(ctx context.Context, requestID, reviewedBy, notes string) (*FeeChangeRequest, error) {
	return s.review(ctx, requestID, StatusApproved, reviewedBy, notes)
}

// Reject declines a pending request. Review notes are required so the
// professional learns why.
func (s *Service) Reject(ctx context.Context, requestID, reviewedBy, notes string) (*FeeChangeRequest, error) {
	if notes == "" {
		return nil, ErrNotesRequired
	}
	return s.review(ctx, requestID, StatusRejected, reviewedBy, notes)
}

func (s *Service) review(ctx context.Context, requestID, status, reviewedBy, notes string) (*FeeChangeRequest, error) {
	ctx, span := feesTracer.Start(ctx, "fees.review")
	defer span.End()
	span.SetAttributes(
		attribute.String("request_id", requestID),
		attribute.String("outcome", status),
	)

	req, err := s.repo.Review(ctx, requestID, status, notes, reviewedBy)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFeeReview(status)
	s.logger.Info("fee change reviewed",
		"request_id", req.ID,
		"professional_id", req.ProfessionalID,
		"outcome", status,
		"requested_fee", req.RequestedFee)
	return req, nil
}

// ActiveFee resolves a professional's billable consultation fee: the most
// recently approved requested fee, falling back to the profile default
// when no change was ever approved.
func (s *Service) ActiveFee(ctx context.Context, professionalID string) (int, error) {
	ctx, span := feesTracer.Start(ctx, "fees.active_fee")
	defer span.End()
	span.SetAttributes(attribute.String("professional_id", professionalID))

	fee, found, err := s.repo.LatestApprovedFee(ctx, professionalID)
	if err != nil {
		return 0, fmt.Errorf("fees: resolve active fee: %w", err)
	}
	if found {
		return fee, nil
	}
	return s.directory.DefaultFee(ctx, professionalID)
}

// Requests returns a professional's fee change history.
func (s *Service) Requests(ctx context.Context, professionalID string) ([]*FeeChangeRequest, error) {
	return s.repo.ListByProfessional(ctx, professionalID)
}

// RequestsByStatus returns the admin review queue for a status.
func (s *Service) RequestsByStatus(ctx context.Context, status string) ([]*FeeChangeRequest, error) {
	return s.repo.ListByStatus(ctx, status)
}
