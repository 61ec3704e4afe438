package fees

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthconsult/telehealth-platform/internal/professionals"
)

type stubRepo struct {
	requests    map[string]*FeeChangeRequest
	pending     map[string]bool // professionalID -> has pending
	approvedFee map[string]int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		requests:    map[string]*FeeChangeRequest{},
		pending:     map[string]bool{},
		approvedFee: map[string]int{},
	}
}

func (s *stubRepo) CreatePending(ctx context.Context, req *FeeChangeRequest) error {
	if s.pending[req.ProfessionalID] {
		return ErrPendingRequestExists
	}
	s.pending[req.ProfessionalID] = true
	s.requests[req.ID] = req
	return nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*FeeChangeRequest, error) {
	if req, ok := s.requests[id]; ok {
		return req, nil
	}
	return nil, ErrRequestNotFound
}

func (s *stubRepo) ListByProfessional(ctx context.Context, professionalID string) ([]*FeeChangeRequest, error) {
	var out []*FeeChangeRequest
	for _, req := range s.requests {
		if req.ProfessionalID == professionalID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *stubRepo) ListByStatus(ctx context.Context, status string) ([]*FeeChangeRequest, error) {
	var out []*FeeChangeRequest
	for _, req := range s.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *stubRepo) Review(ctx context.Context, id, status, notes, reviewedBy string) (*FeeChangeRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if req.Status != StatusPending {
		return nil, ErrRequestReviewed
	}
	req.Status = status
	req.ReviewNotes = notes
	req.ReviewedBy = reviewedBy
	s.pending[req.ProfessionalID] = false
	if status == StatusApproved {
		s.approvedFee[req.ProfessionalID] = req.RequestedFee
	}
	return req, nil
}

func (s *stubRepo) LatestApprovedFee(ctx context.Context, professionalID string) (int, bool, error) {
	fee, ok := s.approvedFee[professionalID]
	return fee, ok, nil
}

type stubFeeSource struct {
	fees map[string]int
}

func (s *stubFeeSource) DefaultFee(ctx context.Context, professionalID string) (int, error) {
	if fee, ok := s.fees[professionalID]; ok {
		return fee, nil
	}
	return 0, professionals.ErrProfessionalNotFound
}

func newTestService(repo Repository, source DefaultFeeSource) *Service {
	return NewService(repo, source, nil, nil)
}

func TestRequestChangeSnapshotsCurrentFee(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	req, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "market rates"})
	require.NoError(t, err)
	require.Equal(t, 500, req.CurrentFee)
	require.Equal(t, 800, req.RequestedFee)
	require.Equal(t, StatusPending, req.Status)
}

func TestRequestChangeValidation(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	_, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800})
	require.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 50, Reason: "too low"})
	require.ErrorIs(t, err, professionals.ErrFeeOutOfRange)

	_, err = svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 20_000, Reason: "too high"})
	require.ErrorIs(t, err, professionals.ErrFeeOutOfRange)
}

func TestRequestChangeUnknownProfessional(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubFeeSource{})

	_, err := svc.RequestChange(context.Background(), "ghost", &ChangeRequest{RequestedFee: 800, Reason: "market rates"})
	require.ErrorIs(t, err, professionals.ErrProfessionalNotFound)
}

func TestSecondPendingRequestConflicts(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	_, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "first"})
	require.NoError(t, err)

	_, err = svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 900, Reason: "second"})
	require.ErrorIs(t, err, ErrPendingRequestExists)
}

func TestApproveUpdatesActiveFee(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	req, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "market rates"})
	require.NoError(t, err)

	// Notes are optional on approval.
	approved, err := svc.Approve(context.Background(), req.ID, "admin-1", "")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)

	fee, err := svc.ActiveFee(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Equal(t, 800, fee)
}

func TestRejectRequiresNotes(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	req, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "market rates"})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), req.ID, "admin-1", "")
	require.ErrorIs(t, err, ErrNotesRequired)

	rejected, err := svc.Reject(context.Background(), req.ID, "admin-1", "fee unjustified")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, rejected.Status)

	// A rejected request never changes the active fee.
	fee, err := svc.ActiveFee(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Equal(t, 500, fee)
}

func TestReviewIsOneShot(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	req, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "market rates"})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), req.ID, "admin-1", "")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), req.ID, "admin-2", "changed my mind")
	require.ErrorIs(t, err, ErrRequestReviewed)
}

func TestActiveFeeFallsBackToDefault(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	fee, err := svc.ActiveFee(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Equal(t, 500, fee)
}

func TestActiveFeeTracksLatestApproval(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, &stubFeeSource{fees: map[string]int{"prof-1": 500}})

	first, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 800, Reason: "first"})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), first.ID, "admin-1", "")
	require.NoError(t, err)

	second, err := svc.RequestChange(context.Background(), "prof-1", &ChangeRequest{RequestedFee: 700, Reason: "second"})
	require.NoError(t, err)
	require.Equal(t, 800, second.CurrentFee)
	_, err = svc.Approve(context.Background(), second.ID, "admin-1", "")
	require.NoError(t, err)

	fee, err := svc.ActiveFee(context.Background(), "prof-1")
	require.NoError(t, err)
	require.Equal(t, 700, fee)
}

func TestActiveFeeErrorSurfacesNotFound(t *testing.T) {
	svc := newTestService(newStubRepo(), &stubFeeSource{})

	_, err := svc.ActiveFee(context.Background(), "ghost")
	require.True(t, errors.Is(err, professionals.ErrProfessionalNotFound))
}
