package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `id, professional_id, current_fee, requested_fee, reason,
		status, review_notes, reviewed_by, reviewed_at, created_at, updated_at`

// feesDB defines the database interface needed by PostgresRepository
type feesDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores fee change requests in the relational database.
type PostgresRepository struct {
	db feesDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("fees: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db feesDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePending inserts a new pending request. The insert is guarded so a
// professional can hold at most one pending request at a time; a guarded
// miss surfaces as ErrPendingRequestExists.
func (r *PostgresRepository) CreatePending(ctx context.Context, req *FeeChangeRequest) error {
	query := `
		INSERT INTO fee_change_requests (id, professional_id, current_fee, requested_fee, reason, status)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM fee_change_requests
			WHERE professional_id = $2 AND status = $6
		)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		req.ID, req.ProfessionalID, req.CurrentFee, req.RequestedFee, req.Reason, StatusPending,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPendingRequestExists
		}
		return fmt.Errorf("fees: insert request: %w", err)
	}
	req.Status = StatusPending
	return nil
}

// GetByID fetches a single fee change request.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*FeeChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fee_change_requests WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// ListByProfessional returns a professional's requests, newest first.
func (r *PostgresRepository) ListByProfessional(ctx context.Context, professionalID string) ([]*FeeChangeRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM fee_change_requests
		WHERE professional_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, professionalID)
	if err != nil {
		return nil, fmt.Errorf("fees: list by professional: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListByStatus returns requests in a given review status, oldest first so
// admins work through the queue in arrival order.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status string) ([]*FeeChangeRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM fee_change_requests
		WHERE status = $1
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("fees: list by status: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Review transitions a pending request to approved or rejected. The update
// is conditional on pending status so a request can only be reviewed once.
func (r *PostgresRepository) Review(ctx context.Context, id, status, notes, reviewedBy string) (*FeeChangeRequest, error) {
	query := `
		UPDATE fee_change_requests
		SET status = $2, review_notes = $3, reviewed_by = $4, reviewed_at = now(), updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING ` + requestColumns
	req, err := r.scanOne(r.db.QueryRow(ctx, query, id, status, notes, reviewedBy, StatusPending))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, ErrRequestNotFound) {
		return nil, err
	}

	// The guarded update missed: distinguish unknown from already reviewed.
	var exists bool
	if scanErr := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fee_change_requests WHERE id = $1)`, id,
	).Scan(&exists); scanErr != nil {
		return nil, fmt.Errorf("fees: check request: %w", scanErr)
	}
	if exists {
		return nil, ErrRequestReviewed
	}
	return nil, ErrRequestNotFound
}

// LatestApprovedFee returns the most recently approved requested fee for a
// professional. found is false when no request was ever approved.
func (r *PostgresRepository) LatestApprovedFee(ctx context.Context, professionalID string) (fee int, found bool, err error) {
	query := `
		SELECT requested_fee
		FROM fee_change_requests
		WHERE professional_id = $1 AND status = $2
		ORDER BY reviewed_at DESC
		LIMIT 1
	`
	if err := r.db.QueryRow(ctx, query, professionalID, StatusApproved).Scan(&fee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("fees: load approved fee: %w", err)
	}
	return fee, true, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*FeeChangeRequest, error) {
	var (
		req        FeeChangeRequest
		notes      *string
		reviewedBy *string
		reviewedAt *time.Time
	)
	if err := row.Scan(
		&req.ID,
		&req.ProfessionalID,
		&req.CurrentFee,
		&req.RequestedFee,
		&req.Reason,
		&req.Status,
		&notes,
		&reviewedBy,
		&reviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("fees: scan request: %w", err)
	}
	if notes != nil {
		req.ReviewNotes = *notes
	}
	if reviewedBy != nil {
		req.ReviewedBy = *reviewedBy
	}
	req.ReviewedAt = reviewedAt
	return &req, nil
}

func (r *PostgresRepository) scanMany(rows pgx.Rows) ([]*FeeChangeRequest, error) {
	var out []*FeeChangeRequest
	for rows.Next() {
		req, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fees: iterate rows: %w", err)
	}
	return out, nil
}
