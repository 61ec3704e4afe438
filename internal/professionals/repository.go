package professionals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `id, user_id, name, email, phone, qualification, years_experience,
		bio, languages, consultation_fee, conditions, profile_image, rating, status,
		created_at, updated_at`

// professionalsDB defines the database interface needed by PostgresRepository
type professionalsDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores professional profiles in the relational database.
type PostgresRepository struct {
	db professionalsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("professionals: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db professionalsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new professional profile in pending status.
// One profile per user: a second application fails with ErrProfileExists.
func (r *PostgresRepository) Create(ctx context.Context, req *ApplicationRequest) (*Professional, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM professionals WHERE user_id = $1)`,
		req.UserID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("professionals: check existing profile: %w", err)
	}
	if exists {
		return nil, ErrProfileExists
	}

	id := uuid.New().String()
	query := `
		INSERT INTO professionals (id, user_id, name, email, phone, qualification,
			years_experience, bio, languages, consultation_fee, conditions,
			profile_image, rating, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.UserID,
		req.Name,
		req.Email,
		req.Phone,
		req.Qualification,
		req.YearsExperience,
		req.Bio,
		req.Languages,
		req.ConsultationFee,
		req.Conditions,
		req.ProfileImage,
		5.0,
		StatusPending,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("professionals: insert failed: %w", err)
	}

	return &Professional{
		ID:              id,
		UserID:          req.UserID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Qualification:   req.Qualification,
		YearsExperience: req.YearsExperience,
		Bio:             req.Bio,
		Languages:       req.Languages,
		ConsultationFee: req.ConsultationFee,
		Conditions:      req.Conditions,
		ProfileImage:    req.ProfileImage,
		Rating:          5.0,
		Status:          StatusPending,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// GetByID fetches a professional regardless of review status.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Professional, error) {
	query := `SELECT ` + selectColumns + ` FROM professionals WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetApproved fetches a professional only when approved.
func (r *PostgresRepository) GetApproved(ctx context.Context, id string) (*Professional, error) {
	query := `SELECT ` + selectColumns + ` FROM professionals WHERE id = $1 AND status = $2`
	return r.scanOne(r.db.QueryRow(ctx, query, id, StatusApproved))
}

// GetByUserID fetches the profile owned by a user account.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Professional, error) {
	query := `SELECT ` + selectColumns + ` FROM professionals WHERE user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

// List returns professionals, optionally filtered by status.
func (r *PostgresRepository) List(ctx context.Context, status string, limit, offset int) ([]*Professional, error) {
	query := `SELECT ` + selectColumns + ` FROM professionals`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("professionals: list failed: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListApprovedByCondition returns approved professionals offering a condition.
func (r *PostgresRepository) ListApprovedByCondition(ctx context.Context, conditionID string) ([]*Professional, error) {
	query := `SELECT ` + selectColumns + `
		FROM professionals
		WHERE status = $1 AND $2 = ANY(conditions)
		ORDER BY rating DESC`
	rows, err := r.db.Query(ctx, query, StatusApproved, conditionID)
	if err != nil {
		return nil, fmt.Errorf("professionals: list by condition: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// UpdateStatus records an admin approval or rejection.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE professionals SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("professionals: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfessionalNotFound
	}
	return nil
}

// DefaultFee returns the professional's initial consultation fee, used
// when no fee change request has ever been approved.
func (r *PostgresRepository) DefaultFee(ctx context.Context, id string) (int, error) {
	var fee int
	if err := r.db.QueryRow(ctx,
		`SELECT consultation_fee FROM professionals WHERE id = $1`,
		id,
	).Scan(&fee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProfessionalNotFound
		}
		return 0, fmt.Errorf("professionals: load default fee: %w", err)
	}
	return fee, nil
}

// OffersCondition reports whether an approved professional offers a condition.
func (r *PostgresRepository) OffersCondition(ctx context.Context, id, conditionID string) (bool, error) {
	var offers bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM professionals
			WHERE id = $1 AND status = $2 AND $3 = ANY(conditions)
		)`,
		id, StatusApproved, conditionID,
	).Scan(&offers); err != nil {
		return false, fmt.Errorf("professionals: check condition: %w", err)
	}
	return offers, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Professional, error) {
	var p Professional
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Qualification,
		&p.YearsExperience,
		&p.Bio,
		&p.Languages,
		&p.ConsultationFee,
		&p.Conditions,
		&p.ProfileImage,
		&p.Rating,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("professionals: scan failed: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) scanMany(rows pgx.Rows) ([]*Professional, error) {
	var out []*Professional
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("professionals: iterate rows: %w", err)
	}
	return out, nil
}
