package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
)

// intakeDB defines the database interface needed by PostgresRepository
type intakeDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores chat sessions. Questions and answers live in
// JSONB columns so the snapshot travels with the row.
type PostgresRepository struct {
	db intakeDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("intake: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db intakeDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new active session with its question snapshot.
func (r *PostgresRepository) Create(ctx context.Context, session *ChatSession) error {
	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return fmt.Errorf("intake: marshal questions: %w", err)
	}

	query := `
		INSERT INTO chat_sessions (id, patient_id, professional_id, condition_id, status, questions, answers)
		VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		session.ID,
		session.PatientID,
		session.ProfessionalID,
		session.ConditionID,
		StatusActive,
		questions,
	).Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
		return fmt.Errorf("intake: insert session: %w", err)
	}
	session.Status = StatusActive
	return nil
}

// GetByID loads a session with its snapshot and answers.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*ChatSession, error) {
	query := `
		SELECT id, patient_id, professional_id, condition_id, status,
			questions, answers, completed_at, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`
	var (
		session       ChatSession
		questionsJSON []byte
		answersJSON   []byte
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.PatientID,
		&session.ProfessionalID,
		&session.ConditionID,
		&session.Status,
		&questionsJSON,
		&answersJSON,
		&session.CompletedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("intake: load session: %w", err)
	}

	if err := json.Unmarshal(questionsJSON, &session.Questions); err != nil {
		return nil, fmt.Errorf("intake: decode question snapshot: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &session.Answers); err != nil {
		return nil, fmt.Errorf("intake: decode answers: %w", err)
	}
	if session.Questions == nil {
		session.Questions = []catalog.Question{}
	}
	if session.Answers == nil {
		session.Answers = []Answer{}
	}
	return &session, nil
}

// AppendAnswer appends one answer to an active session. The update is
// optimistic on the answer count observed by the caller, so two racing
// answers for the same slot cannot both land; the loser sees zero rows
// updated. complete flips the session to completed in the same statement
// when the final answer arrives.
func (r *PostgresRepository) AppendAnswer(ctx context.Context, sessionID string, answer Answer, priorCount int, complete bool) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("intake: marshal answer: %w", err)
	}

	query := `
		UPDATE chat_sessions
		SET answers = answers || $2::jsonb,
			status = CASE WHEN $3 THEN 'completed' ELSE status END,
			completed_at = CASE WHEN $3 THEN now() ELSE completed_at END,
			updated_at = now()
		WHERE id = $1
			AND status = 'active'
			AND jsonb_array_length(answers) = $4
	`
	tag, err := r.db.Exec(ctx, query, sessionID, payload, complete, priorCount)
	if err != nil {
		return fmt.Errorf("intake: append answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the optimistic race, or the session flipped under us.
		return ErrOutOfOrder
	}
	return nil
}
