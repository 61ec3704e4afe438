package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// catalogDB defines the database interface needed by PostgresRepository
type catalogDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads the condition/question catalog from the
// relational database. The catalog is seeded by migrations and treated
// as read-only at runtime.
type PostgresRepository struct {
	db catalogDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db catalogDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListConditions returns all active conditions in display order.
func (r *PostgresRepository) ListConditions(ctx context.Context) ([]Condition, error) {
	query := `
		SELECT id, name, description, category, icon, color, common_symptoms, display_order, is_active
		FROM conditions
		WHERE is_active
		ORDER BY display_order
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list conditions: %w", err)
	}
	defer rows.Close()

	var conditions []Condition
	for rows.Next() {
		var c Condition
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Category,
			&c.Icon,
			&c.Color,
			&c.CommonSymptoms,
			&c.DisplayOrder,
			&c.IsActive,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan condition: %w", err)
		}
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate conditions: %w", err)
	}
	return conditions, nil
}

// GetCondition fetches a single condition by id.
func (r *PostgresRepository) GetCondition(ctx context.Context, id string) (*Condition, error) {
	query := `
		SELECT id, name, description, category, icon, color, common_symptoms, display_order, is_active
		FROM conditions
		WHERE id = $1
	`
	var c Condition
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Category,
		&c.Icon,
		&c.Color,
		&c.CommonSymptoms,
		&c.DisplayOrder,
		&c.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConditionNotFound
		}
		return nil, fmt.Errorf("catalog: load condition: %w", err)
	}
	return &c, nil
}

// ListQuestions returns a condition's intake questions in catalog order.
func (r *PostgresRepository) ListQuestions(ctx context.Context, conditionID string) ([]Question, error) {
	query := `
		SELECT id, condition_id, order_index, question_text, options
		FROM chat_questions
		WHERE condition_id = $1
		ORDER BY order_index
	`
	rows, err := r.db.Query(ctx, query, conditionID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.ConditionID, &q.OrderIndex, &q.Text, &q.Options); err != nil {
			return nil, fmt.Errorf("catalog: scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}
