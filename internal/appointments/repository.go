package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apptColumns = `id, patient_id, professional_id, session_id, scheduled_at, fee,
		status, payment_status, meeting_link, created_at, updated_at`

// appointmentsDB defines the database interface needed by PostgresRepository
type appointmentsDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db appointmentsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db appointmentsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a scheduled, unpaid appointment.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, professional_id, session_id, scheduled_at, fee, status, payment_status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.ProfessionalID,
		appt.SessionID,
		appt.ScheduledAt,
		appt.Fee,
		StatusScheduled,
		PaymentPending,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	appt.Status = StatusScheduled
	appt.PaymentStatus = PaymentPending
	return nil
}

// GetByID fetches an appointment by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetForPatient fetches an appointment scoped to its patient.
func (r *PostgresRepository) GetForPatient(ctx context.Context, patientID, id string) (*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1 AND patient_id = $2`
	return r.scanOne(r.db.QueryRow(ctx, query, id, patientID))
}

// ListByPatient returns a patient's appointments, soonest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at ASC`
	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListByProfessional returns a professional's appointments, soonest
// first. With upcomingOnly only scheduled future slots come back.
func (r *PostgresRepository) ListByProfessional(ctx context.Context, professionalID string, upcomingOnly bool) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + `
		FROM appointments
		WHERE professional_id = $1`
	if upcomingOnly {
		query += ` AND status = 'scheduled' AND scheduled_at > now()`
	}
	query += ` ORDER BY scheduled_at ASC`

	rows, err := r.db.Query(ctx, query, professionalID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by professional: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// MarkPaid flips payment from pending to paid and stores the meeting
// link in the same conditional statement, so the transition happens at
// most once. transitioned is false when another payment already won.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id, meetingLink string) (transitioned bool, err error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET payment_status = 'paid', meeting_link = $2, updated_at = now()
		WHERE id = $1 AND payment_status = 'pending'
	`, id, meetingLink)
	if err != nil {
		return false, fmt.Errorf("appointments: mark paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel moves a patient's scheduled appointment to cancelled.
func (r *PostgresRepository) Cancel(ctx context.Context, patientID, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND patient_id = $2 AND status = 'scheduled'
	`, id, patientID)
	if err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.explainTransitionMiss(ctx, id, patientKind, patientID, false)
	}
	return nil
}

// Complete moves a professional's paid, scheduled appointment to
// completed after the consultation happened.
func (r *PostgresRepository) Complete(ctx context.Context, professionalID, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET status = 'completed', updated_at = now()
		WHERE id = $1 AND professional_id = $2 AND status = 'scheduled' AND payment_status = 'paid'
	`, id, professionalID)
	if err != nil {
		return fmt.Errorf("appointments: complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.explainTransitionMiss(ctx, id, professionalKind, professionalID, true)
	}
	return nil
}

// SessionForAppointment resolves the chat session behind one of the
// professional's appointments. Satisfies the intake resolver.
func (r *PostgresRepository) SessionForAppointment(ctx context.Context, professionalID, appointmentID string) (string, bool, error) {
	var sessionID *string
	err := r.db.QueryRow(ctx, `
		SELECT session_id FROM appointments
		WHERE id = $1 AND professional_id = $2
	`, appointmentID, professionalID).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("appointments: resolve session: %w", err)
	}
	if sessionID == nil || *sessionID == "" {
		return "", false, nil
	}
	return *sessionID, true, nil
}

type ownerKind string

const (
	patientKind      ownerKind = "patient_id"
	professionalKind ownerKind = "professional_id"
)

// explainTransitionMiss turns a zero-row conditional update into the
// precise sentinel: unknown appointment, wrong state, or unpaid.
func (r *PostgresRepository) explainTransitionMiss(ctx context.Context, id string, kind ownerKind, ownerID string, needsPayment bool) error {
	var status, paymentStatus string
	query := fmt.Sprintf(`SELECT status, payment_status FROM appointments WHERE id = $1 AND %s = $2`, kind)
	if err := r.db.QueryRow(ctx, query, id, ownerID).Scan(&status, &paymentStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("appointments: check state: %w", err)
	}
	if status != StatusScheduled {
		return ErrNotScheduled
	}
	if needsPayment && paymentStatus != PaymentPaid {
		return ErrNotPaid
	}
	return ErrNotScheduled
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Appointment, error) {
	var (
		appt        Appointment
		sessionID   *string
		meetingLink *string
	)
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.ProfessionalID,
		&sessionID,
		&appt.ScheduledAt,
		&appt.Fee,
		&appt.Status,
		&appt.PaymentStatus,
		&meetingLink,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	if sessionID != nil {
		appt.SessionID = *sessionID
	}
	if meetingLink != nil {
		appt.MeetingLink = *meetingLink
	}
	return &appt, nil
}

func (r *PostgresRepository) scanMany(rows pgx.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		appt, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate rows: %w", err)
	}
	return out, nil
}
