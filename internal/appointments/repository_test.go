package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func TestCreateInsertsScheduledPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	scheduled := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs("appt-1", "patient-1", "prof-1", "sess-1", scheduled, 700, StatusScheduled, PaymentPending).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepositoryWithDB(mock)
	appt := &Appointment{
		ID:             "appt-1",
		PatientID:      "patient-1",
		ProfessionalID: "prof-1",
		SessionID:      "sess-1",
		ScheduledAt:    scheduled,
		Fee:            700,
	}
	if err := repo.Create(context.Background(), appt); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if appt.Status != StatusScheduled || appt.PaymentStatus != PaymentPending {
		t.Fatalf("unexpected initial state: %s/%s", appt.Status, appt.PaymentStatus)
	}
}

func TestMarkPaidConditionalTransition(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE appointments\s+SET payment_status = 'paid'`).
		WithArgs("appt-1", "https://meet.example.com/tok").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepositoryWithDB(mock)
	transitioned, err := repo.MarkPaid(context.Background(), "appt-1", "https://meet.example.com/tok")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if !transitioned {
		t.Fatal("expected transition")
	}

	// Second attempt finds no pending row.
	mock.ExpectExec(`UPDATE appointments\s+SET payment_status = 'paid'`).
		WithArgs("appt-1", "https://meet.example.com/other").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	transitioned, err = repo.MarkPaid(context.Background(), "appt-1", "https://meet.example.com/other")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if transitioned {
		t.Fatal("expected guarded miss on second payment")
	}
}

func TestCancelExplainsMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	// Unknown appointment.
	mock.ExpectExec(`UPDATE appointments\s+SET status = 'cancelled'`).
		WithArgs("missing", "patient-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status, payment_status FROM appointments WHERE id = \$1 AND patient_id = \$2`).
		WithArgs("missing", "patient-1").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.Cancel(context.Background(), "patient-1", "missing"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}

	// Already cancelled.
	mock.ExpectExec(`UPDATE appointments\s+SET status = 'cancelled'`).
		WithArgs("appt-1", "patient-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status, payment_status FROM appointments WHERE id = \$1 AND patient_id = \$2`).
		WithArgs("appt-1", "patient-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "payment_status"}).AddRow(StatusCancelled, PaymentPending))

	if err := repo.Cancel(context.Background(), "patient-1", "appt-1"); !errors.Is(err, ErrNotScheduled) {
		t.Fatalf("expected ErrNotScheduled, got %v", err)
	}
}

func TestCompleteRequiresPaidRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE appointments\s+SET status = 'completed'`).
		WithArgs("appt-1", "prof-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status, payment_status FROM appointments WHERE id = \$1 AND professional_id = \$2`).
		WithArgs("appt-1", "prof-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "payment_status"}).AddRow(StatusScheduled, PaymentPending))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.Complete(context.Background(), "prof-1", "appt-1"); !errors.Is(err, ErrNotPaid) {
		t.Fatalf("expected ErrNotPaid, got %v", err)
	}
}

func TestSessionForAppointment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	sessionID := "sess-1"
	mock.ExpectQuery(`SELECT session_id FROM appointments`).
		WithArgs("appt-1", "prof-1").
		WillReturnRows(pgxmock.NewRows([]string{"session_id"}).AddRow(&sessionID))

	repo := NewPostgresRepositoryWithDB(mock)
	got, found, err := repo.SessionForAppointment(context.Background(), "prof-1", "appt-1")
	if err != nil {
		t.Fatalf("SessionForAppointment failed: %v", err)
	}
	if !found || got != "sess-1" {
		t.Fatalf("expected sess-1, got %q found=%v", got, found)
	}

	// Appointment booked without a session.
	mock.ExpectQuery(`SELECT session_id FROM appointments`).
		WithArgs("appt-2", "prof-1").
		WillReturnRows(pgxmock.NewRows([]string{"session_id"}).AddRow((*string)(nil)))

	_, found, err = repo.SessionForAppointment(context.Background(), "prof-1", "appt-2")
	if err != nil {
		t.Fatalf("SessionForAppointment failed: %v", err)
	}
	if found {
		t.Fatal("expected not found for nil session id")
	}

	// Foreign appointment id resolves nothing.
	mock.ExpectQuery(`SELECT session_id FROM appointments`).
		WithArgs("appt-1", "prof-2").
		WillReturnError(pgx.ErrNoRows)

	_, found, err = repo.SessionForAppointment(context.Background(), "prof-2", "appt-1")
	if err != nil {
		t.Fatalf("SessionForAppointment failed: %v", err)
	}
	if found {
		t.Fatal("expected not found for foreign professional")
	}
}
