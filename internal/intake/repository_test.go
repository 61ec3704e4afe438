package intake

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
)

func TestCreateSessionStoresSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	questions := []catalog.Question{
		{ID: "q1", ConditionID: "diabetes", OrderIndex: 1, Text: "Age?", Options: []string{"18-30"}},
	}
	payload, _ := json.Marshal(questions)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO chat_sessions`).
		WithArgs("sess-1", "patient-1", "prof-1", "diabetes", StatusActive, payload).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepositoryWithDB(mock)
	session := &ChatSession{
		ID:             "sess-1",
		PatientID:      "patient-1",
		ProfessionalID: "prof-1",
		ConditionID:    "diabetes",
		Questions:      questions,
	}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.Status != StatusActive {
		t.Fatalf("expected active status, got %s", session.Status)
	}
}

func TestGetByIDDecodesJSONB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	questions, _ := json.Marshal([]catalog.Question{
		{ID: "q1", Text: "Age?", Options: []string{"18-30", "31-50"}},
		{ID: "q2", Text: "Symptoms?"},
	})
	answers, _ := json.Marshal([]Answer{
		{QuestionID: "q1", Question: "Age?", Answer: "31-50"},
	})

	now := time.Now()
	mock.ExpectQuery(`SELECT id, patient_id, professional_id, condition_id, status,\s+questions, answers, completed_at, created_at, updated_at\s+FROM chat_sessions`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "professional_id", "condition_id", "status",
			"questions", "answers", "completed_at", "created_at", "updated_at",
		}).AddRow("sess-1", "patient-1", "prof-1", "diabetes", StatusActive,
			questions, answers, nil, now, now))

	repo := NewPostgresRepositoryWithDB(mock)
	session, err := repo.GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(session.Questions) != 2 || len(session.Answers) != 1 {
		t.Fatalf("unexpected snapshot: %d questions, %d answers", len(session.Questions), len(session.Answers))
	}
	if next := session.NextQuestion(); next == nil || next.ID != "q2" {
		t.Fatalf("expected next question q2, got %+v", next)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM chat_sessions`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendAnswerOptimisticMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	answer := Answer{QuestionID: "q1", Question: "Age?", Answer: "31-50", AnsweredAt: time.Now().UTC()}
	payload, _ := json.Marshal(answer)

	mock.ExpectExec(`UPDATE chat_sessions`).
		WithArgs("sess-1", payload, false, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.AppendAnswer(context.Background(), "sess-1", answer, 0, false); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder on guarded miss, got %v", err)
	}
}

func TestAppendAnswerCompletes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	answer := Answer{QuestionID: "q2", Question: "Symptoms?", Answer: "fatigue", AnsweredAt: time.Now().UTC()}
	payload, _ := json.Marshal(answer)

	mock.ExpectExec(`UPDATE chat_sessions`).
		WithArgs("sess-1", payload, true, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.AppendAnswer(context.Background(), "sess-1", answer, 1, true); err != nil {
		t.Fatalf("AppendAnswer failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
