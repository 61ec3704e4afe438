// Package intake runs the scripted pre-consultation questionnaire. Each
// session snapshots its condition's questions at start and collects
// answers strictly in question order.
package intake

import (
	"time"

	"github.com/healthconsult/telehealth-platform/internal/catalog"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Answer is one recorded response, kept in answer order.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// ChatSession is a patient's questionnaire run for one condition with
// one professional. Questions holds the catalog snapshot taken at start;
// later catalog edits never affect a running session.
type ChatSession struct {
	ID             string             `json:"id"`
	PatientID      string             `json:"patient_id"`
	ProfessionalID string             `json:"professional_id"`
	ConditionID    string             `json:"condition_id"`
	Status         string             `json:"status"`
	Questions      []catalog.Question `json:"questions"`
	Answers        []Answer           `json:"answers"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NextQuestion returns the first unanswered question in snapshot order,
// or nil when every question is answered.
func (s *ChatSession) NextQuestion() *catalog.Question {
	if len(s.Answers) >= len(s.Questions) {
		return nil
	}
	return &s.Questions[len(s.Answers)]
}

// Completed reports whether the session has collected every answer.
func (s *ChatSession) Completed() bool {
	return s.Status == StatusCompleted
}
