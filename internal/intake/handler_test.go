package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/healthconsult/telehealth-platform/internal/identity"
)

func newIntakeRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/chat/start", h.Start)
	r.Post("/chat/answer", h.Answer)
	r.Get("/chat/sessions/{sessionID}", h.Session)
	return r
}

func asPatient(req *http.Request, patientID string) *http.Request {
	return req.WithContext(identity.WithUserID(req.Context(), patientID))
}

func TestStartEndpoint(t *testing.T) {
	svc, _ := newIntakeFixture()
	router := newIntakeRouter(NewHandler(svc, nil))

	body := `{"professional_id":"prof-1","condition_id":"diabetes"}`
	req := asPatient(httptest.NewRequest(http.MethodPost, "/chat/start", strings.NewReader(body)), "patient-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got StartResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.FirstQuestion == nil || got.FirstQuestion.ID != "q1" {
		t.Fatalf("expected first question q1, got %+v", got.FirstQuestion)
	}
}

func TestStartUnknownProfessional(t *testing.T) {
	svc, _ := newIntakeFixture()
	router := newIntakeRouter(NewHandler(svc, nil))

	body := `{"professional_id":"ghost","condition_id":"diabetes"}`
	req := asPatient(httptest.NewRequest(http.MethodPost, "/chat/start", strings.NewReader(body)), "patient-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnswerEndpointStatusCodes(t *testing.T) {
	svc, _ := newIntakeFixture()
	router := newIntakeRouter(NewHandler(svc, nil))

	startReq := asPatient(httptest.NewRequest(http.MethodPost, "/chat/start",
		strings.NewReader(`{"professional_id":"prof-1","condition_id":"diabetes"}`)), "patient-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, startReq)
	var started StartResult
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	sessionID := started.Session.ID

	answer := func(patientID, questionID, text string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(answerRequest{SessionID: sessionID, QuestionID: questionID, Answer: text})
		req := asPatient(httptest.NewRequest(http.MethodPost, "/chat/answer", strings.NewReader(string(body))), patientID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := answer("patient-2", "q1", "31-50"); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign patient: expected 403, got %d", rec.Code)
	}
	if rec := answer("patient-1", "q2", ">3 months"); rec.Code != http.StatusConflict {
		t.Fatalf("out of order: expected 409, got %d", rec.Code)
	}
	if rec := answer("patient-1", "q1", "nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid option: expected 400, got %d", rec.Code)
	}
	if rec := answer("patient-1", "q1", "31-50"); rec.Code != http.StatusOK {
		t.Fatalf("valid answer: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionEndpointOwnership(t *testing.T) {
	svc, _ := newIntakeFixture()
	router := newIntakeRouter(NewHandler(svc, nil))

	startReq := asPatient(httptest.NewRequest(http.MethodPost, "/chat/start",
		strings.NewReader(`{"professional_id":"prof-1","condition_id":"diabetes"}`)), "patient-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, startReq)
	var started StartResult
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}

	req := asPatient(httptest.NewRequest(http.MethodGet, "/chat/sessions/"+started.Session.ID, nil), "patient-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner read: expected 200, got %d", rec.Code)
	}

	req = asPatient(httptest.NewRequest(http.MethodGet, "/chat/sessions/"+started.Session.ID, nil), "patient-2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign read: expected 403, got %d", rec.Code)
	}
}
