package encounter

import (
	"context"
	"errors"
	"io"
	"net/http"

	"dengue-triage/internal/platform/response"
	"dengue-triage/internal/triage"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type Handler struct {
	svc      Service
	rw       *response.Writer
	validate *validator.Validate
}

func NewHandler(svc Service, rw *response.Writer) *Handler {
	return &Handler{svc: svc, rw: rw, validate: validator.New()}
}

type StartSessionRequest struct {
	PatientRef string `json:"patient_ref" validate:"max=128"`
}

type SubmitAnswerRequest struct {
	QuestionID string       `json:"question_id" validate:"required,max=64"`
	Value      triage.Value `json:"value"`
}

type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Question  *QuestionView   `json:"question"`
	Snapshot  triage.Snapshot `json:"snapshot"`
}

type AnswerResponse struct {
	Snapshot triage.Snapshot `json:"snapshot"`
	Question *QuestionView   `json:"question"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.rw.Error(w, response.WrapWithError(err, http.StatusBadRequest, "invalid request body", "decode start session request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.rw.Error(w, response.WrapWithError(err, http.StatusBadRequest, response.FirstValidationError(err), "validate start session request"))
		return
	}

	sess, q, err := h.svc.StartSession(r.Context(), req.PatientRef)
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	h.rw.Success(w, http.StatusCreated, "session started", SessionResponse{
		SessionID: sess.ID(),
		Question:  NewQuestionView(q),
		Snapshot:  sess.Snapshot(),
	})
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.NextQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	h.rw.Success(w, http.StatusOK, "", map[string]*QuestionView{"question": NewQuestionView(q)})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rw.Error(w, response.WrapWithError(err, http.StatusBadRequest, "invalid request body", "decode answer request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.rw.Error(w, response.WrapWithError(err, http.StatusBadRequest, response.FirstValidationError(err), "validate answer request"))
		return
	}

	snap, next, err := h.svc.SubmitAnswer(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.Value)
	if err != nil {
		h.fail(w, err, &AnswerResponse{Snapshot: snap, Question: NewQuestionView(next)})
		return
	}
	h.rw.Success(w, http.StatusOK, "answer recorded", AnswerResponse{Snapshot: snap, Question: NewQuestionView(next)})
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	h.rw.Success(w, http.StatusOK, "", rec)
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	h.rw.Success(w, http.StatusOK, "", h.svc.Questions())
}

// fail maps service errors to HTTP errors. data rides along on 4xx answers.
func (h *Handler) fail(w http.ResponseWriter, err error, data interface{}) {
	var (
		invalid *triage.InvalidAnswerError
		closed  *triage.SessionClosedError
	)
	switch {
	case errors.As(err, &invalid):
		h.rw.Error(w, response.WrapWithError(err, http.StatusUnprocessableEntity, invalid.Error(), "answer rejected").WithData(data))
	case errors.As(err, &closed):
		h.rw.Error(w, response.WrapWithError(err, http.StatusConflict, "triage session already finished", "answer after termination").WithData(data))
	case errors.Is(err, ErrSessionNotFound):
		h.rw.Error(w, response.WrapWithError(err, http.StatusNotFound, "triage session not found", "session lookup"))
	case errors.Is(err, triage.ErrSessionOpen):
		h.rw.Error(w, response.WrapWithError(err, http.StatusConflict, "triage session still in progress", "result requested early"))
	case errors.Is(err, context.DeadlineExceeded):
		h.rw.Error(w, response.WrapWithError(err, http.StatusGatewayTimeout, "request timed out", "service deadline exceeded"))
	default:
		h.rw.Error(w, response.WrapWithError(err, http.StatusInternalServerError, "failed to process triage", "encounter service"))
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/triage", func(r chi.Router) {
		r.Get("/questions", h.Questions)
		r.Post("/sessions", h.StartSession)
		r.Get("/sessions/{id}/question", h.NextQuestion)
		r.Post("/sessions/{id}/answers", h.SubmitAnswer)
		r.Get("/sessions/{id}/result", h.Result)
	})
}
