package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/basetutor/internal/models"
)

// TutoringService defines the tutoring workflow operations required by the
// HTTP handlers.
type TutoringService interface {
	RequestTutor(ctx context.Context, student, tutor string) (models.TutorRequest, error)
	AvailableTutors(ctx context.Context) ([]string, error)
	RequestsForStudent(ctx context.Context, student string) ([]models.TutorRequest, error)
	RequestsForTutor(ctx context.Context, tutor string) ([]models.TutorRequest, error)
	AcceptRequest(ctx context.Context, requestID int64, topic string) (models.Session, error)
	DeclineRequest(ctx context.Context, requestID int64) (models.TutorRequest, error)
	SessionsForUser(ctx context.Context, username string, isTutor bool) ([]models.Session, error)
	CompleteSession(ctx context.Context, sessionID int64) (models.Session, error)
	CancelSession(ctx context.Context, sessionID int64) (models.Session, error)
}

// TutoringHandler serves tutor requests and sessions.
type TutoringHandler struct {
	TutoringService TutoringService
}

// TutorRequestPayload is the body of POST /api/requests.
type TutorRequestPayload struct {
	Student string `json:"student"`
	Tutor   string `json:"tutor"`
}

// AcceptPayload is the optional body of POST /api/requests/{id}/accept.
type AcceptPayload struct {
	Topic string `json:"topic"`
}

// Tutors lists every registered tutor.
func (h *TutoringHandler) Tutors(w http.ResponseWriter, r *http.Request) {
	tutors, err := h.TutoringService.AvailableTutors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tutors": tutors})
}

// CreateRequest opens a pending request from a student to a tutor.
func (h *TutoringHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req TutorRequestPayload
	if !decodeBody(r, &req, false) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tr, err := h.TutoringService.RequestTutor(r.Context(), req.Student, req.Tutor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

// StudentRequests lists requests made by {username}.
func (h *TutoringHandler) StudentRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.TutoringService.RequestsForStudent(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// TutorRequests lists requests addressed to {username}.
func (h *TutoringHandler) TutorRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.TutoringService.RequestsForTutor(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// Accept accepts request {id} and responds 201 with the new session.
func (h *TutoringHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var body AcceptPayload
	if !decodeBody(r, &body, true) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s, err := h.TutoringService.AcceptRequest(r.Context(), id, body.Topic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// Decline declines request {id}.
func (h *TutoringHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tr, err := h.TutoringService.DeclineRequest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// Sessions lists sessions of {username}; ?as=tutor selects the tutor side.
func (h *TutoringHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	isTutor := r.URL.Query().Get("as") == string(models.RoleTutor)
	sessions, err := h.TutoringService.SessionsForUser(r.Context(), chi.URLParam(r, "username"), isTutor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Complete marks session {id} completed.
func (h *TutoringHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.TutoringService.CompleteSession)
}

// Cancel marks session {id} cancelled.
func (h *TutoringHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.TutoringService.CancelSession)
}

func (h *TutoringHandler) finish(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, int64) (models.Session, error),
) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := op(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
