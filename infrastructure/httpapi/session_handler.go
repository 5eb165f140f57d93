package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SessionHandler struct {
	log      *slog.Logger
	sessions services.ISessionService
}

func NewSessionHandler(log *slog.Logger, sessions services.ISessionService) *SessionHandler {
	return &SessionHandler{log: log, sessions: sessions}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	sessions, err := h.sessions.ListFor(identity.SubjectID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

type requestSessionBody struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HostID      string    `json:"hostId"`
	DateTime    time.Time `json:"dateTime"`
	Message     string    `json:"message"`
}

// Request creates a PENDING session; the host is notified through the relay
// as a side effect.
func (h *SessionHandler) Request(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	var body requestSessionBody
	if !decodeBody(w, r, &body) {
		return
	}

	session, err := h.sessions.Request(r.Context(), identity.SubjectID, services.RequestSessionCommand{
		Title:       body.Title,
		Description: body.Description,
		HostID:      body.HostID,
		DateTime:    body.DateTime,
		Message:     body.Message,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

type updateStatusBody struct {
	Status domain.SessionStatus `json:"status"`
}

func (h *SessionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "sessionID must be a uuid"})
		return
	}

	var body updateStatusBody
	if !decodeBody(w, r, &body) {
		return
	}

	session, err := h.sessions.UpdateStatus(r.Context(), identity.SubjectID, services.UpdateStatusCommand{
		SessionID: sessionID,
		Status:    body.Status,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}
