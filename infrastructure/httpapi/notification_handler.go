package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/services"
)

type NotificationHandler struct {
	log           *slog.Logger
	notifications services.INotificationService
}

func NewNotificationHandler(log *slog.Logger, notifications services.INotificationService) *NotificationHandler {
	return &NotificationHandler{log: log, notifications: notifications}
}

type sendNotificationBody struct {
	ToUserID string          `json:"toUserId"`
	Payload  json.RawMessage `json:"payload"`
}

// Send lets an authenticated caller push a generic notification to another
// member without holding a websocket of its own. Fire-and-forget: 202 means
// accepted for relay, not delivered.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFrom(r.Context()); !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	var body sendNotificationBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ToUserID == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "toUserId is required"})
		return
	}

	if err := h.notifications.Notify(r.Context(), body.ToUserID, body.Payload); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
