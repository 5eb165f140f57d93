package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/infrastructure/storage"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	log   *slog.Logger
	users storage.IUserRepository
}

func NewUserHandler(log *slog.Logger, users storage.IUserRepository) *UserHandler {
	return &UserHandler{log: log, users: users}
}

// Me returns the caller's own record, password hash excluded by the domain
// type itself.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	user, err := h.users.GetUserByID(identity.SubjectID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	TimeZone  string `json:"timeZone"`
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	var body updateProfileRequest
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := h.users.GetUserByID(identity.SubjectID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	user.Name = body.Name
	user.AvatarURL = body.AvatarURL
	user.Bio = body.Bio
	user.Location = body.Location
	user.TimeZone = body.TimeZone

	if err := h.users.UpdateProfile(user); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Get serves another member's public profile.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user.PublicProfile())
}
