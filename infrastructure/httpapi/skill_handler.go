package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/errors"
	"github.com/destinyy00/skillswap/services"
)

type SkillHandler struct {
	log         *slog.Logger
	skills      services.ISkillService
	searchLimit int
}

func NewSkillHandler(log *slog.Logger, skills services.ISkillService, searchLimit int) *SkillHandler {
	return &SkillHandler{log: log, skills: skills, searchLimit: searchLimit}
}

func (h *SkillHandler) List(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skills.ListAll()
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

func (h *SkillHandler) ListOffered(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	skills, err := h.skills.ListOffered(identity.SubjectID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

// Search matches the query against name, category and description. The limit
// is clamped to the configured maximum.
func (h *SkillHandler) Search(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "query parameter q is required"})
		return
	}

	limit := h.searchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed < limit {
			limit = parsed
		}
	}

	skills, err := h.skills.Search(r.Context(), terms, limit)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

type createSkillRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (h *SkillHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respondError(w, h.log, errors.ErrMissingToken)
		return
	}

	var body createSkillRequest
	if !decodeBody(w, r, &body) {
		return
	}

	skill, err := h.skills.Create(identity.SubjectID, services.CreateSkillCommand{
		Name:        body.Name,
		Category:    body.Category,
		Description: body.Description,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, skill)
}
