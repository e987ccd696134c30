package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/r4nb1r/ProfilePulse/internal/service"
	"github.com/r4nb1r/ProfilePulse/pkg/httputil"
)

// ProfileHandler handles business profile endpoints. Every route sits
// behind RequireAuth, so a session is always present.
type ProfileHandler struct {
	service *service.ProfileService
	logger  *slog.Logger
}

// NewProfileHandler creates a new profile HTTP handler.
func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, logger: logger}
}

type testClaimResponse struct {
	Success    bool   `json:"success"`
	LocationID string `json:"locationId"`
	Fallback   bool   `json:"fallback"`
}

// Create handles POST /api/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input service.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	sess := SessionFromContext(r.Context())
	profile, err := h.service.Submit(r.Context(), sess.UserID, sess.Credential, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// List handles GET /api/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	profiles, err := h.service.List(r.Context(), sess.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profiles)
}

// Get handles GET /api/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sess := SessionFromContext(r.Context())
	profile, err := h.service.Get(r.Context(), sess.UserID, id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Stats handles GET /api/stats
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), sess.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// Test handles GET /api/test
func (h *ProfileHandler) Test(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	res, err := h.service.TestClaim(r.Context(), sess.Credential)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, testClaimResponse{
		Success:    true,
		LocationID: res.LocationID,
		Fallback:   res.Fallback,
	})
}
