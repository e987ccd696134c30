package http

import (
	"log/slog"
	"net/http"

	"github.com/r4nb1r/ProfilePulse/internal/service"
	"github.com/r4nb1r/ProfilePulse/pkg/httputil"
)

// AuthHandler handles the OAuth consent flow and session status.
type AuthHandler struct {
	service         *service.AuthService
	codec           SessionCodec
	cookie          CookieConfig
	successRedirect string
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, codec SessionCodec, cookie CookieConfig, successRedirect string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:         svc,
		codec:           codec,
		cookie:          cookie,
		successRedirect: successRedirect,
		logger:          logger,
	}
}

type authURLResponse struct {
	URL string `json:"url"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// URL handles GET /api/auth/url
func (h *AuthHandler) URL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.BeginAuth(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authURLResponse{URL: url})
}

// Callback handles GET /api/auth/callback?code=...&state=...
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess := SessionFromContext(r.Context())

	rotated, err := h.service.CompleteAuth(r.Context(), sess, q.Get("code"), q.Get("state"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := setSessionCookie(w, h.codec, h.cookie, rotated); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, h.successRedirect, http.StatusFound)
}

// Status handles GET /api/auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Status(SessionFromContext(r.Context())))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), SessionFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	clearSessionCookie(w, h.cookie)
	httputil.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
