package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/auth"
	"github.com/dwalters/cardroom/internal/web/middleware"
)

// AuthHandler handles login attempts
type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

// Login handles the login form. Every outcome redirects home without
// detail: the domain is trusted and the landing page reflects the result.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	if err := r.ParseForm(); err != nil {
		return
	}

	sess := middleware.GetSession(r.Context())
	username := strings.TrimSpace(r.FormValue("auth"))

	_, err := h.auth.Login(r.Context(), sess, username)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUsernameRequired):
	case errors.Is(err, model.ErrUserNotFound):
		h.logger.Info("login attempt for unknown user", slog.String("username", username))
	default:
		h.logger.Error("login failed", slog.String("error", err.Error()))
	}
}
