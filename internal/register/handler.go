package register

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kaizlabs/kaizbot/internal/session"
)

// Notifier delivers the one-time completion message back to the user on the
// chat channel. Implemented by dispatch.Engine.
type Notifier interface {
	NotifyRegistrationComplete(ctx context.Context, user session.User) error
}

// Handler serves the out-of-band registration surface: the terms page and
// the completion endpoint keyed by reference code.
type Handler struct {
	sessions  *session.Store
	notifier  Notifier
	termsPath string
	log       *zap.Logger
}

// NewHandler creates the registration handler. termsPath may be empty to use
// the built-in terms text.
func NewHandler(sessions *session.Store, notifier Notifier, termsPath string, log *zap.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		notifier:  notifier,
		termsPath: termsPath,
		log:       log,
	}
}

// RegisterRoutes mounts the registration endpoints on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.handlePage)
	r.Post("/api/register/complete", h.handleComplete)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := renderPage(h.termsPath)
	if err != nil {
		h.log.Error("terms page render failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

type completeRequest struct {
	ReferenceCode string `json:"reference_code"`
}

type completeResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleComplete consumes a pending reference code. The code works exactly
// once; the chat-side terms must already be accepted.
func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, completeResponse{Error: "invalid JSON"})
		return
	}

	code := strings.TrimSpace(req.ReferenceCode)
	if code == "" {
		writeJSON(w, http.StatusBadRequest, completeResponse{Error: "reference code is required"})
		return
	}

	user, err := h.sessions.CompleteOutOfBand(code)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, completeResponse{Error: "unknown or already used reference code"})
		return
	case errors.Is(err, session.ErrNotAccepted):
		writeJSON(w, http.StatusConflict, completeResponse{Error: "please accept the terms in the chat first"})
		return
	case err != nil:
		h.log.Error("registration completion failed", zap.String("code", code), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, completeResponse{Error: "internal error"})
		return
	}

	h.log.Info("registration completed",
		zap.String("user", user.ID),
		zap.String("reference_code", code))

	// The chat notification is best effort; the code is consumed either way.
	if h.notifier != nil {
		if err := h.notifier.NotifyRegistrationComplete(r.Context(), user); err != nil {
			h.log.Warn("completion notification failed",
				zap.String("user", user.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, completeResponse{
		Status:  "completed",
		Message: "Registration completed! Check your chat for a confirmation.",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
