package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/gate"
	"github.com/daypass/chat-gateway-go/internal/httputil"
	"github.com/daypass/chat-gateway-go/internal/middleware"
	"github.com/daypass/chat-gateway-go/internal/service"
)

type SessionHandler struct {
	gate            *gate.Gate
	sessions        *service.SessionService
	sessionDuration time.Duration
}

func NewSessionHandler(g *gate.Gate, sessions *service.SessionService, sessionDuration time.Duration) *SessionHandler {
	return &SessionHandler{
		gate:            g,
		sessions:        sessions,
		sessionDuration: sessionDuration,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.gate.Limit).Get("/", h.ListSessions)
	r.With(h.gate.Limit).Get("/validate", h.ValidateSession)
	r.Post("/", h.gate.Wrap(CreateSessionSchema, h.CreateSession))

	return r
}

// GET /v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
		return
	}

	sessions, err := h.sessions.ListSessions(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GET /v1/sessions/validate
func (h *SessionHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"active":    false,
			"expiresIn": 0,
		})
		return
	}

	status, err := h.sessions.QueryStatus(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"active":    false,
			"expiresIn": 0,
			"error":     "Failed to validate session",
		})
		return
	}

	if !status.Active {
		writeJSON(w, http.StatusOK, map[string]any{
			"active":    false,
			"expiresIn": 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active":    true,
		"expiresIn": status.Remaining.Milliseconds(),
		"sessionId": status.SessionID,
	})
}

// POST /v1/sessions
// Direct success path: the client completed checkout and reports the payment
// reference; the asynchronous webhook converges on the same grant contract.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request, payload any) error {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return apperrors.Unauthorized("Missing authentication token")
	}

	req := payload.(*CreateSessionRequest)

	session, err := h.sessions.Grant(r.Context(), userID, req.PaymentID, h.sessionDuration)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": session,
	})
	return nil
}
