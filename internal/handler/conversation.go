package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/gate"
	"github.com/daypass/chat-gateway-go/internal/httputil"
	"github.com/daypass/chat-gateway-go/internal/middleware"
	"github.com/daypass/chat-gateway-go/internal/service"
)

type ConversationHandler struct {
	gate          *gate.Gate
	conversations *service.ConversationService
}

func NewConversationHandler(g *gate.Gate, conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		gate:          g,
		conversations: conversations,
	}
}

func (h *ConversationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.gate.Limit).Get("/", h.List)
	r.Post("/", h.gate.Wrap(ConversationSchema, h.Create))
	r.With(h.gate.Limit).Get("/{conversationID}", h.Get)
	r.With(h.gate.Limit).Delete("/{conversationID}", h.Delete)
	r.Post("/{conversationID}/messages", h.gate.Wrap(AppendMessagesSchema, h.AppendMessages))

	return r
}

// GET /v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
		return
	}

	convs, err := h.conversations.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
}

// GET /v1/conversations/{conversationID}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
		return
	}

	conv, err := h.conversations.Get(r.Context(), userID, chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// DELETE /v1/conversations/{conversationID}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
		return
	}

	if err := h.conversations.Delete(r.Context(), userID, chi.URLParam(r, "conversationID")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// POST /v1/conversations/{conversationID}/messages
func (h *ConversationHandler) AppendMessages(w http.ResponseWriter, r *http.Request, payload any) error {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return apperrors.Unauthorized("Missing authentication token")
	}

	req := payload.(*AppendMessagesRequest)

	conv, err := h.conversations.AppendMessages(r.Context(), userID, chi.URLParam(r, "conversationID"), req.Messages)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, conv)
	return nil
}

// POST /v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request, payload any) error {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return apperrors.Unauthorized("Missing authentication token")
	}

	req := payload.(*ConversationRequest)

	conv, err := h.conversations.Create(r.Context(), userID, req.Title, req.Messages)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, conv)
	return nil
}
