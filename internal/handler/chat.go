package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/gate"
	"github.com/daypass/chat-gateway-go/internal/middleware"
	"github.com/daypass/chat-gateway-go/internal/service"
)

// ChatHandler owns the model-facing endpoints. Every route goes through the
// security gate and every call spends paid model budget, so the handler checks
// entitlement before forwarding.
type ChatHandler struct {
	gate     *gate.Gate
	sessions *service.SessionService
	chat     *service.ChatService
}

func NewChatHandler(g *gate.Gate, sessions *service.SessionService, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		gate:     g,
		sessions: sessions,
		chat:     chat,
	}
}

// Register attaches the model-facing routes to the given router.
func (h *ChatHandler) Register(r chi.Router) {
	r.Post("/chat/completions", h.gate.Wrap(ChatSchema, h.Complete))
	r.Post("/embeddings", h.gate.Wrap(EmbeddingsSchema, h.Embed))
	r.Post("/images/generations", h.gate.Wrap(ImageSchema, h.GenerateImage))
}

// POST /v1/chat/completions
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request, payload any) error {
	if _, err := h.requireEntitled(r); err != nil {
		return err
	}

	resp, err := h.chat.Complete(r.Context(), payload.(*ChatRequest))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, json.RawMessage(resp))
	return nil
}

// POST /v1/embeddings
func (h *ChatHandler) Embed(w http.ResponseWriter, r *http.Request, payload any) error {
	if _, err := h.requireEntitled(r); err != nil {
		return err
	}

	resp, err := h.chat.Embed(r.Context(), payload.(*EmbeddingsRequest))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, json.RawMessage(resp))
	return nil
}

// POST /v1/images/generations
func (h *ChatHandler) GenerateImage(w http.ResponseWriter, r *http.Request, payload any) error {
	if _, err := h.requireEntitled(r); err != nil {
		return err
	}

	resp, err := h.chat.GenerateImage(r.Context(), payload.(*ImageRequest))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, json.RawMessage(resp))
	return nil
}

func (h *ChatHandler) requireEntitled(r *http.Request) (string, error) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		return "", apperrors.Unauthorized("Missing authentication token")
	}
	if err := h.sessions.RequireActive(r.Context(), userID); err != nil {
		return "", err
	}
	return userID, nil
}
