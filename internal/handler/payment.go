package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/daypass/chat-gateway-go/internal/service"
)

const paymentStatusCompleted = "COMPLETED"

// paymentEvent is the payment collaborator's webhook payload. The user id
// travels in the payment note, set when the checkout link was created.
type paymentEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Payment struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Note   string `json:"note"`
			} `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentHandler is the asynchronous grant path: the payment processor posts
// signed events here, and completed payments converge on the same Grant
// contract as the direct success path.
type PaymentHandler struct {
	sessions        *service.SessionService
	sessionDuration time.Duration
}

func NewPaymentHandler(sessions *service.SessionService, sessionDuration time.Duration) *PaymentHandler {
	return &PaymentHandler{
		sessions:        sessions,
		sessionDuration: sessionDuration,
	}
}

func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/webhook", h.Webhook)

	return r
}

// POST /v1/payments/webhook
// Signature verification happens in middleware before this handler runs.
// Events that are not completed payments are acknowledged and ignored so the
// processor does not retry them.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var event paymentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	if event.Type != "payment.updated" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	payment := event.Data.Object.Payment
	if payment.Status != paymentStatusCompleted {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not completed"})
		return
	}

	if payment.Note == "" {
		log.Error().Str("paymentId", payment.ID).Msg("webhook: no user id in payment note")
		writeJSON(w, http.StatusOK, map[string]string{"status": "missing user id"})
		return
	}

	if _, err := h.sessions.Grant(r.Context(), payment.Note, payment.ID, h.sessionDuration); err != nil {
		log.Error().Err(err).Str("paymentId", payment.ID).Msg("webhook: grant failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "session granted"})
}
