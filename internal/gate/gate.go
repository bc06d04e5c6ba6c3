package gate

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daypass/chat-gateway-go/internal/audit"
	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/httputil"
	"github.com/daypass/chat-gateway-go/internal/middleware"
	"github.com/daypass/chat-gateway-go/internal/ratelimit"
	"github.com/daypass/chat-gateway-go/internal/sanitize"
	"github.com/daypass/chat-gateway-go/internal/util"
)

const redactedSnippetLen = 64

// Handler is a business handler invoked with the validated, sanitized payload.
// A returned AppError is written to the caller as-is; any other error is
// downgraded to a generic internal error with full detail kept server-side.
type Handler func(w http.ResponseWriter, r *http.Request, payload any) error

// Gate is the single entry point every protected endpoint goes through:
// rate limiting, shape validation, injection screening, sanitization, then the
// wrapped handler, with hardening and rate-limit headers on the way out.
type Gate struct {
	limiter            *ratelimit.Limiter
	detector           *sanitize.Detector
	sanitizer          *sanitize.Sanitizer
	preferUserIdentity bool
}

func New(limiter *ratelimit.Limiter, detector *sanitize.Detector, sanitizer *sanitize.Sanitizer, preferUserIdentity bool) *Gate {
	return &Gate{
		limiter:            limiter,
		detector:           detector,
		sanitizer:          sanitizer,
		preferUserIdentity: preferUserIdentity,
	}
}

// Wrap builds the protected handler for one endpoint. Steps run in order and
// short-circuit on the first failure; the wrapped handler is never invoked on
// a rejected request.
func (g *Gate) Wrap(schema Schema, handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := g.checkRateLimit(w, r)
		if !ok {
			return
		}

		payload, appErr := decodeAndValidate(r, schema)
		if appErr != nil {
			httputil.WriteError(w, appErr)
			return
		}

		if schema.Text != nil {
			fields := schema.Text(payload)

			// Detection sees the raw text; sanitization must not mask intent.
			for _, field := range fields {
				if field.Value == nil {
					continue
				}
				if g.detector.LooksLikeInjection(*field.Value) {
					audit.LogFromRequest(r, audit.Event{
						Type:   audit.EventInjectionDetected,
						UserID: middleware.GetUserID(r.Context()),
						Details: map[string]interface{}{
							"field":   field.Name,
							"snippet": util.Redact(*field.Value, redactedSnippetLen),
						},
					})
					httputil.WriteError(w, apperrors.SecurityThreat(field.Name))
					return
				}
			}

			for _, field := range fields {
				if field.Value == nil {
					continue
				}
				*field.Value = g.sanitizer.Clean(*field.Value)
			}
		}

		g.invoke(w, r, handler, payload, res)
	}
}

// Limit applies only the rate-limit and header steps, for protected endpoints
// without a request body.
func (g *Gate) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := g.checkRateLimit(w, r)
		if !ok {
			return
		}
		middleware.Harden(w.Header())
		setRateLimitHeaders(w, res)
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) checkRateLimit(w http.ResponseWriter, r *http.Request) (ratelimit.Result, bool) {
	clientID := g.clientIdentity(r)
	res := g.limiter.Check(r.Context(), clientID, r.URL.Path)

	if !res.Allowed {
		setRateLimitHeaders(w, res)
		w.Header().Set("Retry-After", strconv.Itoa(secondsUntil(res.ResetAt)))
		audit.LogFromRequest(r, audit.Event{
			Type:   audit.EventRateLimitExceed,
			UserID: middleware.GetUserID(r.Context()),
			Details: map[string]interface{}{
				"endpoint": r.URL.Path,
			},
		})
		httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
			Error:     "Rate limit exceeded",
			Code:      apperrors.ErrCodeRateLimitExceeded,
			ResetTime: res.ResetAt.Unix(),
		})
		return res, false
	}

	return res, true
}

func (g *Gate) invoke(w http.ResponseWriter, r *http.Request, handler Handler, payload any, res ratelimit.Result) {
	// Headers must be in place before the handler writes the response.
	middleware.Harden(w.Header())
	setRateLimitHeaders(w, res)

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("path", r.URL.Path).Msg("handler panicked")
			httputil.WriteError(w, apperrors.Internal("An unexpected error occurred"))
		}
	}()

	if err := handler(w, r, payload); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("handler rejected request")
			httputil.WriteError(w, appErr)
			return
		}
		log.Error().Err(err).Str("path", r.URL.Path).Msg("handler failed")
		httputil.WriteError(w, apperrors.Internal("An unexpected error occurred"))
	}
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Seconds()) + 1
	if s < 1 {
		s = 1
	}
	return s
}
