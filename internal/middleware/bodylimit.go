package middleware

import (
	"net/http"

	"github.com/daypass/chat-gateway-go/internal/config"
	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
	"github.com/daypass/chat-gateway-go/internal/httputil"
)

// BodyLimitMiddleware caps request body size ahead of JSON decoding, so an
// oversized payload is refused before schema validation ever sees it.
type BodyLimitMiddleware struct {
	maxBytes int64
}

func NewBodyLimitMiddleware(maxBytes int64) *BodyLimitMiddleware {
	if maxBytes <= 0 {
		maxBytes = config.MaxRequestBodyBytes
	}
	return &BodyLimitMiddleware{maxBytes: maxBytes}
}

func (m *BodyLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > m.maxBytes {
			httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
				Error: "Request body too large",
				Code:  apperrors.ErrCodeValidation,
			})
			return
		}

		// Guards against bodies sent without a Content-Length as well.
		r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes)
		next.ServeHTTP(w, r)
	})
}
