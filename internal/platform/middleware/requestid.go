package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"contactvault/pkg/requestcontext"
)

// RequestIDHeader carries the correlation ID between services.
const RequestIDHeader = "X-Request-ID"

// RequestID ensures every request carries a correlation ID, generating one
// when the client did not send it, and echoes it back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
