package middleware

import (
	"net/http"

	"github.com/fixora/archive/infrastructure/service/logger"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware ensures every request carries a correlation ID in its
// context and every response echoes it
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithCorrelationID(r.Context(), r.Header.Get(CorrelationIDHeader))
		w.Header().Set(CorrelationIDHeader, logger.CorrelationID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
