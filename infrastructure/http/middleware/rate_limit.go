package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/fixora/archive/infrastructure/http/response"
	"github.com/fixora/archive/infrastructure/service/logger"
	"github.com/fixora/archive/infrastructure/service/ratelimit"
)

type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	logger  logger.Logger
}

func NewRateLimitMiddleware(limiter ratelimit.Limiter, logger logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// RateLimit rejects clients that spent their request budget with 429.
// Limiter failures let the request through.
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := getClientIP(r)

		allowed, retryAfter, err := m.limiter.Allow(ctx, "ip:"+clientIP)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip": clientIP,
			})
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			m.logger.Warn(ctx, "Rate limit exceeded", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"userAgent": r.UserAgent(),
			})

			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP prefers proxy headers over the connection address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
