/**
 * @description
 * This file contains custom middleware for the HTTP router. Every route under
 * /api sits behind service-token authentication (HS256 JWTs minted by trusted
 * callers such as the conversation orchestrator) and a Redis-backed rate
 * limiter shared across instances.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: JWT parsing and validation.
 */

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tizlion/transfer-service/internal/app"
)

// CallerContextKey is a custom type for the context key to avoid collisions.
type CallerContextKey string

const callerKey CallerContextKey = "serviceCaller"

// ServiceAuthMiddleware validates the bearer token on incoming requests. The
// token is an HS256 JWT signed with the shared service secret; its subject
// names the calling service and is carried in the request context for logging
// and rate limiting.
func ServiceAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Printf("level=warn component=api msg=\"rejected service token\" err=%v", err)
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}
			caller, ok := claims["sub"].(string)
			if !ok || strings.TrimSpace(caller) == "" {
				writeError(w, http.StatusUnauthorized, "Caller identity not found in token")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext retrieves the authenticated caller's identity from the
// request context.
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(callerKey).(string)
	return caller, ok
}

// RateLimitMiddleware caps requests per caller per minute. A Redis outage
// fails open: limiting protects the gateway, it must never take the service
// down with it.
func RateLimitMiddleware(limiter *app.RedisRateLimiter, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			caller, ok := CallerFromContext(r.Context())
			if !ok {
				caller = "anonymous"
			}

			count, retryAfter, err := limiter.ConsumeRateLimit(r.Context(), "api", caller, perMinute, time.Minute)
			if err != nil {
				log.Printf("level=warn component=api msg=\"rate limiter unavailable; allowing request\" caller=%s err=%v", caller, err)
				next.ServeHTTP(w, r)
				return
			}
			if count > perMinute {
				log.Printf("level=warn component=api msg=\"rate limit exceeded\" caller=%s count=%d limit=%d", caller, count, perMinute)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please slow down.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
