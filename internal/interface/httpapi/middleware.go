package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gatescan-service/internal/infrastructure/auth"
	"gatescan-service/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// DeviceIDKey is the context key for the authenticated device ID.
const DeviceIDKey contextKey = "device_id"

// GetDeviceID extracts the authenticated device ID from the context.
// Returns empty string if not found.
func GetDeviceID(ctx context.Context) string {
	deviceID, _ := ctx.Value(DeviceIDKey).(string)
	return deviceID
}

// RequireAuth validates the Bearer token and adds the device ID to the
// request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), DeviceIDKey, claims.DeviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogging logs one line per request.
func RequestLogging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start))
		})
	}
}
