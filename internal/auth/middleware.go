package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/steinarvk/brator/internal/models"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	adminKey  contextKey = "admin"
)

// UserID extracts the authenticated user ID from the request context.
func UserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value(userIDKey).(int64)
	return uid, ok
}

// IsAdmin reports whether the authenticated user has the admin flag.
func IsAdmin(r *http.Request) bool {
	admin, _ := r.Context().Value(adminKey).(bool)
	return admin
}

// Middleware validates the Bearer token and stores the user identity on the
// request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Bearer token required"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token claims"})
			return
		}

		rawUserID, ok := claims["user_id"].(float64)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token claims"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, int64(rawUserID))
		if admin, ok := claims["admin"].(bool); ok {
			ctx = context.WithValue(ctx, adminKey, admin)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin wraps a handler that only admin users may call.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
			return
		}
		next(w, r)
	}
}
