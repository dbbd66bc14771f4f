package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos-till/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	UserNameKey contextKey = "user_name"
)

// tokenQueryParam carries the token for EventSource clients, which cannot
// set headers.
const tokenQueryParam = "access_token"

// AuthMiddleware validates JWT tokens and extracts user claims
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				logger.Debug("Missing or malformed authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				logger.Debug("Invalid token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				logger.Warn("Missing user_id in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			role, _ := claims["role"].(string)
			if !domain.Role(role).Valid() {
				logger.Warn("Unknown role in token claims", zap.String("role", role))
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			name, _ := claims["name"].(string)

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, domain.Role(role))
			ctx = context.WithValue(ctx, UserNameKey, name)

			logger.Debug("User authenticated",
				zap.String("user_id", userID),
				zap.String("role", role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// access_token query parameter on GET requests.
func bearerToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if r.Method == http.MethodGet {
		if token := r.URL.Query().Get(tokenQueryParam); token != "" {
			return token, true
		}
	}
	return "", false
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(domain.Role)
	return role, ok
}

// GetUserName extracts the display name from request context
func GetUserName(ctx context.Context) string {
	name, _ := ctx.Value(UserNameKey).(string)
	return name
}
