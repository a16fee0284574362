package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"sharefolio/internal/service"
)

// TokenValidator resolves an access token to a user id.
type TokenValidator interface {
	UserIDFromToken(tokenString string) (string, error)
}

// AuthMiddleware attaches the caller's identity to the request context.
// Requests without a token pass through anonymously; a malformed or
// invalid token is rejected. Browsers cannot set headers on WebSocket
// handshakes, so upgrades may carry the token in the "token" query value.
func AuthMiddleware(validator TokenValidator, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeError(w, "Неверный формат токена", http.StatusUnauthorized)
				return
			}
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := validator.UserIDFromToken(tokenString)
			if err != nil {
				logger.Debug("rejected access token",
					zap.String("request_id", RequestIDFromContext(r.Context())), zap.Error(err))
				writeError(w, "Недействительный токен", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken returns "" when no token was sent and false when the
// Authorization header is not a bearer credential.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(r) {
			return r.URL.Query().Get("token"), true
		}
		return "", true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
