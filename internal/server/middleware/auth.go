package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/devnest/internal/server/handlers"
	"github.com/iudanet/devnest/internal/server/storage"
	"github.com/iudanet/devnest/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Токен должен быть валиден и не отозван через logout.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, tokens storage.TokenStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, "missing token", http.StatusUnauthorized)
				return
			}

			claims, reason := authenticate(r, logger, jwtConfig, tokens)
			if claims == nil {
				writeError(w, reason, http.StatusUnauthorized)
				return
			}

			logger.Debug("User authenticated", "user_id", claims.Subject, "username", claims.Username)

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware пропускает анонимные запросы, а при наличии валидного
// токена кладет пользователя в контекст. Невалидный токен равносилен его отсутствию.
func OptionalAuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, tokens storage.TokenStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				if claims, _ := authenticate(r, logger, jwtConfig, tokens); claims != nil {
					r = r.WithContext(handlers.WithClaims(r.Context(), claims))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate разбирает Bearer токен; при ошибке возвращает nil и причину для клиента
func authenticate(r *http.Request, logger *slog.Logger, jwtConfig handlers.JWTConfig, tokens storage.TokenStorage) (*handlers.CustomClaims, string) {
	// Ожидаем формат: "Bearer <token>"
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		logger.Warn("Invalid Authorization header format")
		return nil, "invalid token format"
	}

	claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
	if err != nil {
		logger.Warn("Invalid access token", "error", err)
		return nil, "invalid token"
	}

	revoked, err := tokens.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		logger.Error("Failed to check token revocation", "error", err)
		return nil, "invalid token"
	}
	if revoked {
		logger.Warn("Revoked access token", "user_id", claims.Subject)
		return nil, "token revoked"
	}

	return claims, ""
}

// writeError отвечает JSON ошибкой в формате API
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
