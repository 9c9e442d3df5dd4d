package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

// TokenValidator — интерфейс проверки токенов, реализуется AuthService через
// embedding BaseValidator.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.ViewerClaims, error)
}

// Типизированный ключ контекста (избегаем коллизий)
type ctxKey string

const viewerKey ctxKey = "viewer"

// NewMiddleware закрывает группу роутов проверкой Bearer-токена.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем имя просмотрщика в контекст
			ctx := context.WithValue(r.Context(), viewerKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFromContext достаёт имя аутентифицированного пользователя дашборда.
func ViewerFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(viewerKey).(string); ok {
		return name
	}
	return ""
}
