package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers"
)

// UserIDHeader заголовок, в котором gateway передает ID пользователя
const UserIDHeader = "X-User-ID"

const msgUnauthorized = "требуется заголовок X-User-ID"

type userIDKey struct{}

// Auth извлекает ID пользователя из X-User-ID и кладет его в контекст.
// Запросы без заголовка или с некорректным значением получают 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID кладет ID пользователя в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID возвращает ID пользователя, установленный Auth
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}
