package middlewarectx

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/planner/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ для пользователя, определённого по сессии.
const IdentityKey Key = "identity"

// RefreshTokenKey ключ для refresh-токена, выданного при обновлении сессии
// в текущем запросе.
const RefreshTokenKey Key = "refresh_token"

// WithIdentity возвращает контекст с пользователем запроса.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFrom возвращает пользователя запроса, если он определён.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*models.Identity)
	if !ok || identity == nil || identity.UserID == "" {
		return nil, false
	}
	return identity, true
}

// WithRefreshToken возвращает контекст с действующим refresh-токеном запроса.
func WithRefreshToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, RefreshTokenKey, token)
}

// RefreshToken возвращает действующий refresh-токен запроса: выданный при
// обновлении сессии, иначе из cookie.
func RefreshToken(r *http.Request) string {
	if token, ok := r.Context().Value(RefreshTokenKey).(string); ok && token != "" {
		return token
	}
	return cookieValue(r, RefreshCookie)
}
