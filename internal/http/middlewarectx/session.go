// Package middlewarectx содержит HTTP middleware сессии пользователя.
//
// Session определяет пользователя по access-токену из cookie или заголовка
// Authorization, при необходимости незаметно обновляет сессию по refresh-токену
// и перенаправляет неаутентифицированные запросы страниц на вход.
// RequireUser закрывает API-маршруты ответом 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

// LoginPath страница входа, на которую перенаправляются анонимные запросы.
const LoginPath = "/auth/login"

var publicPrefixes = []string{"/login", "/auth", "/api", "/docs", "/metrics", "/health"}

// Authenticator описывает провайдер идентификации для middleware.
type Authenticator interface {
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
}

// Session возвращает middleware, который кладёт пользователя в контекст запроса.
func Session(auth Authenticator, cookies CookieConfig, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			identity, rotated := resolve(w, r, auth, cookies, log)
			ctx := r.Context()
			if rotated != "" {
				ctx = WithRefreshToken(ctx, rotated)
			}
			if identity == nil {
				if !IsPublicPath(r.URL.Path) {
					http.Redirect(w, r, LoginPath, http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

// resolve возвращает пользователя запроса и, если сессия была обновлена,
// новый refresh-токен.
func resolve(w http.ResponseWriter, r *http.Request, auth Authenticator,
	cookies CookieConfig, log *slog.Logger) (*models.Identity, string) {
	if token := accessToken(r); token != "" {
		identity, err := auth.GetUser(r.Context(), token)
		if err == nil {
			return identity, ""
		}
		log.Debug("access token rejected", sl.Err(err))
	}

	refresh := cookieValue(r, RefreshCookie)
	if refresh == "" {
		return nil, ""
	}
	session, err := auth.Refresh(r.Context(), refresh)
	if err != nil || session.User == nil {
		log.Info("silent refresh failed", sl.Err(err))
		return nil, ""
	}
	SetSessionCookies(w, session, cookies)
	log.Debug("session refreshed")
	return &models.Identity{UserID: session.User.ID, Email: session.User.Email}, session.RefreshToken
}

func accessToken(r *http.Request) string {
	if token := cookieValue(r, AccessCookie); token != "" {
		return token
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// IsPublicPath сообщает, доступен ли путь без сессии.
func IsPublicPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RequireUser отвечает 401, если пользователь запроса не определён.
func RequireUser(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFrom(r.Context()); !ok {
				log.Warn("unauthenticated request",
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
