package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
	cookies middlewarectx.CookieConfig
}

type Service interface {
	SignOut(ctx context.Context, refreshToken string) error
}

func New(log *slog.Logger, service Service, cookies middlewarectx.CookieConfig) *Handler {
	return &Handler{
		log:     log,
		service: service,
		cookies: cookies,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Отзывает refresh-токен и очищает cookie сессии.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /api/auth/sign-out [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if token := middlewarectx.RefreshToken(r); token != "" {
		if err := h.service.SignOut(r.Context(), token); err != nil {
			log.Error("failed to revoke refresh token", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not sign out"))
			return
		}
	}

	middlewarectx.ClearSessionCookies(w, h.cookies)
	log.Info("signed out")
	render.JSON(w, r, response.Success())
}
