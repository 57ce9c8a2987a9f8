// Package verify обрабатывает переход по ссылке из письма подтверждения.
package verify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
)

// SuccessMessage ответ после подтверждения email.
const SuccessMessage = "Your email has been verified successfully!"

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Verify(ctx context.Context, email, token string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтверждение email
// @Tags Auth
// @Produce json
// @Param email query string true "Email"
// @Param token query string true "Одноразовый токен"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	if err := h.service.Verify(r.Context(), q.Get("email"), q.Get("token")); err != nil {
		log.Error("email verification failed", sl.Err(err))
		status, body := response.FromError(err, "could not verify email")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.Message(SuccessMessage))
}
