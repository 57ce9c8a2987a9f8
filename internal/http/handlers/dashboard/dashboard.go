// Package dashboard отдаёт сводку главной страницы пользователя.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Dashboard(ctx context.Context, caller models.Identity) (*models.Dashboard, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Дашборд
// @Description Приветствие, статистика, ближайшие и все планы пользователя.
// @Tags Plans
// @Produce json
// @Success 200 {object} response.Response{data=models.Dashboard}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		log.Error("identity not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	dash, err := h.service.Dashboard(r.Context(), *identity)
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		status, body := response.FromError(err, "could not load dashboard")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(dash))
}
