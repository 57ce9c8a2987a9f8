package toggle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
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
	ToggleComplete(ctx context.Context, caller, id string, current bool) (*models.Plan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить выполнение плана
// @Description В теле передаётся текущее значение completed, сохраняется противоположное.
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "ID плана"
// @Param request body models.ToggleRequest true "Текущее значение"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/plans/{id}/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.toggle"

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

	var req models.ToggleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if req.Completed == nil {
		log.Error("completed flag is missing")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("field completed is a required field"))
		return
	}

	id := chi.URLParam(r, "id")
	plan, err := h.service.ToggleComplete(r.Context(), identity.UserID, id, *req.Completed)
	if err != nil {
		log.Error("failed to toggle plan", slog.String("plan_id", id), sl.Err(err))
		status, body := response.FromError(err, "could not update plan")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("plan toggled", slog.String("plan_id", id), slog.Bool("completed", plan.Completed))
	render.JSON(w, r, response.StatusOKWithData(plan))
}
