// Package update реализует частичное обновление плана.
//
// Поля id, user_id и created_at из тела запроса игнорируются,
// неизвестные поля отклоняются с ответом 400.
package update

import (
	"context"
	"encoding/json"
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
	Update(ctx context.Context, caller, id string, req models.DummyPlanPatch) (*models.Plan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обновить план
// @Description Частичное обновление. description: null очищает описание.
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "ID плана"
// @Param request body models.DummyPlanPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/plans/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.update"

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

	var req models.DummyPlanPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	id := chi.URLParam(r, "id")
	plan, err := h.service.Update(r.Context(), identity.UserID, id, req)
	if err != nil {
		log.Error("failed to update plan", slog.String("plan_id", id), sl.Err(err))
		status, body := response.FromError(err, "could not update plan")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("plan updated", slog.String("plan_id", id))
	render.JSON(w, r, response.StatusOKWithData(plan))
}
