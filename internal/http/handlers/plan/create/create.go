// Package create реализует HTTP-обработчик создания плана.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

// Handler обрабатывает HTTP-запросы на создание плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику создания плана.
type Service interface {
	Create(ctx context.Context, caller string, req models.DummyPlan) (*models.Plan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать план
// @Description Создает план текущего пользователя. Время по умолчанию 23:59:59.
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body models.DummyPlan true "Данные плана"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не определён"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"

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

	var req models.DummyPlan
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var vErrs validator.ValidationErrors
		render.Status(r, http.StatusBadRequest)
		if errors.As(err, &vErrs) {
			render.JSON(w, r, response.ValidationError(vErrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	plan, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		status, body := response.FromError(err, "could not create plan")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("plan created", slog.String("plan_id", plan.ID))
	render.JSON(w, r, response.StatusOKWithData(plan))
}
