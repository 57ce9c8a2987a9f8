// Package signup реализует HTTP-обработчик регистрации пользователя.
//
// Пользователь и его профиль создаются одной транзакцией. Занятый email
// возвращается как 409 Conflict.
package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/planner/internal/http/response"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает регистрацию в провайдере идентификации.
type Service interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
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
// @Summary Регистрация пользователя
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignUpRequest true "Данные регистрации"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/sign-up [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SignUpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
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

	user, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		log.Error("sign up failed", sl.Err(err))
		status, body := response.FromError(err, "could not create account")
		if errors.Is(err, models.ErrConflict) {
			body = response.Error("email is already registered")
		}
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(user))
}
