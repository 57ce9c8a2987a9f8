// Package sendverification реализует запрос на отправку письма подтверждения email.
package sendverification

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

// SuccessMessage ответ при успешной отправке письма.
const SuccessMessage = "Verification email sent successfully"

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	SendVerification(ctx context.Context, email string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить письмо подтверждения
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.VerificationRequest true "Email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Email не указан"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Сбой отправки письма"
// @Router /api/auth/send-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sendverification"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.VerificationRequest
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

	if err := h.service.SendVerification(r.Context(), req.Email); err != nil {
		log.Error("failed to send verification email", sl.Err(err))
		status, body := response.FromError(err, "failed to send verification email")
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	log.Info("verification email requested")
	render.JSON(w, r, response.Message(SuccessMessage))
}
