// Package signin реализует вход по email и паролю.
//
// При успехе access-токен возвращается в теле ответа, оба токена
// записываются в cookie сессии.
package signin

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

type Handler struct {
	log      *slog.Logger
	service  Service
	cookies  middlewarectx.CookieConfig
	validate *validator.Validate
}

type Service interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
}

func New(log *slog.Logger, service Service, cookies middlewarectx.CookieConfig) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		cookies:  cookies,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход по паролю
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignInRequest true "Учетные данные"
// @Success 200 {object} response.Response{data=models.Session}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/auth/sign-in [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SignInRequest
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

	session, err := h.service.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("sign in failed", sl.Err(err))
		status, body := response.FromError(err, "could not sign in")
		if errors.Is(err, models.ErrUnauthenticated) {
			body = response.Error("invalid credentials")
		}
		render.Status(r, status)
		render.JSON(w, r, body)
		return
	}

	middlewarectx.SetSessionCookies(w, session, h.cookies)
	log.Info("sign in success", slog.String("user_id", session.User.ID))
	render.JSON(w, r, response.StatusOKWithData(session))
}
