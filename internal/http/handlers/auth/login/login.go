// Package login отвечает на перенаправление анонимного пользователя на вход.
package login

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/planner/internal/http/response"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Страница входа
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/login [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.Response{
		Status:  response.StatusOK,
		Message: "Please sign in",
		Data: map[string]string{
			"sign_in": "/api/auth/sign-in",
			"sign_up": "/api/auth/sign-up",
		},
	})
}
