// Package planner собирает HTTP API планировщика.
package planner

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// регистрирует спецификацию Swagger
	_ "github.com/magabrotheeeer/planner/docs"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/sendverification"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/signout"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/planner/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/planner/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/planner/internal/http/handlers/health"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/create"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/list"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/read"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/remove"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/toggle"
	"github.com/magabrotheeeer/planner/internal/http/handlers/plan/update"
	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/metrics"
)

// AuthService операции провайдера идентификации, нужные маршрутам.
type AuthService interface {
	middlewarectx.Authenticator
	signup.Service
	signin.Service
	signout.Service
}

// PlanService операции над планами, нужные маршрутам.
type PlanService interface {
	create.Service
	list.Service
	read.Service
	update.Service
	toggle.Service
	remove.Service
	dashboard.Service
}

// VerificationService отправка и проверка писем подтверждения.
type VerificationService interface {
	sendverification.Service
	verify.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Auth         AuthService
	Plans        PlanService
	Verification VerificationService
	Cookies      middlewarectx.CookieConfig
	Limiter      *middlewarectx.IPLimiter
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Checks       map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
		middlewarectx.Session(d.Auth, d.Cookies, logger),
	)

	r.Get("/health", health.New(logger, d.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Get("/auth/login", login.New().ServeHTTP)
	r.Get("/auth/verify", verify.New(logger, d.Verification).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", signup.New(logger, d.Auth).ServeHTTP)
			r.Post("/sign-in", signin.New(logger, d.Auth, d.Cookies).ServeHTTP)
			r.Post("/sign-out", signout.New(logger, d.Auth, d.Cookies).ServeHTTP)
			r.With(middlewarectx.RateLimitMiddleware(d.Limiter, logger)).
				Post("/send-verification", sendverification.New(logger, d.Verification).ServeHTTP)
		})

		// Группа, доступная только с сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireUser(logger))
			r.Get("/dashboard", dashboard.New(logger, d.Plans).ServeHTTP)
			r.Get("/plans", list.New(logger, d.Plans).ServeHTTP)
			r.Post("/plans", create.New(logger, d.Plans).ServeHTTP)
			r.Get("/plans/{id}", read.New(logger, d.Plans).ServeHTTP)
			r.Patch("/plans/{id}", update.New(logger, d.Plans).ServeHTTP)
			r.Delete("/plans/{id}", remove.New(logger, d.Plans).ServeHTTP)
			r.Post("/plans/{id}/toggle", toggle.New(logger, d.Plans).ServeHTTP)
		})
	})
}
