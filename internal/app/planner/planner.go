package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/planner/internal/cache"
	"github.com/magabrotheeeer/planner/internal/config"
	"github.com/magabrotheeeer/planner/internal/http/handlers/health"
	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/lib/jwt"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/metrics"
	"github.com/magabrotheeeer/planner/internal/migrations"
	"github.com/magabrotheeeer/planner/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/planner/internal/services/auth"
	planservice "github.com/magabrotheeeer/planner/internal/services/plan"
	senderservice "github.com/magabrotheeeer/planner/internal/services/sender"
	verificationservice "github.com/magabrotheeeer/planner/internal/services/verification"
	"github.com/magabrotheeeer/planner/internal/storage/repository"
)

const (
	// DeliveryDirect письма отправляются из процесса API.
	DeliveryDirect = "direct"
	// DeliveryQueue письма публикуются в RabbitMQ для mail-sender.
	DeliveryQueue = "queue"

	shutdownTimeout = 15 * time.Second
)

// App HTTP API планировщика.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает хранилища, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "planner.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	mailer, err := app.newMailer(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL)
	authService := authservice.NewAuthService(db, cacheRedis, jwtMaker, cfg.RefreshTokenTTL, cfg.OTPTTL, logger)
	planService := planservice.NewPlanService(db, db, cfg.Location(), appMetrics, logger)
	verificationService := verificationservice.NewVerificationService(authService, mailer,
		cfg.VerificationRedirect(), appMetrics, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:         authService,
		Plans:        planService,
		Verification: verificationService,
		Cookies: middlewarectx.CookieConfig{
			Secure:     cfg.SecureCookies,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		Limiter:  middlewarectx.NewIPLimiter(cfg.VerificationRPS, cfg.VerificationBurst),
		Metrics:  appMetrics,
		Gatherer: reg,
		Checks: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// newMailer возвращает прямую доставку или публикацию в очередь.
func (a *App) newMailer(ctx context.Context, cfg *config.Config) (verificationservice.Mailer, error) {
	switch cfg.Delivery {
	case DeliveryQueue:
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		a.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailExchange, rabbitmq.GetEmailQueues(), 0)
		if err != nil {
			return nil, err
		}
		a.logger.Info("verification emails are delivered through the queue")
		return rabbitmq.NewEmailPublisher(ch), nil
	case DeliveryDirect, "":
		delivery, err := senderservice.NewDelivery(cfg.Email, a.logger)
		if err != nil {
			return nil, err
		}
		return senderservice.NewSenderService(delivery, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown email delivery %q", cfg.Delivery)
	}
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
