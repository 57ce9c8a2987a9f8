// Package mailsender воркер, который доставляет письма из очереди RabbitMQ.
package mailsender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/planner/internal/config"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/planner/internal/services/sender"
)

const concurrency = 4

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "mailsender.New"

	delivery, err := senderservice.NewDelivery(cfg.Email, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailExchange, rabbitmq.GetEmailQueues(), concurrency)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(delivery, logger),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	wait, err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailQueue, concurrency, a.logger,
		a.senderService.HandleMessage(ctx))
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		return err
	}
	a.logger.Info("mail sender is consuming", slog.String("queue", rabbitmq.EmailQueue))

	<-ctx.Done()
	a.logger.Info("mail sender shutting down gracefully")
	wait()

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
