package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/planner/internal/models"
)

// PublishMessage сериализует message в JSON и публикует его как persistent.
func PublishMessage(ch *amqp.Channel, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EmailPublisher ставит письма в очередь для mail-sender.
// Реализует тот же контракт Send, что и прямая доставка.
type EmailPublisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewEmailPublisher создаёт EmailPublisher поверх канала с объявленной топологией.
func NewEmailPublisher(ch *amqp.Channel) *EmailPublisher {
	return &EmailPublisher{ch: ch}
}

// Send публикует письмо в exchange писем.
func (p *EmailPublisher) Send(ctx context.Context, email models.Email) error {
	const op = "rabbitmq.EmailPublisher.Send"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := PublishMessage(p.ch, EmailExchange, EmailRoutingKey, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
