package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// EmailExchange direct-exchange транзакционных писем.
	EmailExchange = "emails"
	// EmailQueue очередь, которую читает mail-sender.
	EmailQueue = "emails.transactional"
	// EmailRoutingKey ключ маршрутизации писем.
	EmailRoutingKey = "transactional"
)

// QueueConfig очередь и ключ, с которым она привязана к exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetEmailQueues очереди, которые объявляются для exchange писем.
func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет durable direct-exchange и
// привязанные к нему очереди. prefetch ограничивает число неподтверждённых
// сообщений на потребителя.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig, prefetch int) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if prefetch > 0 {
		if err = ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
		}
	}

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err = ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		if err = ch.QueueBind(q.QueueName, q.RoutingKey, exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
