package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/planner/internal/lib/sl"
)

// ConsumerMessage читает очередь и обрабатывает не более concurrency
// сообщений одновременно. Успешно обработанные подтверждаются, при ошибке
// сообщение возвращается в очередь. Возвращённая функция ждёт завершения
// уже запущенных обработчиков после отмены ctx.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, concurrency int,
	log *slog.Logger, handler func([]byte) error) (wait func(), err error) {
	const op = "rabbitmq.ConsumerMessage"
	if concurrency < 1 {
		concurrency = 1
	}
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(d amqp.Delivery) {
					defer func() {
						<-sem
						wg.Done()
					}()
					if err := handler(d.Body); err != nil {
						log.Warn("message handling failed, requeueing", sl.Err(err))
						if nackErr := d.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		<-done
		wg.Wait()
	}, nil
}
