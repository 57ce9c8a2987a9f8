// Package services доставляет транзакционные письма: напрямую из API или
// из очереди в воркере mail-sender.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"strings"

	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/lib/smtp"
	"github.com/magabrotheeeer/planner/internal/models"
)

// Delivery доставляет одно письмо через конкретного провайдера.
type Delivery interface {
	Deliver(ctx context.Context, email models.Email) error
}

// SenderService проверяет письма и передаёт их провайдеру доставки.
type SenderService struct {
	delivery Delivery
	log      *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(delivery Delivery, log *slog.Logger) *SenderService {
	return &SenderService{
		delivery: delivery,
		log:      log,
	}
}

// Send доставляет письмо.
func (s *SenderService) Send(ctx context.Context, email models.Email) error {
	const op = "sender.Send"
	if email.To == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("recipient is required"))
	}
	if err := s.delivery.Deliver(ctx, email); err != nil {
		s.log.Error("failed to deliver email", slog.String("to", email.To), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("to", email.To))
	return nil
}

// HandleMessage возвращает обработчик сообщений очереди писем. Сообщения,
// которые невозможно разобрать, подтверждаются и отбрасываются: повторная
// доставка их не исправит.
func (s *SenderService) HandleMessage(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		var email models.Email
		if err := json.Unmarshal(body, &email); err != nil {
			s.log.Error("failed to unmarshal message body, dropping", sl.Err(err))
			return nil
		}
		err := s.Send(ctx, email)
		if errors.Is(err, models.ErrValidation) {
			s.log.Error("invalid email message, dropping", sl.Err(err))
			return nil
		}
		return err
	}
}

// SMTPDelivery доставка через SMTP-транспорт.
type SMTPDelivery struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSMTPDelivery создает SMTPDelivery.
func NewSMTPDelivery(transport smtp.TransportInterface, log *slog.Logger) *SMTPDelivery {
	return &SMTPDelivery{transport: transport, log: log}
}

// Deliver отправляет HTML-письмо одному получателю.
func (d *SMTPDelivery) Deliver(ctx context.Context, email models.Email) error {
	const op = "sender.SMTPDelivery.Deliver"

	fromHeader := d.transport.From()
	envelopeFrom := fromHeader
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		envelopeFrom = addr.Address
	}

	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + email.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", email.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		email.HTML,
	}, "\r\n")

	client, err := d.transport.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(envelopeFrom); err != nil {
		d.log.Error("Failed to set MAIL FROM", slog.String("from", envelopeFrom), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(email.To); err != nil {
		d.log.Error("Failed to set RCPT TO", slog.String("recipient", email.To), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	wc, err := client.Data()
	if err != nil {
		d.log.Error("Failed to get Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		d.log.Error("Failed to write email body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		d.log.Error("Failed to close Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		d.log.Error("Failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
