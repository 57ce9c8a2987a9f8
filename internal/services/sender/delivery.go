package services

import (
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/planner/internal/config"
	"github.com/magabrotheeeer/planner/internal/emailprovider"
	"github.com/magabrotheeeer/planner/internal/lib/smtp"
)

const (
	// ProviderResend доставка через HTTP API Resend.
	ProviderResend = "resend"
	// ProviderSMTP доставка через SMTP-сервер.
	ProviderSMTP = "smtp"
)

// NewDelivery выбирает провайдера доставки по настройкам.
func NewDelivery(cfg config.Email, log *slog.Logger) (Delivery, error) {
	const op = "sender.NewDelivery"
	switch cfg.Provider {
	case ProviderResend, "":
		return emailprovider.NewClient(cfg.ResendAPIKey, cfg.From, cfg.ResendAPIURL), nil
	case ProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("%s: smtp_host is not set", op)
		}
		return NewSMTPDelivery(smtp.NewTransport(cfg, log), log), nil
	default:
		return nil, fmt.Errorf("%s: unknown email provider %q", op, cfg.Provider)
	}
}
