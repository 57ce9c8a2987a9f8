// Package services реализует отправку писем подтверждения email и проверку
// ссылок из этих писем.
package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

const (
	// Subject тема письма подтверждения.
	Subject    = "Verify your email - Planner App"
	verifyPath = "/auth/verify"
)

//go:embed templates/verification.html
var templates embed.FS

var verificationTmpl = template.Must(template.ParseFS(templates, "templates/verification.html"))

// OTPIssuer выпускает и погашает одноразовые токены провайдера идентификации.
type OTPIssuer interface {
	SignInWithOTP(ctx context.Context, email, redirectTo string) (string, error)
	VerifyOTP(ctx context.Context, email, token string) error
}

// Mailer доставляет письмо напрямую или через очередь.
type Mailer interface {
	Send(ctx context.Context, email models.Email) error
}

// Recorder учитывает результат отправки писем.
type Recorder interface {
	EmailSent(result string)
}

// VerificationService отправляет письма подтверждения.
type VerificationService struct {
	issuer   OTPIssuer
	mailer   Mailer
	redirect string
	recorder Recorder
	log      *slog.Logger
}

// NewVerificationService создает VerificationService. redirect — базовый адрес
// сайта, к которому добавляется путь страницы подтверждения.
func NewVerificationService(issuer OTPIssuer, mailer Mailer, redirect string,
	recorder Recorder, log *slog.Logger) *VerificationService {
	return &VerificationService{
		issuer:   issuer,
		mailer:   mailer,
		redirect: strings.TrimRight(redirect, "/"),
		recorder: recorder,
		log:      log,
	}
}

type letter struct {
	Email string
	URL   string
}

// SendVerification выпускает одноразовый токен и отправляет письмо со ссылкой.
// Сбой доставки возвращается как models.ErrEmailDelivery.
func (s *VerificationService) SendVerification(ctx context.Context, email string) error {
	const op = "verification.SendVerification"

	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("email is required"))
	}

	token, err := s.issuer.SignInWithOTP(ctx, email, s.redirect)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	link := s.VerificationURL(email, token)
	html, err := RenderHTML(email, link)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.mailer.Send(ctx, models.Email{To: email, Subject: Subject, HTML: html})
	if err != nil {
		s.record("error")
		s.log.Error("failed to send verification email", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, models.ErrEmailDelivery, err)
	}
	s.record("ok")
	s.log.Info("verification email sent", slog.String("op", op))
	return nil
}

// Verify проверяет ссылку из письма и подтверждает email.
func (s *VerificationService) Verify(ctx context.Context, email, token string) error {
	const op = "verification.Verify"

	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("No email provided for verification."))
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%s: %w", op, models.NewValidationError("verification link is invalid or has expired"))
	}
	if err := s.issuer.VerifyOTP(ctx, email, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VerificationURL строит ссылку вида <redirect>/auth/verify?email=..&token=..
func (s *VerificationService) VerificationURL(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return s.redirect + verifyPath + "?" + q.Encode()
}

// RenderHTML формирует тело письма подтверждения.
func RenderHTML(email, link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, letter{Email: email, URL: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *VerificationService) record(result string) {
	if s.recorder != nil {
		s.recorder.EmailSent(result)
	}
}
