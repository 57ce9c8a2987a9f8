package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

type IssuerMock struct {
	mock.Mock
}

func (m *IssuerMock) SignInWithOTP(ctx context.Context, email, redirectTo string) (string, error) {
	args := m.Called(ctx, email, redirectTo)
	return args.String(0), args.Error(1)
}

func (m *IssuerMock) VerifyOTP(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) Send(ctx context.Context, email models.Email) error {
	return m.Called(ctx, email).Error(0)
}

type RecorderMock struct {
	mock.Mock
}

func (m *RecorderMock) EmailSent(result string) {
	m.Called(result)
}

const redirect = "https://planner.example.com/"

func TestSendVerification(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		setupMocks func(*IssuerMock, *MailerMock, *RecorderMock)
		wantErr    error
	}{
		{
			name:  "success",
			email: "x@y.com",
			setupMocks: func(i *IssuerMock, m *MailerMock, r *RecorderMock) {
				i.On("SignInWithOTP", mock.Anything, "x@y.com", "https://planner.example.com").
					Return("tok-1", nil).Once()
				m.On("Send", mock.Anything, mock.MatchedBy(func(e models.Email) bool {
					return e.To == "x@y.com" && e.Subject == Subject &&
						strings.Contains(e.HTML, "Verify Email Address") &&
						strings.Contains(e.HTML, "https://planner.example.com/auth/verify?email=x%40y.com&amp;token=tok-1")
				})).Return(nil).Once()
				r.On("EmailSent", "ok").Once()
			},
		},
		{
			name:       "missing email",
			email:      "   ",
			setupMocks: func(_ *IssuerMock, _ *MailerMock, _ *RecorderMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:  "delivery failure",
			email: "x@y.com",
			setupMocks: func(i *IssuerMock, m *MailerMock, r *RecorderMock) {
				i.On("SignInWithOTP", mock.Anything, "x@y.com", mock.Anything).Return("tok-1", nil).Once()
				m.On("Send", mock.Anything, mock.Anything).Return(errors.New("resend: 503")).Once()
				r.On("EmailSent", "error").Once()
			},
			wantErr: models.ErrEmailDelivery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := new(IssuerMock)
			mailer := new(MailerMock)
			recorder := new(RecorderMock)
			tt.setupMocks(issuer, mailer, recorder)
			svc := NewVerificationService(issuer, mailer, redirect, recorder, sl.Discard())

			err := svc.SendVerification(context.Background(), tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			issuer.AssertExpectations(t)
			mailer.AssertExpectations(t)
			recorder.AssertExpectations(t)
		})
	}
}

func TestSendVerification_IssuerFailure(t *testing.T) {
	issuer := new(IssuerMock)
	mailer := new(MailerMock)
	issuer.On("SignInWithOTP", mock.Anything, "x@y.com", mock.Anything).Return("", errors.New("redis down")).Once()
	svc := NewVerificationService(issuer, mailer, redirect, nil, sl.Discard())

	err := svc.SendVerification(context.Background(), "x@y.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrEmailDelivery)
	assert.NotErrorIs(t, err, models.ErrValidation)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		token      string
		setupMocks func(*IssuerMock)
		wantMsg    string
	}{
		{
			name:  "success",
			email: "x@y.com",
			token: "tok-1",
			setupMocks: func(i *IssuerMock) {
				i.On("VerifyOTP", mock.Anything, "x@y.com", "tok-1").Return(nil).Once()
			},
		},
		{
			name:       "no email",
			token:      "tok-1",
			setupMocks: func(_ *IssuerMock) {},
			wantMsg:    "No email provided for verification.",
		},
		{
			name:       "no token",
			email:      "x@y.com",
			setupMocks: func(_ *IssuerMock) {},
			wantMsg:    "verification link is invalid or has expired",
		},
		{
			name:  "expired token",
			email: "x@y.com",
			token: "tok-1",
			setupMocks: func(i *IssuerMock) {
				i.On("VerifyOTP", mock.Anything, "x@y.com", "tok-1").
					Return(models.NewValidationError("verification link is invalid or has expired")).Once()
			},
			wantMsg: "verification link is invalid or has expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := new(IssuerMock)
			tt.setupMocks(issuer)
			svc := NewVerificationService(issuer, new(MailerMock), redirect, nil, sl.Discard())

			err := svc.Verify(context.Background(), tt.email, tt.token)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
			} else {
				var vErr *models.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantMsg, vErr.Msg)
			}
			issuer.AssertExpectations(t)
		})
	}
}

func TestVerificationURL(t *testing.T) {
	svc := NewVerificationService(nil, nil, redirect, nil, sl.Discard())

	raw := svc.VerificationURL("a+b@y.com", "tok")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/auth/verify", u.Path)
	assert.Equal(t, "a+b@y.com", u.Query().Get("email"))
	assert.Equal(t, "tok", u.Query().Get("token"))
}

func TestRenderHTML_EscapesEmail(t *testing.T) {
	html, err := RenderHTML("<script>@y.com", "https://x/auth/verify?email=a")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>@y.com")
	assert.Contains(t, html, "Verify Your Email - Planner App")
}
