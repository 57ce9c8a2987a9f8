package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

type AuthMock struct {
	mock.Mock
}

func (m *AuthMock) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	args := m.Called(ctx, accessToken)
	identity, _ := args.Get(0).(*models.Identity)
	return identity, args.Error(1)
}

func (m *AuthMock) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	args := m.Called(ctx, refreshToken)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

var alice = &models.Identity{UserID: "0b8f2a52-8d3e-4f0e-9a0e-0e7cf2d1b7a1", Email: "alice@example.com"}

func TestSession(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		prepare      func(*http.Request)
		setupMock    func(*AuthMock)
		wantStatus   int
		wantIdentity *models.Identity
		wantLocation string
		wantCookies  bool
	}{
		{
			name: "valid access cookie",
			path: "/dashboard",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.AccessCookie, Value: "good"})
			},
			setupMock: func(m *AuthMock) {
				m.On("GetUser", mock.Anything, "good").Return(alice, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantIdentity: alice,
		},
		{
			name: "bearer header",
			path: "/api/plans",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
			},
			setupMock: func(m *AuthMock) {
				m.On("GetUser", mock.Anything, "header-token").Return(alice, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantIdentity: alice,
		},
		{
			name: "expired access token refreshed silently",
			path: "/dashboard",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.AccessCookie, Value: "expired"})
				r.AddCookie(&http.Cookie{Name: middlewarectx.RefreshCookie, Value: "refresh-1"})
			},
			setupMock: func(m *AuthMock) {
				m.On("GetUser", mock.Anything, "expired").Return(nil, errors.New("invalid token")).Once()
				m.On("Refresh", mock.Anything, "refresh-1").Return(&models.Session{
					AccessToken:  "new-access",
					RefreshToken: "refresh-2",
					ExpiresAt:    time.Now().Add(time.Hour),
					User:         &models.User{ID: alice.UserID, Email: alice.Email},
				}, nil).Once()
			},
			wantStatus:   http.StatusOK,
			wantIdentity: alice,
			wantCookies:  true,
		},
		{
			name: "anonymous page request redirected",
			path: "/dashboard",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: middlewarectx.RefreshCookie, Value: "stale"})
			},
			setupMock: func(m *AuthMock) {
				m.On("Refresh", mock.Anything, "stale").Return(nil, errors.New("unknown refresh token")).Once()
			},
			wantStatus:   http.StatusFound,
			wantLocation: middlewarectx.LoginPath,
		},
		{
			name:       "anonymous api request passes through",
			path:       "/api/plans",
			prepare:    func(_ *http.Request) {},
			setupMock:  func(_ *AuthMock) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "anonymous root passes through",
			path:       "/",
			prepare:    func(_ *http.Request) {},
			setupMock:  func(_ *AuthMock) {},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(AuthMock)
			tt.setupMock(auth)

			var got *models.Identity
			var gotRefresh string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = middlewarectx.IdentityFrom(r.Context())
				gotRefresh = middlewarectx.RefreshToken(r)
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.Session(auth, middlewarectx.CookieConfig{RefreshTTL: time.Hour}, sl.Discard())(next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.prepare(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantIdentity, got)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rr.Header().Get("Location"))
			}
			if tt.wantCookies {
				cookies := map[string]string{}
				for _, c := range rr.Result().Cookies() {
					cookies[c.Name] = c.Value
				}
				assert.Equal(t, "new-access", cookies[middlewarectx.AccessCookie])
				assert.Equal(t, "refresh-2", cookies[middlewarectx.RefreshCookie])
				assert.Equal(t, "refresh-2", gotRefresh)
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/", "/login", "/auth/login", "/auth/verify", "/api/plans", "/docs/index.html", "/metrics", "/health"}
	for _, p := range public {
		assert.True(t, middlewarectx.IsPublicPath(p), p)
	}
	private := []string{"/dashboard", "/plans/new", "/settings"}
	for _, p := range private {
		assert.False(t, middlewarectx.IsPublicPath(p), p)
	}
}

func TestRequireUser(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := middlewarectx.RequireUser(sl.Discard())(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"unauthorized"}`, rr.Body.String())
	assert.False(t, called)

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req = req.WithContext(middlewarectx.WithIdentity(req.Context(), alice))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
}

func TestClearSessionCookies(t *testing.T) {
	rr := httptest.NewRecorder()
	middlewarectx.ClearSessionCookies(rr, middlewarectx.CookieConfig{})

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}
