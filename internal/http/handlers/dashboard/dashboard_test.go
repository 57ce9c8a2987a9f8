package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/planner/internal/http/middlewarectx"
	"github.com/magabrotheeeer/planner/internal/lib/sl"
	"github.com/magabrotheeeer/planner/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Dashboard(ctx context.Context, caller models.Identity) (*models.Dashboard, error) {
	args := m.Called(ctx, caller)
	d, _ := args.Get(0).(*models.Dashboard)
	return d, args.Error(1)
}

func TestDashboardHandler(t *testing.T) {
	alice := models.Identity{UserID: "u1", Email: "alice@example.com"}

	t.Run("сводка пользователя", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Dashboard", mock.Anything, alice).Return(&models.Dashboard{
			Greeting: "alice",
			Stats:    models.PlanStats{Total: 2, Completed: 1, Pending: 1},
			Upcoming: []*models.Plan{},
			Plans:    []*models.Plan{},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &alice))
		rr := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"greeting":"alice"`)
		assert.Contains(t, rr.Body.String(), `"pending":1`)
		svc.AssertExpectations(t)
	})

	t.Run("нет пользователя", func(t *testing.T) {
		rr := httptest.NewRecorder()
		New(sl.Discard(), new(MockService)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ошибка сервиса", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Dashboard", mock.Anything, alice).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req = req.WithContext(middlewarectx.WithIdentity(req.Context(), &alice))
		rr := httptest.NewRecorder()
		New(sl.Discard(), svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"status":"Error","error":"could not load dashboard"}`, rr.Body.String())
	})
}
