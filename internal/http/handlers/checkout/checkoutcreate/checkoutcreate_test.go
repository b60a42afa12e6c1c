package checkoutcreate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/middlewarectx"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
	checkoutservice "github.com/magabrotheeeer/briefe-einfach/internal/services/checkout"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *ServiceMock) CreateCheckoutSession(ctx context.Context, userUID string) (string, error) {
	args := m.Called(ctx, userUID)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCheckoutCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		ctxUser        *models.User
		mockURL        string
		mockErr        error
		wantStatusCode int
		wantOK         bool
		wantCode       string
	}{
		{
			name:           "successful session",
			ctxUser:        &models.User{UID: "uid-1", Email: "max@example.com"},
			mockURL:        "https://checkout.example.com/c/cs_test_123",
			wantStatusCode: http.StatusOK,
			wantOK:         true,
		},
		{
			name:           "no user in context",
			wantStatusCode: http.StatusUnauthorized,
			wantOK:         false,
			wantCode:       "unauthorized",
		},
		{
			name:           "provider not configured",
			ctxUser:        &models.User{UID: "uid-1", Email: "max@example.com"},
			mockErr:        checkoutservice.ErrNotConfigured,
			wantStatusCode: http.StatusInternalServerError,
			wantOK:         false,
			wantCode:       "config_error",
		},
		{
			name:           "provider failure",
			ctxUser:        &models.User{UID: "uid-1", Email: "max@example.com"},
			mockErr:        checkoutservice.ErrProvider,
			wantStatusCode: http.StatusBadGateway,
			wantOK:         false,
			wantCode:       "upstream_error",
		},
		{
			name:           "storage failure",
			ctxUser:        &models.User{UID: "uid-1", Email: "max@example.com"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantOK:         false,
			wantCode:       "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.ctxUser != nil {
				serviceMock.On("CreateCheckoutSession", mock.Anything, tt.ctxUser.UID).
					Return(tt.mockURL, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", nil)
			if tt.ctxUser != nil {
				ctx := context.WithValue(req.Context(), middlewarectx.UserKey, tt.ctxUser)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOK, resp["ok"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp["code"])
			}
			if tt.wantOK {
				assert.Equal(t, tt.mockURL, resp["url"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
