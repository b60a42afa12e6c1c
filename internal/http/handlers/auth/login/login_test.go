package login

import (
	"bytes"
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

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
	authservice "github.com/magabrotheeeer/briefe-einfach/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockUser       *models.User
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantOK         bool
		wantCode       string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "max@example.com", Password: "geheim123"},
			mockUser:       &models.User{UID: "uid-1", Email: "max@example.com", IsSubscribed: true},
			mockToken:      "tok",
			wantStatusCode: http.StatusOK,
			wantOK:         true,
		},
		{
			name:           "invalid json body",
			requestBody:    "{{",
			wantStatusCode: http.StatusBadRequest,
			wantOK:         false,
			wantCode:       "validation_error",
		},
		{
			name:           "missing email",
			requestBody:    Request{Password: "geheim123"},
			wantStatusCode: http.StatusBadRequest,
			wantOK:         false,
			wantCode:       "validation_error",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Email: "max@example.com", Password: "falsch"},
			mockErr:        authservice.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantOK:         false,
			wantCode:       "invalid_credentials",
		},
		{
			name:           "unknown user",
			requestBody:    Request{Email: "nobody@example.com", Password: "geheim123"},
			mockErr:        authservice.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantOK:         false,
			wantCode:       "invalid_credentials",
		},
		{
			name:           "storage failure",
			requestBody:    Request{Email: "max@example.com", Password: "geheim123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantOK:         false,
			wantCode:       "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.mockUser != nil || tt.mockErr != nil {
				serviceMock.On("Login", mock.Anything, mock.Anything, mock.Anything).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, "tok", resp["token"])
				user := resp["user"].(map[string]any)
				assert.Equal(t, true, user["is_subscribed"])
			}
		})
	}
}
