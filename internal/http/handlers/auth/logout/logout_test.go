package logout

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
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLogoutHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		mockErr    error
		wantCalled bool
	}{
		{
			name:       "with valid bearer token",
			authHeader: "Bearer sometoken",
			wantCalled: true,
		},
		{
			name:       "without authorization header",
			wantCalled: false,
		},
		{
			name:       "malformed authorization header",
			authHeader: "Basic abc",
			wantCalled: false,
		},
		{
			name:       "revocation store failure is swallowed",
			authHeader: "Bearer sometoken",
			mockErr:    errors.New("redis down"),
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			if tt.wantCalled {
				serviceMock.On("Logout", mock.Anything, "sometoken").Return(tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, true, resp["ok"])

			serviceMock.AssertExpectations(t)
		})
	}
}
