package checkoutwebhook

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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/briefe-einfach/internal/paymentprovider"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ProcessWebhookEvent(ctx context.Context, event *paymentprovider.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const testSecret = "whsec_test"

func signedRequest(t *testing.T, payload []byte, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", paymentprovider.SignPayload(payload, secret, time.Now()))
	return req
}

func TestWebhookHandler_ValidSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	serviceMock.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(e *paymentprovider.Event) bool {
		return e.Type == "checkout.session.completed" && e.ID == "evt_1"
	})).Return(nil).Once()

	handler := New(newNoopLogger(), serviceMock, testSecret)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, signedRequest(t, payload, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Received)

	serviceMock.AssertExpectations(t)
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", paymentprovider.SignPayload(payload, "whsec_other", time.Now()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	serviceMock.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_MissingSignatureHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	serviceMock.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_ExpiredTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature",
		paymentprovider.SignPayload(payload, testSecret, time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	serviceMock.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_SecretUnset(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, "")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, signedRequest(t, payload, testSecret))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "config_error", resp["code"])

	serviceMock.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_ProcessingFailure(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)

	serviceMock := new(ServiceMock)
	serviceMock.On("ProcessWebhookEvent", mock.Anything, mock.Anything).
		Return(errors.New("db down")).Once()

	handler := New(newNoopLogger(), serviceMock, testSecret)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, signedRequest(t, payload, testSecret))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	serviceMock.AssertExpectations(t)
}
