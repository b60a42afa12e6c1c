package explain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CompleterMock struct {
	mock.Mock
}

func (m *CompleterMock) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type cacheStub struct {
	data map[string]string
}

func newCacheStub() *cacheStub {
	return &cacheStub{data: map[string]string{}}
}

func (c *cacheStub) Get(_ context.Context, key string, result any) (bool, error) {
	val, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*(result.(*string)) = val
	return true, nil
}

func (c *cacheStub) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.data[key] = value.(string)
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestExplain_EmptyInput(t *testing.T) {
	svc := New(nil, newCacheStub(), time.Hour, newNoopLogger())

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.Explain(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
}

func TestExplain_LocalFallbackAlwaysSucceeds(t *testing.T) {
	svc := New(nil, newCacheStub(), time.Hour, newNoopLogger())

	result, err := svc.Explain(context.Background(), "Sehr geehrter Herr Mustermann, hiermit ...")
	require.NoError(t, err)
	assert.NotEmpty(t, result)
	assert.Contains(t, result, "einfache Erklärung")
}

func TestExplain_UsesProvider(t *testing.T) {
	llmMock := new(CompleterMock)
	llmMock.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return len(prompt) > 0
	})).Return("Einfache Erklärung des Briefs.", nil).Once()

	svc := New(llmMock, newCacheStub(), time.Hour, newNoopLogger())

	result, err := svc.Explain(context.Background(), "Bescheid über Leistungen nach dem SGB II")
	require.NoError(t, err)
	assert.Equal(t, "Einfache Erklärung des Briefs.", result)
	llmMock.AssertExpectations(t)
}

func TestExplain_CacheHitSkipsProvider(t *testing.T) {
	llmMock := new(CompleterMock)
	llmMock.On("Complete", mock.Anything, mock.Anything).
		Return("Erklärung.", nil).Once()

	svc := New(llmMock, newCacheStub(), time.Hour, newNoopLogger())

	first, err := svc.Explain(context.Background(), "Derselbe Brief")
	require.NoError(t, err)
	second, err := svc.Explain(context.Background(), "Derselbe Brief")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	llmMock.AssertNumberOfCalls(t, "Complete", 1)
}

func TestExplain_UpstreamFailure(t *testing.T) {
	llmMock := new(CompleterMock)
	llmMock.On("Complete", mock.Anything, mock.Anything).
		Return("", errors.New("connection refused")).Once()

	svc := New(llmMock, newCacheStub(), time.Hour, newNoopLogger())

	_, err := svc.Explain(context.Background(), "Ein Brief")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestTranslate_RequiresProvider(t *testing.T) {
	svc := New(nil, newCacheStub(), time.Hour, newNoopLogger())

	_, err := svc.Translate(context.Background(), "Ein Brief", "en")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTranslate(t *testing.T) {
	llmMock := new(CompleterMock)
	llmMock.On("Complete", mock.Anything, mock.Anything).
		Return("A letter", nil).Once()

	svc := New(llmMock, newCacheStub(), time.Hour, newNoopLogger())

	result, err := svc.Translate(context.Background(), "Ein Brief", "en")
	require.NoError(t, err)
	assert.Equal(t, "A letter", result)
}

func TestTranslate_EmptyInput(t *testing.T) {
	svc := New(new(CompleterMock), newCacheStub(), time.Hour, newNoopLogger())

	_, err := svc.Translate(context.Background(), "  ", "en")
	assert.ErrorIs(t, err, ErrEmptyText)
}
