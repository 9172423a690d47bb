package service

import (
	"context"
	"io"
	"testing"
	"time"

	"carrental/internal/config"
	"carrental/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func newStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore(0)
	store.Seed(repository.DefaultSeed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	return store
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newCarService(t *testing.T) (*CarService, *repository.MemoryStore) {
	t.Helper()
	store := newStore(t)
	return NewCarService(store, config.CatalogConfig{}, testLogger()), store
}

func mustCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	require.NotNil(t, ctx)
	return ctx
}
