package mocks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockCacher is a mock implementation of the cache interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockCacher struct {
	GetFunc          func(ctx context.Context, key string, dest any) error
	SetFunc          func(ctx context.Context, key string, value any, expiration time.Duration) error
	DeletePrefixFunc func(ctx context.Context, prefix string) (int, error)
	CloseFunc        func() error
}

// Get implements the cache interface. Without GetFunc every lookup misses.
func (m *MockCacher) Get(ctx context.Context, key string, dest any) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return redis.Nil
}

// Set implements the cache interface
func (m *MockCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

// DeletePrefix implements the cache interface
func (m *MockCacher) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, prefix)
	}
	return 0, nil
}

// Close implements the cache interface
func (m *MockCacher) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
