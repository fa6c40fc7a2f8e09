package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todopro/internal/service"
)

// MockAuth is a testify mock of service.Auth.
type MockAuth struct {
	mock.Mock
}

// Login implements service.Auth.
func (m *MockAuth) Login(ctx context.Context, username, password string) (service.Credentials, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(service.Credentials), args.Error(1)
}

// Register implements service.Auth.
func (m *MockAuth) Register(ctx context.Context, username, email, password string) (service.Credentials, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(service.Credentials), args.Error(1)
}

// Verify implements service.Auth.
func (m *MockAuth) Verify(ctx context.Context, email, code string) (service.Credentials, error) {
	args := m.Called(ctx, email, code)
	return args.Get(0).(service.Credentials), args.Error(1)
}

// ResendVerification implements service.Auth.
func (m *MockAuth) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// User implements service.Auth.
func (m *MockAuth) User(ctx context.Context, token string) (service.Profile, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(service.Profile), args.Error(1)
}
