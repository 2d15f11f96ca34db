package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"apflow/internal/validation"
)

// MockExceptionTracker is a mock implementation of validation.ExceptionTracker.
type MockExceptionTracker struct {
	mock.Mock
}

func (m *MockExceptionTracker) CreateFromValidation(ctx context.Context, invoiceID uuid.UUID, issues []validation.Issue) error {
	args := m.Called(ctx, invoiceID, issues)
	return args.Error(0)
}
