package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"apflow/internal/domain"
)

// MockExceptionRepo is a mock implementation of port.ExceptionRepository.
type MockExceptionRepo struct {
	mock.Mock
}

func (m *MockExceptionRepo) CreateBatch(ctx context.Context, exceptions []domain.ValidationException) error {
	args := m.Called(ctx, exceptions)
	return args.Error(0)
}

func (m *MockExceptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationException, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationException), args.Error(1)
}

func (m *MockExceptionRepo) ListByStatus(ctx context.Context, status domain.ExceptionStatus, offset, limit int) ([]domain.ValidationException, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ValidationException), args.Int(1), args.Error(2)
}

func (m *MockExceptionRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]domain.ValidationException, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationException), args.Error(1)
}

func (m *MockExceptionRepo) Update(ctx context.Context, exc *domain.ValidationException) error {
	args := m.Called(ctx, exc)
	return args.Error(0)
}
