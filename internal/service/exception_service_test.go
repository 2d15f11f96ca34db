package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apflow/internal/domain"
	"apflow/internal/service"
	"apflow/internal/validation"
	"apflow/mocks"
)

func setupExceptionService() (service.ExceptionService, *mocks.MockExceptionRepo) {
	repo := new(mocks.MockExceptionRepo)
	return service.NewExceptionService(repo), repo
}

func TestExceptionService_CreateFromValidation_ErrorsOnly(t *testing.T) {
	svc, repo := setupExceptionService()
	invoiceID := uuid.New()

	issues := []validation.Issue{
		{Code: validation.CodeMissingRequiredField, Severity: domain.SeverityError, Message: "missing total_amount", Field: "total_amount"},
		{Code: validation.CodePONotFound, Severity: domain.SeverityWarning, Message: "PO not found"},
		{Code: validation.CodeTotalMismatch, Severity: domain.SeverityError, Message: "total off by 5.00"},
	}

	var captured []domain.ValidationException
	repo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.ValidationException")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).([]domain.ValidationException)
		}).
		Return(nil)

	err := svc.CreateFromValidation(context.Background(), invoiceID, issues)
	require.NoError(t, err)
	repo.AssertExpectations(t)

	// Warnings are not escalated into exceptions.
	require.Len(t, captured, 2)
	for _, exc := range captured {
		assert.Equal(t, invoiceID, exc.InvoiceID)
		assert.Equal(t, domain.SeverityError, exc.Severity)
		assert.Equal(t, domain.ExceptionStatusOpen, exc.Status)
		assert.NotEqual(t, uuid.Nil, exc.ID)
		assert.NotEmpty(t, exc.Details)
	}
	assert.Equal(t, string(validation.CodeMissingRequiredField), captured[0].Code)
	assert.Equal(t, string(validation.CodeTotalMismatch), captured[1].Code)
}

func TestExceptionService_CreateFromValidation_NoErrorsNoBatch(t *testing.T) {
	svc, repo := setupExceptionService()

	issues := []validation.Issue{
		{Code: validation.CodePONotFound, Severity: domain.SeverityWarning, Message: "PO not found"},
	}

	err := svc.CreateFromValidation(context.Background(), uuid.New(), issues)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestExceptionService_Resolve(t *testing.T) {
	svc, repo := setupExceptionService()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&domain.ValidationException{
		ID:     id,
		Status: domain.ExceptionStatusOpen,
	}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ValidationException")).Return(nil)

	exc, err := svc.Resolve(context.Background(), id, domain.ExceptionStatusResolved, "ap-clerk")
	require.NoError(t, err)
	repo.AssertExpectations(t)

	assert.Equal(t, domain.ExceptionStatusResolved, exc.Status)
	assert.Equal(t, "ap-clerk", exc.ResolvedBy)
	require.NotNil(t, exc.ResolvedAt)
	assert.WithinDuration(t, time.Now().UTC(), *exc.ResolvedAt, 5*time.Second)
}

func TestExceptionService_Resolve_InReviewKeepsResolutionEmpty(t *testing.T) {
	svc, repo := setupExceptionService()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&domain.ValidationException{
		ID:     id,
		Status: domain.ExceptionStatusOpen,
	}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ValidationException")).Return(nil)

	exc, err := svc.Resolve(context.Background(), id, domain.ExceptionStatusInReview, "ap-clerk")
	require.NoError(t, err)

	assert.Equal(t, domain.ExceptionStatusInReview, exc.Status)
	assert.Empty(t, exc.ResolvedBy)
	assert.Nil(t, exc.ResolvedAt)
}

func TestExceptionService_Resolve_ClosedExceptionRejected(t *testing.T) {
	svc, repo := setupExceptionService()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&domain.ValidationException{
		ID:     id,
		Status: domain.ExceptionStatusDismissed,
	}, nil)

	_, err := svc.Resolve(context.Background(), id, domain.ExceptionStatusResolved, "ap-clerk")
	assert.ErrorIs(t, err, domain.ErrExceptionClosed)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
