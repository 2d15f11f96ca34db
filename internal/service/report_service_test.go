package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"apflow/internal/config"
	"apflow/internal/domain"
	"apflow/internal/port"
	"apflow/internal/service"
	"apflow/mocks"
)

type reportMocks struct {
	stats   *mocks.MockStatsRepo
	storage *mocks.MockObjectStorage
	email   *mocks.MockEmailSender
}

func setupReportService(recipients []string) (service.ReportService, *reportMocks) {
	m := &reportMocks{
		stats:   new(mocks.MockStatsRepo),
		storage: new(mocks.MockObjectStorage),
		email:   new(mocks.MockEmailSender),
	}
	svc := service.NewReportService(
		m.stats, m.storage, m.email,
		config.S3Config{Bucket: "apflow-reports"},
		config.ReportConfig{Recipients: recipients, TopVendors: 5, PresignExpiry: 604800},
	)
	return svc, m
}

// 2026-08-24 is a Monday; requesting any day in that week must resolve to it.
var monday = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

func weekStats() *domain.WeeklyStats {
	return &domain.WeeklyStats{
		WeekStart:      monday,
		InvoicesTotal:  40,
		Validated:      30,
		Failed:         6,
		Pending:        4,
		AmountTotal:    decimal.NewFromInt(125000),
		AvgConfidence:  87.5,
		OpenExceptions: 9,
	}
}

func TestReportService_WeeklyStats_SnapsToMonday(t *testing.T) {
	svc, m := setupReportService(nil)

	m.stats.On("WeeklyStats", mock.Anything, monday).Return(weekStats(), nil)
	m.stats.On("TopFailingVendors", mock.Anything, monday, 5).
		Return([]domain.VendorFailureStat{{VendorName: "Acme Supplies", Failures: 3}}, nil)

	thursday := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	stats, vendors, err := svc.WeeklyStats(context.Background(), thursday)
	require.NoError(t, err)
	m.stats.AssertExpectations(t)

	assert.Equal(t, monday, stats.WeekStart)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Acme Supplies", vendors[0].VendorName)
}

func TestReportService_GenerateWeeklyReport(t *testing.T) {
	svc, m := setupReportService([]string{"ap-team@example.com", "cfo@example.com"})

	m.stats.On("WeeklyStats", mock.Anything, monday).Return(weekStats(), nil)
	m.stats.On("TopFailingVendors", mock.Anything, monday, 5).
		Return([]domain.VendorFailureStat{}, nil)

	var uploaded port.UploadInput
	m.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) {
			uploaded = args.Get(1).(port.UploadInput)
		}).
		Return(&port.UploadOutput{Location: "https://s3/apflow-reports/reports/weekly/2026-08-24.xlsx"}, nil)
	m.storage.On("PresignDownload", mock.Anything, "apflow-reports", "reports/weekly/2026-08-24.xlsx", 7*24*time.Hour).
		Return("https://signed-url", nil)
	m.email.On("SendReportDigest", mock.Anything, "ap-team@example.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.email.On("SendReportDigest", mock.Anything, "cfo@example.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := svc.GenerateWeeklyReport(context.Background(), monday)
	require.NoError(t, err)
	m.stats.AssertExpectations(t)
	m.storage.AssertExpectations(t)
	m.email.AssertExpectations(t)

	assert.Equal(t, "apflow-reports", uploaded.Bucket)
	assert.Equal(t, "reports/weekly/2026-08-24.xlsx", uploaded.Key)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", uploaded.ContentType)
	// The workbook body must be a real, non-empty XLSX stream.
	body, readErr := io.ReadAll(uploaded.Body)
	require.NoError(t, readErr)
	assert.NotEmpty(t, body)

	assert.Equal(t, "reports/weekly/2026-08-24.xlsx", out.ObjectKey)
	assert.Equal(t, "https://signed-url", out.DownloadURL)
	assert.Equal(t, []string{"ap-team@example.com", "cfo@example.com"}, out.SentTo)
}

func TestReportService_GenerateWeeklyReport_PartialDelivery(t *testing.T) {
	svc, m := setupReportService([]string{"bad@example.com", "good@example.com"})

	m.stats.On("WeeklyStats", mock.Anything, monday).Return(weekStats(), nil)
	m.stats.On("TopFailingVendors", mock.Anything, monday, 5).
		Return([]domain.VendorFailureStat{}, nil)
	m.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://s3/loc"}, nil)
	m.storage.On("PresignDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://signed-url", nil)
	m.email.On("SendReportDigest", mock.Anything, "bad@example.com", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("mailbox unavailable"))
	m.email.On("SendReportDigest", mock.Anything, "good@example.com", mock.Anything, mock.Anything, mock.Anything).
		Return(nil)

	out, err := svc.GenerateWeeklyReport(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"good@example.com"}, out.SentTo)
}

func TestReportService_GenerateWeeklyReport_UploadFailure(t *testing.T) {
	svc, m := setupReportService([]string{"ap-team@example.com"})

	m.stats.On("WeeklyStats", mock.Anything, monday).Return(weekStats(), nil)
	m.stats.On("TopFailingVendors", mock.Anything, monday, 5).
		Return([]domain.VendorFailureStat{}, nil)
	m.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, errors.New("bucket unavailable"))

	_, err := svc.GenerateWeeklyReport(context.Background(), monday)
	require.Error(t, err)
	m.email.AssertNotCalled(t, "SendReportDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
