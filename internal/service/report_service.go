package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"apflow/internal/config"
	"apflow/internal/domain"
	"apflow/internal/export"
	"apflow/internal/port"
)

// WeeklyReportOutput describes a generated and distributed weekly report.
type WeeklyReportOutput struct {
	Stats       *domain.WeeklyStats        `json:"stats"`
	TopVendors  []domain.VendorFailureStat `json:"top_failing_vendors"`
	ObjectKey   string                     `json:"object_key"`
	DownloadURL string                     `json:"download_url"`
	SentTo      []string                   `json:"sent_to"`
}

// ReportService aggregates validation outcomes and distributes the weekly
// digest: stats are rendered into an XLSX workbook, uploaded to object
// storage, and a presigned link is emailed to the configured recipients.
type ReportService interface {
	WeeklyStats(ctx context.Context, weekStart time.Time) (*domain.WeeklyStats, []domain.VendorFailureStat, error)
	GenerateWeeklyReport(ctx context.Context, weekStart time.Time) (*WeeklyReportOutput, error)
}

type reportService struct {
	stats   port.StatsRepository
	storage port.ObjectStorage
	email   port.EmailSender
	s3cfg   config.S3Config
	cfg     config.ReportConfig
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	stats port.StatsRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	s3cfg config.S3Config,
	cfg config.ReportConfig,
) ReportService {
	return &reportService{stats: stats, storage: storage, email: email, s3cfg: s3cfg, cfg: cfg}
}

func (s *reportService) WeeklyStats(ctx context.Context, weekStart time.Time) (*domain.WeeklyStats, []domain.VendorFailureStat, error) {
	weekStart = truncateToWeek(weekStart)
	stats, err := s.stats.WeeklyStats(ctx, weekStart)
	if err != nil {
		return nil, nil, err
	}
	vendors, err := s.stats.TopFailingVendors(ctx, weekStart, s.cfg.TopVendors)
	if err != nil {
		return nil, nil, err
	}
	return stats, vendors, nil
}

func (s *reportService) GenerateWeeklyReport(ctx context.Context, weekStart time.Time) (*WeeklyReportOutput, error) {
	stats, vendors, err := s.WeeklyStats(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("reportService.GenerateWeeklyReport: %w", err)
	}

	workbook, err := export.WeeklyWorkbook(stats, vendors)
	if err != nil {
		return nil, fmt.Errorf("reportService.GenerateWeeklyReport: %w", err)
	}

	key := fmt.Sprintf("reports/weekly/%s.xlsx", stats.WeekStart.Format("2006-01-02"))
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        workbook,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}); err != nil {
		return nil, fmt.Errorf("reportService.GenerateWeeklyReport upload: %w", err)
	}

	expiry := time.Duration(s.cfg.PresignExpiry) * time.Second
	url, err := s.storage.PresignDownload(ctx, s.s3cfg.Bucket, key, expiry)
	if err != nil {
		return nil, fmt.Errorf("reportService.GenerateWeeklyReport presign: %w", err)
	}

	out := &WeeklyReportOutput{
		Stats:       stats,
		TopVendors:  vendors,
		ObjectKey:   key,
		DownloadURL: url,
	}

	subject := fmt.Sprintf("Invoice validation report, week of %s", stats.WeekStart.Format("Jan 2, 2006"))
	htmlBody, textBody := digestBodies(stats, url)
	for _, recipient := range s.cfg.Recipients {
		if err := s.email.SendReportDigest(ctx, recipient, subject, htmlBody, textBody); err != nil {
			// Partial delivery is acceptable; the report itself is stored.
			log.Printf("reportService.GenerateWeeklyReport: send to %s failed: %v", recipient, err)
			continue
		}
		out.SentTo = append(out.SentTo, recipient)
	}

	log.Printf("reportService.GenerateWeeklyReport: report %s stored, digest sent to %d/%d recipient(s)",
		key, len(out.SentTo), len(s.cfg.Recipients))
	return out, nil
}

func digestBodies(stats *domain.WeeklyStats, url string) (html, text string) {
	html = fmt.Sprintf(
		`<p>Weekly invoice validation summary for the week of %s:</p>
<ul>
<li>Invoices received: %d</li>
<li>Validated: %d</li>
<li>Failed validation: %d</li>
<li>Open exceptions: %d</li>
<li>Average confidence: %.2f</li>
</ul>
<p><a href="%s">Download the full report</a> (link expires in 7 days).</p>`,
		stats.WeekStart.Format("January 2, 2006"),
		stats.InvoicesTotal, stats.Validated, stats.Failed, stats.OpenExceptions, stats.AvgConfidence, url)

	text = fmt.Sprintf(
		"Weekly invoice validation summary for the week of %s\n\n"+
			"Invoices received: %d\nValidated: %d\nFailed validation: %d\n"+
			"Open exceptions: %d\nAverage confidence: %.2f\n\nFull report: %s\n",
		stats.WeekStart.Format("January 2, 2006"),
		stats.InvoicesTotal, stats.Validated, stats.Failed, stats.OpenExceptions, stats.AvgConfidence, url)
	return html, text
}

// truncateToWeek snaps a timestamp to the preceding Monday, UTC midnight.
func truncateToWeek(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
