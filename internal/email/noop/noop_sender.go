package noop

import (
	"context"
	"log"

	"apflow/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an EmailSender that logs instead of sending.
// Used in development where SES is not configured.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendReportDigest(_ context.Context, toEmail, subject, _, textBody string) error {
	log.Printf("[NOOP EMAIL] to=%s subject=%q body=%q", toEmail, subject, textBody)
	return nil
}
