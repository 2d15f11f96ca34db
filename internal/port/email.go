package port

import "context"

// EmailSender delivers outbound notification email.
type EmailSender interface {
	// SendReportDigest sends the weekly validation digest with a link to the
	// full report artifact.
	SendReportDigest(ctx context.Context, toEmail, subject, htmlBody, textBody string) error
}
