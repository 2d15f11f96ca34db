package domain

// Severity classifies validation findings. ERROR blocks the pass verdict,
// WARNING is a non-blocking concern, INFO is purely informational.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// MatchingType records how far PO/GRN matching got for an invoice.
type MatchingType string

const (
	MatchingNone     MatchingType = "none"
	MatchingTwoWay   MatchingType = "2_way"
	MatchingThreeWay MatchingType = "3_way"
)

// VendorStatus is the lifecycle state of a vendor record.
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "active"
	VendorStatusSuspended VendorStatus = "suspended"
	VendorStatusBlocked   VendorStatus = "blocked"
)

// InvoiceStatus is the lifecycle state of an ingested invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending_validation"
	InvoiceStatusValidated InvoiceStatus = "validated"
	InvoiceStatusFailed    InvoiceStatus = "failed_validation"
	InvoiceStatusApproved  InvoiceStatus = "approved"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// OutstandingInvoiceStatuses are the statuses that count toward a vendor's
// current spend when checking credit limits.
var OutstandingInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusValidated,
	InvoiceStatusApproved,
}

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POStatusOpen              POStatus = "open"
	POStatusPartiallyReceived POStatus = "partially_received"
	POStatusReceived          POStatus = "received"
	POStatusClosed            POStatus = "closed"
	POStatusCancelled         POStatus = "cancelled"
)

// GRNStatus is the lifecycle state of a goods receipt note.
type GRNStatus string

const (
	GRNStatusDraft     GRNStatus = "draft"
	GRNStatusPosted    GRNStatus = "posted"
	GRNStatusCancelled GRNStatus = "cancelled"
)

// ExceptionStatus is the workflow state of a validation exception.
type ExceptionStatus string

const (
	ExceptionStatusOpen      ExceptionStatus = "open"
	ExceptionStatusInReview  ExceptionStatus = "in_review"
	ExceptionStatusResolved  ExceptionStatus = "resolved"
	ExceptionStatusDismissed ExceptionStatus = "dismissed"
)

// UserRole defines the role hierarchy for API callers.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)
