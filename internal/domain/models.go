package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vendor is a supplier the organization buys from.
type Vendor struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	TaxID            string           `db:"tax_id" json:"tax_id"`
	Currency         string           `db:"currency" json:"currency"`
	Status           VendorStatus     `db:"status" json:"status"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	CreditLimit      *decimal.Decimal `db:"credit_limit" json:"credit_limit"`
	PaymentTermsDays int              `db:"payment_terms_days" json:"payment_terms_days"`
	ContactEmail     string           `db:"contact_email" json:"contact_email"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// PurchaseOrder is a pre-approved commitment to buy, referenced by invoices
// for 2-way/3-way matching.
type PurchaseOrder struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Number      string          `db:"po_number" json:"po_number"`
	VendorID    uuid.UUID       `db:"vendor_id" json:"vendor_id"`
	VendorName  string          `db:"vendor_name" json:"vendor_name"`
	Status      POStatus        `db:"status" json:"status"`
	Currency    string          `db:"currency" json:"currency"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate   time.Time       `db:"order_date" json:"order_date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	Lines []PurchaseOrderLine `db:"-" json:"lines,omitempty"`
}

// PurchaseOrderLine is one ordered item on a PO.
type PurchaseOrderLine struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	POID        uuid.UUID       `db:"po_id" json:"po_id"`
	LineNumber  int             `db:"line_number" json:"line_number"`
	SKU         string          `db:"sku" json:"sku"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
}

// GoodsReceiptNote records physically received goods against a PO.
type GoodsReceiptNote struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Number     string    `db:"grn_number" json:"grn_number"`
	PONumber   string    `db:"po_number" json:"po_number"`
	Status     GRNStatus `db:"status" json:"status"`
	ReceivedAt time.Time `db:"received_at" json:"received_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	Lines []GoodsReceiptLine `db:"-" json:"lines,omitempty"`
}

// GoodsReceiptLine is one received item on a GRN.
type GoodsReceiptLine struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	GRNID            uuid.UUID       `db:"grn_id" json:"grn_id"`
	LineNumber       int             `db:"line_number" json:"line_number"`
	SKU              string          `db:"sku" json:"sku"`
	Description      string          `db:"description" json:"description"`
	QuantityReceived decimal.Decimal `db:"quantity_received" json:"quantity_received"`
}

// Invoice is an ingested invoice together with its extraction payload and
// the serialized outcome of its last validation run.
type Invoice struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	VendorID          *uuid.UUID       `db:"vendor_id" json:"vendor_id"`
	VendorName        string           `db:"vendor_name" json:"vendor_name"`
	InvoiceNumber     string           `db:"invoice_number" json:"invoice_number"`
	PONumber          string           `db:"po_number" json:"po_number"`
	Currency          string           `db:"currency" json:"currency"`
	TotalAmount       decimal.Decimal  `db:"total_amount" json:"total_amount"`
	InvoiceDate       *time.Time       `db:"invoice_date" json:"invoice_date"`
	DueDate           *time.Time       `db:"due_date" json:"due_date"`
	Status            InvoiceStatus    `db:"status" json:"status"`
	ExtractionData    json.RawMessage  `db:"extraction_data" json:"extraction_data"`
	ValidationResults json.RawMessage  `db:"validation_results" json:"validation_results"`
	ConfidenceScore   *float64         `db:"confidence_score" json:"confidence_score"`
	ValidatedAt       *time.Time       `db:"validated_at" json:"validated_at"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// ValidationException is a tracked follow-up item created when an invoice
// fails validation with error-severity issues.
type ValidationException struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	InvoiceID  uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Code       string          `db:"code" json:"code"`
	Severity   Severity        `db:"severity" json:"severity"`
	Status     ExceptionStatus `db:"status" json:"status"`
	Message    string          `db:"message" json:"message"`
	Details    json.RawMessage `db:"details" json:"details"`
	ResolvedBy string          `db:"resolved_by" json:"resolved_by"`
	ResolvedAt *time.Time      `db:"resolved_at" json:"resolved_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// WeeklyStats aggregates validation outcomes for one ISO week.
type WeeklyStats struct {
	WeekStart       time.Time       `db:"week_start" json:"week_start"`
	InvoicesTotal   int             `db:"invoices_total" json:"invoices_total"`
	Validated       int             `db:"validated" json:"validated"`
	Failed          int             `db:"failed" json:"failed"`
	Pending         int             `db:"pending" json:"pending"`
	AmountTotal     decimal.Decimal `db:"amount_total" json:"amount_total"`
	AvgConfidence   float64         `db:"avg_confidence" json:"avg_confidence"`
	OpenExceptions  int             `db:"open_exceptions" json:"open_exceptions"`
}

// VendorFailureStat counts failed validations per vendor inside a window.
type VendorFailureStat struct {
	VendorName string `db:"vendor_name" json:"vendor_name"`
	Failures   int    `db:"failures" json:"failures"`
}
