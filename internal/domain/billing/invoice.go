package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StatusPaid is the only status value with aggregation semantics: invoices in
// any other status count as unpaid for the cash-outflow forecast. Status is
// otherwise free text carried over from the extraction pipeline.
const StatusPaid = "paid"

// Invoice is the aggregate root for one ingested invoice document.
//
// InvoiceTotal is stored signed exactly as extracted; consumers that display
// or aggregate spend apply Abs uniformly. The total is back-patched once after
// line items and the summary are ingested (summary total wins when present)
// and is never recomputed afterwards.
type Invoice struct {
	shared.BaseEntity
	InvoiceNumber string          `gorm:"type:varchar(100);not null;index"`
	VendorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceDate   *time.Time      `gorm:"index"`
	DeliveryDate  *time.Time      `gorm:"index"`
	InvoiceTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        string          `gorm:"type:varchar(50);not null;default:'processed'"`
	DocumentID    *string         `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice shell with a zero total placeholder
func NewInvoice(invoiceNumber string, vendorID, customerID uuid.UUID) (*Invoice, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceNumber: invoiceNumber,
		VendorID:      vendorID,
		CustomerID:    customerID,
		InvoiceTotal:  decimal.Zero,
		Status:        "processed",
	}, nil
}

// IsPaid reports whether the invoice is settled
func (i *Invoice) IsPaid() bool {
	return i.Status == StatusPaid
}

// LineItem is a single position on an invoice. Owned exclusively by one
// invoice; many-to-one.
type LineItem struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SrNo         int       `gorm:"not null;default:0"`
	Description  *string   `gorm:"type:text"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Sachkonto    *string         `gorm:"type:varchar(50);index"`
	Buschluessel *string         `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "line_items"
}

// InvoiceSummary carries the authoritative totals block of an invoice
// document. At most one per invoice; when present its InvoiceTotal overrides
// the sum of line items.
type InvoiceSummary struct {
	shared.BaseEntity
	InvoiceID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Subtotal       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalTax       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	InvoiceTotal   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CurrencySymbol *string          `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (InvoiceSummary) TableName() string {
	return "invoice_summaries"
}

// Payment records the payment terms extracted for an invoice. PaymentDate is
// the due date. The schema allows several payments per invoice but ingestion
// writes at most one.
type Payment struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaymentDate  *time.Time `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BankAccount  *string         `gorm:"type:varchar(100)"`
	BIC          *string         `gorm:"type:varchar(20)"`
	PaymentTerms *string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// InvoiceFilter defines the filtering options for invoice listing
type InvoiceFilter struct {
	Search     string
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	VendorID   *uuid.UUID
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

// InvoiceRepository defines persistence operations for invoices and their
// owned children
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// List returns one page of invoices matching the filter, newest invoice
	// date first, together with the total match count.
	List(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)
	// UpdateTotal back-patches the invoice total after children are ingested
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error

	CreateLineItem(ctx context.Context, item *LineItem) error
	CreateSummary(ctx context.Context, summary *InvoiceSummary) error
	CreatePayment(ctx context.Context, payment *Payment) error
}
