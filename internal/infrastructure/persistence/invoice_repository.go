package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create persists a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// List returns one page of invoices matching the filter together with the
// total match count, newest invoice date first.
func (r *GormInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*billing.Invoice
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order("invoice_date DESC NULLS LAST").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	return query
}

// UpdateTotal back-patches the invoice total after children are ingested
func (r *GormInvoiceRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("id = ?", id).
		Update("invoice_total", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateLineItem persists a line item
func (r *GormInvoiceRepository) CreateLineItem(ctx context.Context, item *billing.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// CreateSummary persists an invoice summary
func (r *GormInvoiceRepository) CreateSummary(ctx context.Context, summary *billing.InvoiceSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// CreatePayment persists a payment
func (r *GormInvoiceRepository) CreatePayment(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
