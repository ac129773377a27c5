package persistence

import (
	"context"
	"time"

	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceAnalyticsRepository implements InvoiceAnalyticsRepository with
// grouped SQL. Each method maps to exactly one report; derived shaping
// happens in the application layer.
type GormInvoiceAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormInvoiceAnalyticsRepository creates a new analytics repository
func NewGormInvoiceAnalyticsRepository(db *gorm.DB) *GormInvoiceAnalyticsRepository {
	return &GormInvoiceAnalyticsRepository{db: db}
}

// DateTotals returns count and signed sum per distinct invoice date,
// including the null-date group
func (r *GormInvoiceAnalyticsRepository) DateTotals(ctx context.Context) ([]report.DateTotalRow, error) {
	var rows []report.DateTotalRow
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Select("invoice_date AS date, COUNT(*) AS count, COALESCE(SUM(invoice_total), 0) AS sum").
		Group("invoice_date").
		Order("invoice_date ASC NULLS FIRST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PeriodTotals returns the invoice count and signed total over the window
func (r *GormInvoiceAnalyticsRepository) PeriodTotals(ctx context.Context, from time.Time, to *time.Time) (report.PeriodTotals, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(invoice_total), 0) AS sum").
		Where("invoice_date >= ?", from)
	if to != nil {
		query = query.Where("invoice_date <= ?", *to)
	}

	var totals report.PeriodTotals
	if err := query.Scan(&totals).Error; err != nil {
		return report.PeriodTotals{}, err
	}
	return totals, nil
}

// TopVendorSpend ranks vendors by absolute spend, descending
func (r *GormInvoiceAnalyticsRepository) TopVendorSpend(ctx context.Context, limit int) ([]report.VendorSpend, error) {
	var rows []report.VendorSpend
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("invoices.vendor_id AS vendor_id, vendors.name AS vendor_name, SUM(ABS(invoices.invoice_total)) AS total").
		Joins("JOIN vendors ON vendors.id = invoices.vendor_id").
		Group("invoices.vendor_id, vendors.name").
		Order("total DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategorySpend groups line item spend by ledger account, uncategorized
// items under the null key
func (r *GormInvoiceAnalyticsRepository) CategorySpend(ctx context.Context) ([]report.CategorySpend, error) {
	var rows []report.CategorySpend
	err := r.db.WithContext(ctx).
		Model(&billing.LineItem{}).
		Select("sachkonto, COALESCE(SUM(total_price), 0) AS total").
		Group("sachkonto").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UnpaidTotalBetween sums absolute totals of unpaid invoices due in the
// window
func (r *GormInvoiceAnalyticsRepository) UnpaidTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.unpaidTotal(r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("status <> ?", billing.StatusPaid).
		Where("delivery_date >= ? AND delivery_date <= ?", from, to))
}

// UnpaidTotalUndated sums absolute totals of unpaid invoices without a due
// date
func (r *GormInvoiceAnalyticsRepository) UnpaidTotalUndated(ctx context.Context) (decimal.Decimal, error) {
	return r.unpaidTotal(r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("status <> ?", billing.StatusPaid).
		Where("delivery_date IS NULL"))
}

func (r *GormInvoiceAnalyticsRepository) unpaidTotal(query *gorm.DB) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(ABS(invoice_total)), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
