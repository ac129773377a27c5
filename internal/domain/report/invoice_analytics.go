package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateTotalRow is one raw grouped row per distinct invoice date, as returned
// by the store. Date is nil for invoices without an invoice date; the
// aggregation engine discards those rows.
type DateTotalRow struct {
	Date  *time.Time
	Count int64
	Sum   decimal.Decimal
}

// MonthlyTrend is one bucketed trend data point, keyed by calendar month
// (YYYY-MM)
type MonthlyTrend struct {
	Month string
	Count int64
	Sum   decimal.Decimal
}

// PeriodTotals holds the invoice count and signed spend total for one
// calendar window
type PeriodTotals struct {
	Count int64
	Sum   decimal.Decimal
}

// VendorSpend is one row of the top-vendor ranking
type VendorSpend struct {
	VendorID   uuid.UUID
	VendorName string
	Total      decimal.Decimal
}

// CategorySpend is line-item spend grouped by general-ledger category code.
// Sachkonto is nil for uncategorized line items.
type CategorySpend struct {
	Sachkonto *string
	Total     decimal.Decimal
}

// InvoiceAnalyticsRepository defines the grouped/aggregated queries the
// aggregation engine consumes. Implementations return raw rows; all derived
// shaping (month bucketing, range partitioning, deltas) happens in the
// application layer.
type InvoiceAnalyticsRepository interface {
	// DateTotals returns one row per distinct invoice date with the invoice
	// count and signed total sum for that date, ordered by date ascending.
	DateTotals(ctx context.Context) ([]DateTotalRow, error)

	// PeriodTotals returns invoice count and signed total sum over invoices
	// whose invoice date falls in [from, to]. A nil to leaves the window
	// open-ended.
	PeriodTotals(ctx context.Context, from time.Time, to *time.Time) (PeriodTotals, error)

	// TopVendorSpend returns vendors ranked by absolute invoice spend,
	// descending, at most limit rows.
	TopVendorSpend(ctx context.Context, limit int) ([]VendorSpend, error)

	// CategorySpend returns line-item spend grouped by sachkonto, ungrouped
	// items under a nil key. No ordering is guaranteed.
	CategorySpend(ctx context.Context) ([]CategorySpend, error)

	// UnpaidTotalBetween sums the absolute totals of unpaid invoices whose
	// delivery date falls in [from, to].
	UnpaidTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// UnpaidTotalUndated sums the absolute totals of unpaid invoices that
	// have no delivery date.
	UnpaidTotalUndated(ctx context.Context) (decimal.Decimal, error)
}
