package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/invoiceflow/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// trendPoints is the number of monthly data points the trend report keeps.
// The cut is on data points, not calendar months: gaps in the data do not
// consume slots.
const trendPoints = 12

// outflowSentinel caps the open-ended forecast range. Matches the far-future
// bound used by the upstream dashboard.
var outflowSentinel = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// OutflowRange is one fixed forecast window, expressed in whole days from
// the start of today. An End of -1 marks the open-ended range.
type OutflowRange struct {
	Name  string
	Start int
	End   int
}

// OutflowRanges are the four contiguous, non-overlapping forecast windows,
// in output order. The last range additionally absorbs unpaid invoices
// without a due date.
var OutflowRanges = [4]OutflowRange{
	{Name: "0-7 days", Start: 0, End: 7},
	{Name: "8-30 days", Start: 8, End: 30},
	{Name: "31-60 days", Start: 31, End: 60},
	{Name: "60+ days", Start: 61, End: -1},
}

// Window resolves the range bounds against the given start of day
func (r OutflowRange) Window(startOfDay time.Time) (time.Time, time.Time) {
	from := startOfDay.AddDate(0, 0, r.Start)
	if r.End < 0 {
		return from, outflowSentinel
	}
	return from, startOfDay.AddDate(0, 0, r.End)
}

// MonthKey formats the calendar month of t as YYYY-MM using the date's own
// calendar fields. Deliberately not a UTC conversion: truncating an ISO
// timestamp would shift dates near month boundaries into the wrong bucket.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// BucketMonthly folds per-date rows into per-month trend buckets.
//
// Rows without a date are discarded. Counts accumulate as-is, sums
// accumulate as absolute values. The result is sorted ascending by month and
// truncated to the most recent trendPoints data points.
func BucketMonthly(rows []report.DateTotalRow) []report.MonthlyTrend {
	byMonth := make(map[string]*report.MonthlyTrend)
	for _, row := range rows {
		if row.Date == nil {
			continue
		}
		key := MonthKey(*row.Date)
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &report.MonthlyTrend{Month: key, Sum: decimal.Zero}
			byMonth[key] = bucket
		}
		bucket.Count += row.Count
		bucket.Sum = bucket.Sum.Add(row.Sum.Abs())
	}

	trends := make([]report.MonthlyTrend, 0, len(byMonth))
	for _, bucket := range byMonth {
		trends = append(trends, *bucket)
	}
	// Zero-padded YYYY-MM keys sort chronologically.
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Month < trends[j].Month
	})

	if len(trends) > trendPoints {
		trends = trends[len(trends)-trendPoints:]
	}
	return trends
}

// PercentChange computes the signed month-over-month change in percent,
// rounded to one decimal. A zero previous value yields a zero change (and
// therefore a positive trend) instead of a division by zero.
func PercentChange(current, previous decimal.Decimal) (decimal.Decimal, bool) {
	if previous.IsZero() {
		return decimal.Zero, true
	}
	change := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	return change, change.GreaterThanOrEqual(decimal.Zero)
}

// StartOfDay returns local midnight of the day containing t
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns local midnight of the first day of the month
// containing t
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
