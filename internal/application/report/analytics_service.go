package report

import (
	"context"
	"time"

	"github.com/invoiceflow/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TrendDelta is a month-over-month movement for the stats cards. Value is
// the magnitude of the change; direction is carried separately.
type TrendDelta struct {
	Value      float64 `json:"value"`
	IsPositive bool    `json:"isPositive"`
}

// StatsTrends groups the three headline deltas.
type StatsTrends struct {
	InvoiceCount TrendDelta `json:"invoiceCount"`
	TotalSpend   TrendDelta `json:"totalSpend"`
	AvgValue     TrendDelta `json:"avgValue"`
}

// StatsResponse backs the dashboard headline cards for the current month.
type StatsResponse struct {
	InvoiceCount    int64       `json:"invoiceCount"`
	TotalSpend      float64     `json:"totalSpend"`
	AvgInvoiceValue float64     `json:"avgInvoiceValue"`
	Trends          StatsTrends `json:"trends"`
}

// DocumentStatsResponse compares processed document counts for the current
// and previous month. PercentChange keeps its sign.
type DocumentStatsResponse struct {
	ThisMonth     int64   `json:"thisMonth"`
	LastMonth     int64   `json:"lastMonth"`
	PercentChange float64 `json:"percentChange"`
	IsPositive    bool    `json:"isPositive"`
}

// InvoiceTrendResponse is one monthly data point of the volume/spend chart.
type InvoiceTrendResponse struct {
	Month string  `json:"month"`
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
}

type VendorSpendSum struct {
	InvoiceTotal float64 `json:"invoiceTotal"`
}

// VendorSpendResponse is one row of the top vendors ranking.
type VendorSpendResponse struct {
	VendorID   string         `json:"vendorId"`
	VendorName string         `json:"vendorName"`
	Sum        VendorSpendSum `json:"_sum"`
}

type CategorySpendSum struct {
	TotalPrice float64 `json:"totalPrice"`
}

// CategorySpendResponse is one ledger-account (Sachkonto) spend bucket.
// Sachkonto is nil for line items without an account code.
type CategorySpendResponse struct {
	Sachkonto *string          `json:"sachkonto"`
	Sum       CategorySpendSum `json:"_sum"`
}

type CashOutflowSum struct {
	Amount float64 `json:"amount"`
}

// CashOutflowResponse is one forecast window of upcoming unpaid totals.
// PaymentDate is the ISO timestamp of the window start and exists so chart
// tooltips have a stable anchor.
type CashOutflowResponse struct {
	Range       string         `json:"range"`
	Sum         CashOutflowSum `json:"_sum"`
	PaymentDate string         `json:"paymentDate"`
}

// AnalyticsService computes the dashboard aggregations on top of the
// analytics read repository.
type AnalyticsService struct {
	analyticsRepo report.InvoiceAnalyticsRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewAnalyticsService creates an analytics service using the wall clock.
func NewAnalyticsService(analyticsRepo report.InvoiceAnalyticsRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// monthWindows returns the current month window and the previous month
// window. Each window is [start, end] with end inclusive; the current
// window is open-ended.
func (s *AnalyticsService) monthWindows() (curFrom time.Time, prevFrom time.Time, prevTo time.Time) {
	now := s.now()
	curFrom = StartOfMonth(now)
	prevFrom = curFrom.AddDate(0, -1, 0)
	prevTo = curFrom.AddDate(0, 0, -1)
	return curFrom, prevFrom, prevTo
}

// GetStats returns the headline cards for the current month together with
// their month-over-month trends.
func (s *AnalyticsService) GetStats(ctx context.Context) (*StatsResponse, error) {
	curFrom, prevFrom, prevTo := s.monthWindows()

	var current, previous report.PeriodTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.analyticsRepo.PeriodTotals(gctx, curFrom, nil)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.analyticsRepo.PeriodTotals(gctx, prevFrom, &prevTo)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load period totals", zap.Error(err))
		return nil, err
	}

	curSpend := current.Sum.Abs()
	prevSpend := previous.Sum.Abs()
	curAvg := averageValue(current.Count, curSpend)
	prevAvg := averageValue(previous.Count, prevSpend)

	countChange, countPositive := PercentChange(
		decimal.NewFromInt(current.Count), decimal.NewFromInt(previous.Count))
	spendChange, spendPositive := PercentChange(curSpend, prevSpend)
	avgChange, avgPositive := PercentChange(curAvg, prevAvg)

	return &StatsResponse{
		InvoiceCount:    current.Count,
		TotalSpend:      toFloat64(curSpend),
		AvgInvoiceValue: toFloat64(curAvg),
		Trends: StatsTrends{
			InvoiceCount: TrendDelta{Value: toFloat64(countChange.Abs()), IsPositive: countPositive},
			TotalSpend:   TrendDelta{Value: toFloat64(spendChange.Abs()), IsPositive: spendPositive},
			AvgValue:     TrendDelta{Value: toFloat64(avgChange.Abs()), IsPositive: avgPositive},
		},
	}, nil
}

// GetDocumentStats returns processed document counts for the current and
// previous month with a signed percent change.
func (s *AnalyticsService) GetDocumentStats(ctx context.Context) (*DocumentStatsResponse, error) {
	curFrom, prevFrom, prevTo := s.monthWindows()

	var current, previous report.PeriodTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.analyticsRepo.PeriodTotals(gctx, curFrom, nil)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.analyticsRepo.PeriodTotals(gctx, prevFrom, &prevTo)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load document counts", zap.Error(err))
		return nil, err
	}

	change, positive := PercentChange(
		decimal.NewFromInt(current.Count), decimal.NewFromInt(previous.Count))

	return &DocumentStatsResponse{
		ThisMonth:     current.Count,
		LastMonth:     previous.Count,
		PercentChange: toFloat64(change),
		IsPositive:    positive,
	}, nil
}

// GetInvoiceTrends returns the monthly invoice volume and spend chart,
// oldest month first, capped to the most recent twelve data points.
func (s *AnalyticsService) GetInvoiceTrends(ctx context.Context) ([]InvoiceTrendResponse, error) {
	rows, err := s.analyticsRepo.DateTotals(ctx)
	if err != nil {
		s.logger.Error("failed to load date totals", zap.Error(err))
		return nil, err
	}

	trends := BucketMonthly(rows)
	resp := make([]InvoiceTrendResponse, 0, len(trends))
	for _, t := range trends {
		resp = append(resp, InvoiceTrendResponse{
			Month: t.Month,
			Count: t.Count,
			Sum:   toFloat64(t.Sum),
		})
	}
	return resp, nil
}

// GetTopVendors returns the ten vendors with the highest absolute spend.
func (s *AnalyticsService) GetTopVendors(ctx context.Context) ([]VendorSpendResponse, error) {
	rows, err := s.analyticsRepo.TopVendorSpend(ctx, 10)
	if err != nil {
		s.logger.Error("failed to load vendor spend", zap.Error(err))
		return nil, err
	}

	resp := make([]VendorSpendResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, VendorSpendResponse{
			VendorID:   row.VendorID.String(),
			VendorName: row.VendorName,
			Sum:        VendorSpendSum{InvoiceTotal: toFloat64(row.Total)},
		})
	}
	return resp, nil
}

// GetCategorySpend returns line item spend grouped by ledger account.
func (s *AnalyticsService) GetCategorySpend(ctx context.Context) ([]CategorySpendResponse, error) {
	rows, err := s.analyticsRepo.CategorySpend(ctx)
	if err != nil {
		s.logger.Error("failed to load category spend", zap.Error(err))
		return nil, err
	}

	resp := make([]CategorySpendResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, CategorySpendResponse{
			Sachkonto: row.Sachkonto,
			Sum:       CategorySpendSum{TotalPrice: toFloat64(row.Total)},
		})
	}
	return resp, nil
}

// GetCashOutflow returns the upcoming unpaid totals partitioned into the
// four fixed forecast windows. All four windows are always present, in
// order, even when empty. Unpaid invoices without a due date count toward
// the open-ended window.
func (s *AnalyticsService) GetCashOutflow(ctx context.Context) ([]CashOutflowResponse, error) {
	startOfDay := StartOfDay(s.now())

	var totals [len(OutflowRanges)]decimal.Decimal
	var undated decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range OutflowRanges {
		from, to := r.Window(startOfDay)
		g.Go(func() error {
			sum, err := s.analyticsRepo.UnpaidTotalBetween(gctx, from, to)
			if err != nil {
				return err
			}
			totals[i] = sum
			return nil
		})
	}
	g.Go(func() error {
		sum, err := s.analyticsRepo.UnpaidTotalUndated(gctx)
		if err != nil {
			return err
		}
		undated = sum
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load cash outflow", zap.Error(err))
		return nil, err
	}

	totals[len(totals)-1] = totals[len(totals)-1].Add(undated)

	resp := make([]CashOutflowResponse, 0, len(OutflowRanges))
	for i, r := range OutflowRanges {
		from, _ := r.Window(startOfDay)
		resp = append(resp, CashOutflowResponse{
			Range:       r.Name,
			Sum:         CashOutflowSum{Amount: toFloat64(totals[i])},
			PaymentDate: from.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func averageValue(count int64, sum decimal.Decimal) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(count))
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
