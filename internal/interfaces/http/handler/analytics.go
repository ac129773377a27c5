package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/invoiceflow/backend/internal/application/report"
)

// AnalyticsHandler exposes the invoice analytics endpoints backing the
// dashboard widgets. All endpoints are read-only.
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *reportapp.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *reportapp.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetStats returns headline invoice counters with month-over-month trends
func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	stats, err := h.analyticsService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetDocumentStats returns this-month vs last-month document volumes
func (h *AnalyticsHandler) GetDocumentStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDocumentStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetInvoiceTrends returns the monthly invoice volume trend
func (h *AnalyticsHandler) GetInvoiceTrends(c *gin.Context) {
	trends, err := h.analyticsService.GetInvoiceTrends(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trends)
}

// GetTopVendors returns the ten vendors with the highest total spend
func (h *AnalyticsHandler) GetTopVendors(c *gin.Context) {
	vendors, err := h.analyticsService.GetTopVendors(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vendors)
}

// GetCategorySpend returns spend grouped by ledger account
func (h *AnalyticsHandler) GetCategorySpend(c *gin.Context) {
	categories, err := h.analyticsService.GetCategorySpend(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// GetCashOutflow returns the upcoming payment forecast in four fixed windows
func (h *AnalyticsHandler) GetCashOutflow(c *gin.Context) {
	outflow, err := h.analyticsService.GetCashOutflow(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outflow)
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/document-stats", h.GetDocumentStats)
	rg.GET("/invoice-trends", h.GetInvoiceTrends)
	rg.GET("/vendors/top10", h.GetTopVendors)
	rg.GET("/category-spend", h.GetCategorySpend)
	rg.GET("/cash-outflow", h.GetCashOutflow)
}
