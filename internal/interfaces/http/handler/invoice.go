package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	billingapp "github.com/invoiceflow/backend/internal/application/billing"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
	"github.com/invoiceflow/backend/internal/interfaces/http/middleware"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// InvoiceHandler handles invoice listing endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// InvoiceListRequest defines the query parameters for invoice listing.
// Field names match the frontend query contract, hence camelCase.
type InvoiceListRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	DateFrom   string `form:"dateFrom"`
	DateTo     string `form:"dateTo"`
	VendorID   string `form:"vendorId" binding:"omitempty,uuid"`
	CustomerID string `form:"customerId" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// ListInvoices returns one page of invoices matching the query filters
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req InvoiceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	filter, details := h.parseFilter(req)
	if len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	items, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetInvoice returns a single invoice by ID
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// parseFilter converts the bound query into a domain filter. Date and UUID
// parse failures are collected as field details rather than failing one by one.
func (h *InvoiceHandler) parseFilter(req InvoiceListRequest) (billing.InvoiceFilter, []dto.ValidationDetail) {
	var details []dto.ValidationDetail

	filter := billing.InvoiceFilter{
		Search:   req.Search,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page == 0 {
		filter.Page = defaultPage
	}
	if filter.PageSize == 0 {
		filter.PageSize = defaultPageSize
	}

	if req.DateFrom != "" {
		t, err := parseDateParam(req.DateFrom)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: "dateFrom", Message: "Invalid date format"})
		} else {
			filter.DateFrom = &t
		}
	}
	if req.DateTo != "" {
		t, err := parseDateParam(req.DateTo)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: "dateTo", Message: "Invalid date format"})
		} else {
			filter.DateTo = &t
		}
	}

	if req.VendorID != "" {
		id, err := uuid.Parse(req.VendorID)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: "vendorId", Message: "Invalid UUID format"})
		} else {
			filter.VendorID = &id
		}
	}
	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: "customerId", Message: "Invalid UUID format"})
		} else {
			filter.CustomerID = &id
		}
	}

	return filter, details
}

// parseDateParam accepts both date-only and full RFC3339 timestamps
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// RegisterRoutes registers the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
	}
}
