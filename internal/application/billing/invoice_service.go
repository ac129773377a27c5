package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceListItem is one invoice row in a listing response. The vendor name
// is resolved in batch so the frontend does not need a second lookup.
type InvoiceListItem struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	VendorID      uuid.UUID       `json:"vendorId"`
	VendorName    string          `json:"vendorName,omitempty"`
	CustomerID    uuid.UUID       `json:"customerId"`
	CustomerName  string          `json:"customerName,omitempty"`
	InvoiceDate   *time.Time      `json:"invoiceDate"`
	DeliveryDate  *time.Time      `json:"deliveryDate"`
	InvoiceTotal  decimal.Decimal `json:"invoiceTotal"`
	Status        string          `json:"status"`
	DocumentID    *string         `json:"documentId,omitempty"`
}

// InvoiceService provides read access to ingested invoices
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	vendorRepo   partner.VendorRepository
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	vendorRepo partner.VendorRepository,
	customerRepo partner.CustomerRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		vendorRepo:   vendorRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// ListInvoices returns one page of invoices matching the filter together with
// the total match count
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]InvoiceListItem, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	names, err := s.resolveVendorNames(ctx, invoices)
	if err != nil {
		// Listing still works without the display names
		s.logger.Warn("Failed to resolve vendor names for invoice list", zap.Error(err))
		names = map[uuid.UUID]string{}
	}

	items := make([]InvoiceListItem, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, InvoiceListItem{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			VendorID:      inv.VendorID,
			VendorName:    names[inv.VendorID],
			CustomerID:    inv.CustomerID,
			InvoiceDate:   inv.InvoiceDate,
			DeliveryDate:  inv.DeliveryDate,
			InvoiceTotal:  inv.InvoiceTotal,
			Status:        inv.Status,
			DocumentID:    inv.DocumentID,
		})
	}

	return items, total, nil
}

// GetInvoice returns a single invoice by ID. The detail view resolves both
// party names; a failed name lookup leaves the field empty rather than
// failing the request.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceListItem, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item := InvoiceListItem{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		VendorID:      inv.VendorID,
		CustomerID:    inv.CustomerID,
		InvoiceDate:   inv.InvoiceDate,
		DeliveryDate:  inv.DeliveryDate,
		InvoiceTotal:  inv.InvoiceTotal,
		Status:        inv.Status,
		DocumentID:    inv.DocumentID,
	}

	if vendor, err := s.vendorRepo.FindByID(ctx, inv.VendorID); err == nil {
		item.VendorName = vendor.Name
	}
	if customer, err := s.customerRepo.FindByID(ctx, inv.CustomerID); err == nil {
		item.CustomerName = customer.Name
	}

	return &item, nil
}

func (s *InvoiceService) resolveVendorNames(ctx context.Context, invoices []*billing.Invoice) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(invoices))
	ids := make([]uuid.UUID, 0, len(invoices))
	for _, inv := range invoices {
		if _, ok := seen[inv.VendorID]; ok {
			continue
		}
		seen[inv.VendorID] = struct{}{}
		ids = append(ids, inv.VendorID)
	}
	return s.vendorRepo.FindNamesByIDs(ctx, ids)
}
