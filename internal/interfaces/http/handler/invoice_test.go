package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/invoiceflow/backend/internal/application/billing"
	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/partner"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
	"github.com/invoiceflow/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoiceRepo struct {
	invoices  []*billing.Invoice
	total     int64
	gotFilter billing.InvoiceFilter
}

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice *billing.Invoice) error { return nil }

func (s *stubInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubInvoiceRepo) List(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	s.gotFilter = filter
	return s.invoices, s.total, nil
}

func (s *stubInvoiceRepo) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return nil
}

func (s *stubInvoiceRepo) CreateLineItem(ctx context.Context, item *billing.LineItem) error {
	return nil
}

func (s *stubInvoiceRepo) CreateSummary(ctx context.Context, summary *billing.InvoiceSummary) error {
	return nil
}

func (s *stubInvoiceRepo) CreatePayment(ctx context.Context, payment *billing.Payment) error {
	return nil
}

type stubVendorRepo struct {
	names map[uuid.UUID]string
}

func (s *stubVendorRepo) FindByName(ctx context.Context, name string) (*partner.Vendor, error) {
	return nil, shared.ErrNotFound
}

func (s *stubVendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	name, ok := s.names[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	v, _ := partner.NewVendor(name)
	v.ID = id
	return v, nil
}

func (s *stubVendorRepo) FindNamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.names, nil
}

func (s *stubVendorRepo) Create(ctx context.Context, vendor *partner.Vendor) error { return nil }

type stubCustomerRepo struct {
	names map[uuid.UUID]string
}

func (s *stubCustomerRepo) FindByName(ctx context.Context, name string) (*partner.Customer, error) {
	return nil, shared.ErrNotFound
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	name, ok := s.names[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c, _ := partner.NewCustomer(name)
	c.ID = id
	return c, nil
}

func (s *stubCustomerRepo) Create(ctx context.Context, customer *partner.Customer) error {
	return nil
}

func newInvoiceTestRouter(repo *stubInvoiceRepo, vendors *stubVendorRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	svc := billingapp.NewInvoiceService(repo, vendors, &stubCustomerRepo{}, zap.NewNop())
	h := NewInvoiceHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func TestInvoiceHandlerListInvoices(t *testing.T) {
	vendorID := uuid.New()
	inv, err := billing.NewInvoice("INV-001", vendorID, uuid.New())
	require.NoError(t, err)

	repo := &stubInvoiceRepo{invoices: []*billing.Invoice{inv}, total: 25}
	vendors := &stubVendorRepo{names: map[uuid.UUID]string{vendorID: "Acme GmbH"}}
	r := newInvoiceTestRouter(repo, vendors)

	t.Run("defaults applied", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, repo.gotFilter.Page)
		assert.Equal(t, 10, repo.gotFilter.PageSize)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(25), resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("filters forwarded", func(t *testing.T) {
		w := httptest.NewRecorder()
		url := "/api/v1/invoices?search=INV&status=processed&dateFrom=2025-01-01&dateTo=2025-06-30&vendorId=" + vendorID.String() + "&page=2&pageSize=20"
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "INV", repo.gotFilter.Search)
		assert.Equal(t, "processed", repo.gotFilter.Status)
		assert.Equal(t, 2, repo.gotFilter.Page)
		assert.Equal(t, 20, repo.gotFilter.PageSize)
		require.NotNil(t, repo.gotFilter.DateFrom)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *repo.gotFilter.DateFrom)
		require.NotNil(t, repo.gotFilter.VendorID)
		assert.Equal(t, vendorID, *repo.gotFilter.VendorID)
	})

	t.Run("oversized pageSize rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices?pageSize=500", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "pageSize", resp.Error.Details[0].Field)
	})

	t.Run("invalid vendorId rejected with field detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices?vendorId=not-a-uuid", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "vendorId")
	})

	t.Run("invalid dateFrom rejected with field detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices?dateFrom=yesterday", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "dateFrom")
	})
}

func TestInvoiceHandlerGetInvoice(t *testing.T) {
	vendorID := uuid.New()
	inv, err := billing.NewInvoice("INV-042", vendorID, uuid.New())
	require.NoError(t, err)

	repo := &stubInvoiceRepo{invoices: []*billing.Invoice{inv}}
	vendors := &stubVendorRepo{names: map[uuid.UUID]string{vendorID: "Acme GmbH"}}
	r := newInvoiceTestRouter(repo, vendors)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices/"+inv.ID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "INV-042")
		assert.Contains(t, w.Body.String(), "Acme GmbH")
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices/"+uuid.NewString(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices/abc", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
