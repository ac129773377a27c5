package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/invoiceflow/backend/internal/domain/billing"
	"github.com/invoiceflow/backend/internal/domain/partner"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordState is the terminal state of one source record.
type RecordState string

const (
	// StateSkipped: a required identity field was missing; no rows written.
	StateSkipped RecordState = "skipped"
	// StateFailed: a store error occurred before the invoice shell existed;
	// at most a vendor or customer row was written.
	StateFailed RecordState = "failed"
	// StatePartial: the invoice shell exists but a later step failed. The
	// rows written so far are kept; there is no cross-step rollback.
	StatePartial RecordState = "partially-ingested"
	// StateFull: all applicable steps completed.
	StateFull RecordState = "fully-ingested"
)

// Step names, in execution order.
const (
	StepVendor    = "vendor"
	StepCustomer  = "customer"
	StepInvoice   = "invoice"
	StepLineItems = "line_items"
	StepSummary   = "summary"
	StepPayment   = "payment"
	StepTotal     = "total"
)

// StepOutcome records one executed step of a record. Steps never reached
// are absent.
type StepOutcome struct {
	Step string
	Err  error
}

// RecordResult is the observable outcome of ingesting one source record.
type RecordResult struct {
	Index      int
	State      RecordState
	SkipReason string
	Steps      []StepOutcome
	LineItems  int
}

// BatchResult summarizes one ingestion run. Partially ingested records
// count as failed.
type BatchResult struct {
	Total    int
	Ingested int
	Skipped  int
	Failed   int
	Records  []RecordResult
}

// Normalizer maps denormalized extraction documents onto the relational
// entities. Records are processed strictly sequentially: the find-or-create
// dedup on vendor and customer names has a read-then-write race without a
// unique constraint backing it.
type Normalizer struct {
	vendorRepo   partner.VendorRepository
	customerRepo partner.CustomerRepository
	invoiceRepo  billing.InvoiceRepository
	logger       *zap.Logger
}

// NewNormalizer creates an ingestion normalizer.
func NewNormalizer(
	vendorRepo partner.VendorRepository,
	customerRepo partner.CustomerRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *Normalizer {
	return &Normalizer{
		vendorRepo:   vendorRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

// Run ingests the batch. Per-record failures are logged and counted, never
// fatal; only context cancellation aborts the batch early.
func (n *Normalizer) Run(ctx context.Context, records []ExtractionRecord) (*BatchResult, error) {
	result := &BatchResult{
		Total:   len(records),
		Records: make([]RecordResult, 0, len(records)),
	}
	n.logger.Info("starting ingestion batch", zap.Int("records", len(records)))

	for i := range records {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec := n.ingestRecord(ctx, i, &records[i])
		result.Records = append(result.Records, rec)

		switch rec.State {
		case StateFull:
			result.Ingested++
		case StateSkipped:
			result.Skipped++
			n.logger.Warn("skipping record",
				zap.Int("record", i+1), zap.String("reason", rec.SkipReason))
		default:
			result.Failed++
			n.logger.Error("record ingestion failed",
				zap.Int("record", i+1),
				zap.String("state", string(rec.State)),
				zap.Error(rec.lastErr()))
		}

		if (i+1)%10 == 0 {
			n.logger.Info("ingestion progress",
				zap.Int("processed", i+1),
				zap.Int("total", len(records)),
				zap.Int("ingested", result.Ingested),
				zap.Int("failed", result.Failed))
		}
	}

	n.logger.Info("ingestion batch completed",
		zap.Int("total", result.Total),
		zap.Int("ingested", result.Ingested),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// ingestRecord runs the per-record saga. There is no transaction spanning
// the steps: a mid-record failure leaves the rows already written in place,
// and the step outcomes make that partial state observable.
func (n *Normalizer) ingestRecord(ctx context.Context, idx int, rec *ExtractionRecord) RecordResult {
	res := RecordResult{Index: idx}
	llm := rec.llmData()

	vendorName := ""
	if llm != nil && llm.Vendor != nil {
		vendorName = stringValue(llm.Vendor.Value.VendorName)
	}
	if vendorName == "" {
		res.State = StateSkipped
		res.SkipReason = "missing vendor name"
		return res
	}
	vendor, err := n.findOrCreateVendor(ctx, &llm.Vendor.Value)
	res.step(StepVendor, err)
	if err != nil {
		res.State = StateFailed
		return res
	}

	customerName := ""
	if llm.Customer != nil {
		customerName = stringValue(llm.Customer.Value.CustomerName)
	}
	if customerName == "" {
		res.State = StateSkipped
		res.SkipReason = "missing customer name"
		return res
	}
	customer, err := n.findOrCreateCustomer(ctx, &llm.Customer.Value)
	res.step(StepCustomer, err)
	if err != nil {
		res.State = StateFailed
		return res
	}

	var invoiceBlock *InvoiceBlock
	if llm.Invoice != nil {
		invoiceBlock = &llm.Invoice.Value
	}
	if invoiceBlock == nil || stringValue(invoiceBlock.InvoiceID) == "" {
		res.State = StateSkipped
		res.SkipReason = "missing invoice id"
		return res
	}
	invoice, err := n.createInvoiceShell(ctx, rec, invoiceBlock, vendor, customer)
	res.step(StepInvoice, err)
	if err != nil {
		res.State = StateFailed
		return res
	}

	lineItemsTotal, created, err := n.createLineItems(ctx, llm, invoice)
	res.LineItems = created
	res.step(StepLineItems, err)
	if err != nil {
		res.State = StatePartial
		return res
	}

	summaryTotal, err := n.createSummary(ctx, llm, invoice)
	res.step(StepSummary, err)
	if err != nil {
		res.State = StatePartial
		return res
	}

	if err := n.createPayment(ctx, llm, invoice, summaryTotal, lineItemsTotal); err != nil {
		res.step(StepPayment, err)
		res.State = StatePartial
		return res
	}
	res.step(StepPayment, nil)

	actualTotal := lineItemsTotal
	if summaryTotal != nil {
		actualTotal = *summaryTotal
	}
	err = n.invoiceRepo.UpdateTotal(ctx, invoice.ID, actualTotal)
	res.step(StepTotal, err)
	if err != nil {
		res.State = StatePartial
		return res
	}

	res.State = StateFull
	return res
}

// findOrCreateVendor looks a vendor up by exact name and creates it on first
// sighting. An existing vendor is never updated.
func (n *Normalizer) findOrCreateVendor(ctx context.Context, block *VendorBlock) (*partner.Vendor, error) {
	name := stringValue(block.VendorName)
	vendor, err := n.vendorRepo.FindByName(ctx, name)
	if err == nil {
		return vendor, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up vendor: %w", err)
	}

	vendor, err = partner.NewVendor(name)
	if err != nil {
		return nil, err
	}
	vendor.TaxID = stringPtr(block.VendorTaxID)
	vendor.Address = stringPtr(block.VendorAddress)
	vendor.PartyNumber = stringPtr(block.VendorPartyNumber)
	if err := n.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	return vendor, nil
}

func (n *Normalizer) findOrCreateCustomer(ctx context.Context, block *CustomerBlock) (*partner.Customer, error) {
	name := stringValue(block.CustomerName)
	customer, err := n.customerRepo.FindByName(ctx, name)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	customer, err = partner.NewCustomer(name)
	if err != nil {
		return nil, err
	}
	customer.Address = stringPtr(block.CustomerAddress)
	if err := n.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (n *Normalizer) createInvoiceShell(
	ctx context.Context,
	rec *ExtractionRecord,
	block *InvoiceBlock,
	vendor *partner.Vendor,
	customer *partner.Customer,
) (*billing.Invoice, error) {
	invoice, err := billing.NewInvoice(stringValue(block.InvoiceID), vendor.ID, customer.ID)
	if err != nil {
		return nil, err
	}
	invoice.InvoiceDate = dateValue(block.InvoiceDate)
	invoice.DeliveryDate = dateValue(block.DeliveryDate)
	if rec.Status != "" {
		invoice.Status = rec.Status
	}
	if rec.ID != "" {
		invoice.DocumentID = &rec.ID
	}
	if err := n.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

// createLineItems writes the nested line items and returns the running total
// of their prices together with the number of rows written.
func (n *Normalizer) createLineItems(ctx context.Context, llm *LLMData, invoice *billing.Invoice) (decimal.Decimal, int, error) {
	total := decimal.Zero
	if llm.LineItems == nil || llm.LineItems.Value.Items == nil {
		return total, 0, nil
	}

	created := 0
	for _, entry := range llm.LineItems.Value.Items.Value {
		price := decimalValue(entry.TotalPrice)
		total = total.Add(price)

		item := &billing.LineItem{
			BaseEntity:   shared.NewBaseEntity(),
			InvoiceID:    invoice.ID,
			SrNo:         intValue(entry.SrNo),
			Description:  stringPtr(entry.Description),
			Quantity:     decimalValue(entry.Quantity),
			UnitPrice:    decimalValue(entry.UnitPrice),
			TotalPrice:   price,
			Sachkonto:    stringPtr(entry.Sachkonto),
			Buschluessel: stringPtr(entry.BUSchluessel),
		}
		if err := n.invoiceRepo.CreateLineItem(ctx, item); err != nil {
			return total, created, fmt.Errorf("failed to create line item: %w", err)
		}
		created++
	}
	return total, created, nil
}

// createSummary writes the summary row when the block carries a total and
// returns that total. A summary without a total is treated as absent.
func (n *Normalizer) createSummary(ctx context.Context, llm *LLMData, invoice *billing.Invoice) (*decimal.Decimal, error) {
	if llm.Summary == nil || llm.Summary.Value.InvoiceTotal == nil || llm.Summary.Value.InvoiceTotal.Value == nil {
		return nil, nil
	}
	block := &llm.Summary.Value
	summaryTotal := *block.InvoiceTotal.Value

	summary := &billing.InvoiceSummary{
		BaseEntity:     shared.NewBaseEntity(),
		InvoiceID:      invoice.ID,
		InvoiceTotal:   summaryTotal,
		CurrencySymbol: stringPtr(block.CurrencySymbol),
	}
	if block.SubTotal != nil {
		v := block.SubTotal.Value
		summary.Subtotal = &v
	}
	if block.TotalTax != nil {
		v := block.TotalTax.Value
		summary.TotalTax = &v
	}
	if err := n.invoiceRepo.CreateSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}
	return &summaryTotal, nil
}

// createPayment writes the payment row when the block exists. The amount
// falls back from the explicit value to the summary total to the line item
// total.
func (n *Normalizer) createPayment(
	ctx context.Context,
	llm *LLMData,
	invoice *billing.Invoice,
	summaryTotal *decimal.Decimal,
	lineItemsTotal decimal.Decimal,
) error {
	if llm.Payment == nil {
		return nil
	}
	block := &llm.Payment.Value

	amount := lineItemsTotal
	switch {
	case block.Amount != nil && block.Amount.Value != nil:
		amount = *block.Amount.Value
	case summaryTotal != nil:
		amount = *summaryTotal
	}

	payment := &billing.Payment{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoice.ID,
		PaymentDate:  dateValue(block.DueDate),
		Amount:       amount,
		BankAccount:  stringPtr(block.BankAccountNumber),
		BIC:          stringPtr(block.BIC),
		PaymentTerms: stringPtr(block.PaymentTerms),
	}
	if err := n.invoiceRepo.CreatePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *RecordResult) step(name string, err error) {
	r.Steps = append(r.Steps, StepOutcome{Step: name, Err: err})
}

func (r *RecordResult) lastErr() error {
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if r.Steps[i].Err != nil {
			return r.Steps[i].Err
		}
	}
	return nil
}
