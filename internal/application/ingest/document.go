package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field is one extracted value in the source documents. Every leaf and block
// the extraction pipeline emits is wrapped in a {"value": ...} object, with
// the wrapper itself optional.
type Field[T any] struct {
	Value T `json:"value"`
}

// Text is a string that also accepts a bare JSON number. Ledger codes such
// as Sachkonto appear both quoted and unquoted in the source data.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// ExtractionRecord is one source document of the ingestion batch.
type ExtractionRecord struct {
	ID            string         `json:"_id"`
	Status        string         `json:"status"`
	ExtractedData *ExtractedData `json:"extractedData"`
}

type ExtractedData struct {
	LLMData *LLMData `json:"llmData"`
}

// LLMData carries the six extracted entity blocks. Any block may be absent.
type LLMData struct {
	Vendor    *Field[VendorBlock]    `json:"vendor"`
	Customer  *Field[CustomerBlock]  `json:"customer"`
	Invoice   *Field[InvoiceBlock]   `json:"invoice"`
	LineItems *Field[LineItemsBlock] `json:"lineItems"`
	Summary   *Field[SummaryBlock]   `json:"summary"`
	Payment   *Field[PaymentBlock]   `json:"payment"`
}

type VendorBlock struct {
	VendorName        *Field[string] `json:"vendorName"`
	VendorTaxID       *Field[string] `json:"vendorTaxId"`
	VendorAddress     *Field[string] `json:"vendorAddress"`
	VendorPartyNumber *Field[string] `json:"vendorPartyNumber"`
}

type CustomerBlock struct {
	CustomerName    *Field[string] `json:"customerName"`
	CustomerAddress *Field[string] `json:"customerAddress"`
}

type InvoiceBlock struct {
	InvoiceID    *Field[string] `json:"invoiceId"`
	InvoiceDate  *Field[string] `json:"invoiceDate"`
	DeliveryDate *Field[string] `json:"deliveryDate"`
}

type LineItemsBlock struct {
	Items *Field[[]LineItemEntry] `json:"items"`
}

type LineItemEntry struct {
	SrNo         *Field[int]             `json:"srNo"`
	Description  *Field[string]          `json:"description"`
	Quantity     *Field[decimal.Decimal] `json:"quantity"`
	UnitPrice    *Field[decimal.Decimal] `json:"unitPrice"`
	TotalPrice   *Field[decimal.Decimal] `json:"totalPrice"`
	Sachkonto    *Field[Text]            `json:"Sachkonto"`
	BUSchluessel *Field[Text]            `json:"BUSchluessel"`
}

type SummaryBlock struct {
	SubTotal       *Field[decimal.Decimal]  `json:"subTotal"`
	TotalTax       *Field[decimal.Decimal]  `json:"totalTax"`
	InvoiceTotal   *Field[*decimal.Decimal] `json:"invoiceTotal"`
	CurrencySymbol *Field[string]           `json:"currencySymbol"`
}

type PaymentBlock struct {
	DueDate           *Field[string]           `json:"dueDate"`
	Amount            *Field[*decimal.Decimal] `json:"amount"`
	BankAccountNumber *Field[string]           `json:"bankAccountNumber"`
	BIC               *Field[string]           `json:"BIC"`
	PaymentTerms      *Field[string]           `json:"paymentTerms"`
}

// llmData walks to the payload block, tolerating absent ancestors.
func (r *ExtractionRecord) llmData() *LLMData {
	if r == nil || r.ExtractedData == nil {
		return nil
	}
	return r.ExtractedData.LLMData
}

func stringValue[T ~string](f *Field[T]) string {
	if f == nil {
		return ""
	}
	return string(f.Value)
}

// stringPtr maps empty or absent fields to nil for nullable columns.
func stringPtr[T ~string](f *Field[T]) *string {
	s := stringValue(f)
	if s == "" {
		return nil
	}
	return &s
}

func decimalValue(f *Field[decimal.Decimal]) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return f.Value
}

func intValue(f *Field[int]) int {
	if f == nil {
		return 0
	}
	return f.Value
}

// dateValue parses an extracted date string. ISO timestamps and bare dates
// both occur; anything unparseable is treated as absent.
func dateValue(f *Field[string]) *time.Time {
	s := strings.TrimSpace(stringValue(f))
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
