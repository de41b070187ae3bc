package model

import "strings"

// DocumentKind identifies which extraction vocabulary applies to a document.
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindReceipt DocumentKind = "receipt"
)

// ExtractionMeta records the provenance of one extraction call. It is purely
// informational and is never applied to a target form.
type ExtractionMeta struct {
	Mode       string   `json:"mode,omitempty"`     // text | pdf | vision | ocr
	Provider   string   `json:"provider,omitempty"` // anthropic | fake | etc
	Model      string   `json:"model,omitempty"`
	MimeType   string   `json:"mime_type,omitempty"`
	PageRange  string   `json:"page_range,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	Locale     string   `json:"locale,omitempty"`
}

// LineItem is a single extracted document line.
type LineItem struct {
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	Total       float64 `json:"total,omitempty"`
	Raw         string  `json:"raw,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// ExtractionResult is the structured output of one extraction call.
// All fields are optional; presence varies by document kind. Monetary
// amounts stay strings until numeric normalization at apply time.
type ExtractionResult struct {
	VendorName    string             `json:"vendor_name,omitempty"`
	InvoiceNumber string             `json:"invoice_number,omitempty"`
	Date          string             `json:"date,omitempty"`
	DueDate       string             `json:"due_date,omitempty"`
	Currency      string             `json:"currency,omitempty"`
	Subtotal      string             `json:"subtotal,omitempty"`
	TaxTotal      string             `json:"tax_total,omitempty"`
	TaxRate       string             `json:"tax_rate,omitempty"`
	Total         string             `json:"total,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Category      string             `json:"category,omitempty"`
	Description   string             `json:"description,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	LineItems     []LineItem         `json:"line_items,omitempty"`
	Confidence    map[string]float64 `json:"confidence,omitempty"` // field -> [0,1]
	Meta          *ExtractionMeta    `json:"meta,omitempty"`
}

// Field returns the named scalar field's raw value. Unknown names return "".
// An explicit switch keeps field access deterministic and reflection-free.
func (e *ExtractionResult) Field(name string) string {
	if e == nil {
		return ""
	}
	switch name {
	case "vendor_name":
		return e.VendorName
	case "invoice_number":
		return e.InvoiceNumber
	case "date":
		return e.Date
	case "due_date":
		return e.DueDate
	case "currency":
		return e.Currency
	case "subtotal":
		return e.Subtotal
	case "tax_total":
		return e.TaxTotal
	case "tax_rate":
		return e.TaxRate
	case "total":
		return e.Total
	case "payment_method":
		return e.PaymentMethod
	case "category":
		return e.Category
	case "description":
		return e.Description
	case "notes":
		return e.Notes
	default:
		return ""
	}
}

// Has reports whether the named field is present and non-blank.
func (e *ExtractionResult) Has(name string) bool {
	return strings.TrimSpace(e.Field(name)) != ""
}
