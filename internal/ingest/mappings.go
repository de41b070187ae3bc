package ingest

import (
	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/normalize"
)

// BillsMapping translates invoice extractions into the bill form. The
// extraction vocabulary is form-agnostic, so invoice_number lands in
// supplier_reference and the extracted total in amount. Vendor and free-text
// notes both append to the bill's notes field under separate toggles.
func BillsMapping() *model.FieldMapping {
	return model.NewFieldMapping("bills", []model.FieldRule{
		{Key: "supplier_reference", Source: "invoice_number", Target: "supplier_reference", Label: "Invoice #"},
		{Key: "bill_date", Source: "date", Target: "bill_date", Label: "Date", Normalize: normalize.DateValue},
		{Key: "due_date", Source: "due_date", Target: "due_date", Label: "Due Date", Normalize: normalize.DateValue},
		{Key: "amount", Source: "total", Target: "amount", Label: "Total", Normalize: normalize.AmountString},
		{Key: "notes_vendor", Source: "vendor_name", Target: "notes", Label: "Vendor", Append: true, Prefix: "Vendor: "},
		{Key: "notes_text", Source: "notes", Target: "notes", Label: "Notes", Append: true},
	})
}

// InvoicesMapping translates invoice extractions into the sales invoice
// form. The extracted total lands in the form's amount field (the form turns
// it into its first line item); vendor and free-text notes append to notes
// like the bill form.
func InvoicesMapping() *model.FieldMapping {
	return model.NewFieldMapping("invoices", []model.FieldRule{
		{Key: "invoice_number", Source: "invoice_number", Target: "invoice_number", Label: "Invoice #"},
		{Key: "invoice_date", Source: "date", Target: "invoice_date", Label: "Date", Normalize: normalize.DateValue},
		{Key: "due_date", Source: "due_date", Target: "due_date", Label: "Due Date", Normalize: normalize.DateValue},
		{Key: "total", Source: "total", Target: "amount", Label: "Total", Normalize: normalize.AmountString},
		{Key: "notes_vendor", Source: "vendor_name", Target: "notes", Label: "Vendor", Append: true, Prefix: "Vendor: "},
		{Key: "notes_text", Source: "notes", Target: "notes", Label: "Notes", Append: true},
	})
}

// ExpensesMapping translates receipt extractions into the expense form.
func ExpensesMapping() *model.FieldMapping {
	return model.NewFieldMapping("expenses", []model.FieldRule{
		{Key: "date", Source: "date", Target: "date", Label: "Date", Normalize: normalize.DateValue},
		{Key: "amount", Source: "total", Target: "amount", Label: "Total", Normalize: normalize.AmountString},
		{Key: "vendor", Source: "vendor_name", Target: "vendor", Label: "Vendor"},
		{Key: "payment_method", Source: "payment_method", Target: "payment_method", Label: "Payment Method"},
		{Key: "category", Source: "category", Target: "category", Label: "Category"},
		{Key: "notes", Source: "notes", Target: "notes", Label: "Notes", Append: true},
	})
}

// MappingForProfile returns the built-in mapping for a profile key, or nil.
func MappingForProfile(profile string) *model.FieldMapping {
	switch profile {
	case "bills":
		return BillsMapping()
	case "invoices":
		return InvoicesMapping()
	case "expenses":
		return ExpensesMapping()
	default:
		return nil
	}
}
