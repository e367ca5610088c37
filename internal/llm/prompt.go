package llm

import (
	"strings"
)

// invoiceShape is the JSON layout providers are asked to fill.
const invoiceShape = `{
  "vendor": {
    "name": "string (company/vendor name)",
    "address": "string (full address, optional)",
    "taxId": "string (tax ID or VAT number, optional)"
  },
  "invoice": {
    "number": "string (invoice number)",
    "date": "string (YYYY-MM-DD format)",
    "currency": "string (USD, EUR, etc., default USD)",
    "subtotal": "number (amount before tax)",
    "taxPercent": "number (tax percentage)",
    "total": "number (final total amount)",
    "poNumber": "string (purchase order number, optional)",
    "poDate": "string (purchase order date, YYYY-MM-DD format, optional)",
    "lineItems": [
      {
        "description": "string (item/service description)",
        "unitPrice": "number (price per unit)",
        "quantity": "number (quantity)",
        "total": "number (line total)"
      }
    ]
  }
}`

// BuildInvoicePrompt returns the fixed instruction sent with every PDF.
func BuildInvoicePrompt() string {
	parts := []string{
		"You are an expert at extracting invoice data from PDFs. Analyze this PDF invoice and extract the following information in JSON format.",
		"Be precise and accurate. If any field is not found, use null or empty string.",
		"",
		"Extract the following data structure:",
		invoiceShape,
		"",
		"IMPORTANT: Return ONLY the JSON object, no additional text, explanations, or formatting.",
		"Make sure all numbers are actual numbers, not strings.",
	}
	return strings.Join(parts, "\n")
}
