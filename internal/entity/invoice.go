package entity

// LineItem is a single row of an invoice. No arithmetic relationship between
// UnitPrice, Quantity and Total is enforced.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
}

// Vendor is the issuing party of an invoice.
type Vendor struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
}

// Invoice holds the invoice header, money fields and line items.
// Dates are YYYY-MM-DD strings.
type Invoice struct {
	Number     string     `json:"number"`
	Date       string     `json:"date"`
	Currency   string     `json:"currency,omitempty"`
	Subtotal   *float64   `json:"subtotal,omitempty"`
	TaxPercent *float64   `json:"taxPercent,omitempty"`
	Total      *float64   `json:"total,omitempty"`
	PONumber   string     `json:"poNumber,omitempty"`
	PODate     string     `json:"poDate,omitempty"`
	LineItems  []LineItem `json:"lineItems"`
}

// ExtractedFields is the normalized output of an extraction provider.
type ExtractedFields struct {
	Vendor  Vendor  `json:"vendor"`
	Invoice Invoice `json:"invoice"`
}

// InvoiceDocument is the persisted invoice record.
type InvoiceDocument struct {
	ID        string  `json:"_id"`
	FileID    string  `json:"fileId"`
	FileName  string  `json:"fileName"`
	Vendor    Vendor  `json:"vendor"`
	Invoice   Invoice `json:"invoice"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
