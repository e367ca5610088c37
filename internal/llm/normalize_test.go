package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

func invoicePayload(fields map[string]any) RawPayload {
	return RawPayload{"invoice": fields}
}

func TestNormalizeCoercing_Numbers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"currency string", "$1,234.50", 1234.50},
		{"garbage", "abc", 0},
		{"null", nil, 0},
		{"number", 42.5, 42.5},
		{"negative", "-12.30 EUR", -12.30},
		{"multiple dots keeps leading float", "1.2.3", 1.2},
		{"lone minus", "-", 0},
		{"bool", true, 0},
		{"object", map[string]any{"v": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCoercing(invoicePayload(map[string]any{"total": tt.in}))
			require.NotNil(t, got.Invoice.Total)
			assert.InDelta(t, tt.want, *got.Invoice.Total, 1e-9)
		})
	}
}

func TestNormalizeCoercing_Dates(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2024-01-15", "2024-01-15"},
		{"01/15/2024", "2024-01-15"},
		{"January 15, 2024", "2024-01-15"},
		{"15 Jan 2024", "2024-01-15"},
		{"2024-01-15T10:30:00Z", "2024-01-15"},
		{"not a date", ""},
		{"", ""},
		{nil, ""},
	}
	for _, tt := range tests {
		got := NormalizeCoercing(invoicePayload(map[string]any{"date": tt.in, "poDate": tt.in}))
		assert.Equal(t, tt.want, got.Invoice.Date, "date %v", tt.in)
		assert.Equal(t, tt.want, got.Invoice.PODate, "poDate %v", tt.in)
	}
}

func TestNormalizeCoercing_Defaults(t *testing.T) {
	got := NormalizeCoercing(RawPayload{})
	assert.Equal(t, "", got.Vendor.Name)
	assert.Equal(t, "", got.Invoice.Number)
	assert.Equal(t, "USD", got.Invoice.Currency)
	assert.NotNil(t, got.Invoice.LineItems)
	assert.Empty(t, got.Invoice.LineItems)

	got = NormalizeCoercing(RawPayload{
		"vendor":  "not an object",
		"invoice": map[string]any{"currency": "", "lineItems": "nope", "number": 17},
	})
	assert.Equal(t, "USD", got.Invoice.Currency)
	assert.Empty(t, got.Invoice.LineItems)
	assert.Equal(t, "", got.Invoice.Number, "non-string values become empty strings")
}

func TestNormalizeCoercing_LineItems(t *testing.T) {
	got := NormalizeCoercing(invoicePayload(map[string]any{
		"lineItems": []any{
			map[string]any{"description": "Consulting", "unitPrice": "$150.00", "quantity": 2.0, "total": "300"},
			nil,
		},
	}))
	require.Len(t, got.Invoice.LineItems, 2)
	assert.Equal(t, entity.LineItem{Description: "Consulting", UnitPrice: 150, Quantity: 2, Total: 300}, got.Invoice.LineItems[0])
	assert.Equal(t, entity.LineItem{}, got.Invoice.LineItems[1])
}

func TestNormalizePassthrough(t *testing.T) {
	got := NormalizePassthrough(RawPayload{
		"vendor": map[string]any{"name": "Acme", "taxId": "DE123"},
		"invoice": map[string]any{
			"number":   "INV-9",
			"date":     "15/01/2024",
			"subtotal": "100",
			"total":    120.0,
			"lineItems": []any{
				map[string]any{"description": "Box", "unitPrice": "5", "quantity": 3.0, "total": 15.0},
			},
		},
	})
	assert.Equal(t, "Acme", got.Vendor.Name)
	assert.Equal(t, "DE123", got.Vendor.TaxID)
	assert.Equal(t, "15/01/2024", got.Invoice.Date, "dates are not reformatted")
	assert.Nil(t, got.Invoice.Subtotal, "non-numbers become absent")
	assert.Nil(t, got.Invoice.TaxPercent)
	require.NotNil(t, got.Invoice.Total)
	assert.InDelta(t, 120.0, *got.Invoice.Total, 1e-9)
	assert.Equal(t, entity.LineItem{Description: "Box", UnitPrice: 0, Quantity: 3, Total: 15}, got.Invoice.LineItems[0])
	assert.Equal(t, "USD", got.Invoice.Currency)
}

func TestNormalizers_Idempotent(t *testing.T) {
	inputs := []RawPayload{
		{},
		{
			"vendor": map[string]any{"name": "Acme Corp", "address": "1 Main St"},
			"invoice": map[string]any{
				"number": "INV-1", "date": "03/04/2024", "currency": "EUR",
				"subtotal": "1,000.00", "taxPercent": 19.0, "total": "$1,190",
				"poNumber": "PO-7", "poDate": "garbage",
				"lineItems": []any{map[string]any{"description": "A", "unitPrice": "10", "quantity": "2", "total": 20.0}},
			},
		},
	}
	policies := map[string]Normalizer{
		"coercing":    NormalizeCoercing,
		"passthrough": NormalizePassthrough,
	}
	for name, normalize := range policies {
		t.Run(name, func(t *testing.T) {
			for _, in := range inputs {
				once := normalize(in)
				twice := normalize(toRaw(t, once))
				assert.Equal(t, once, twice)
			}
		})
	}
}

func TestIsEffectivelyEmpty(t *testing.T) {
	zero := 0.0
	ten := 10.0
	tests := []struct {
		name string
		in   entity.ExtractedFields
		want bool
	}{
		{"all blank, total absent", entity.ExtractedFields{}, true},
		{"all blank, total zero", entity.ExtractedFields{Invoice: entity.Invoice{Total: &zero}}, true},
		{"total set", entity.ExtractedFields{Invoice: entity.Invoice{Total: &ten}}, false},
		{"vendor set", entity.ExtractedFields{Vendor: entity.Vendor{Name: "Acme"}}, false},
		{"number set", entity.ExtractedFields{Invoice: entity.Invoice{Number: "1"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEffectivelyEmpty(tt.in))
		})
	}
}

func toRaw(t *testing.T, f entity.ExtractedFields) RawPayload {
	t.Helper()
	b, err := json.Marshal(f)
	require.NoError(t, err)
	var out RawPayload
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}
