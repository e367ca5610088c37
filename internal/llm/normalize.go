package llm

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

// Normalizer turns a provider payload into the canonical shape. Normalizers
// are total: malformed input yields empty or zero fields, never an error.
type Normalizer func(raw RawPayload) entity.ExtractedFields

var (
	reISODate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reNonNumber = regexp.MustCompile(`[^0-9.\-]`)
	reFloat     = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

const defaultCurrency = "USD"

// NormalizeCoercing is the policy applied to Groq output: numeric strings are
// stripped and parsed, dates are reformatted to YYYY-MM-DD.
func NormalizeCoercing(raw RawPayload) entity.ExtractedFields {
	vendor := object(raw["vendor"])
	inv := object(raw["invoice"])

	out := entity.ExtractedFields{
		Vendor: entity.Vendor{
			Name:    str(vendor["name"]),
			Address: str(vendor["address"]),
			TaxID:   str(vendor["taxId"]),
		},
		Invoice: entity.Invoice{
			Number:     str(inv["number"]),
			Date:       toISODate(inv["date"]),
			Currency:   strOr(inv["currency"], defaultCurrency),
			Subtotal:   entity.Float(toNumber(inv["subtotal"])),
			TaxPercent: entity.Float(toNumber(inv["taxPercent"])),
			Total:      entity.Float(toNumber(inv["total"])),
			PONumber:   str(inv["poNumber"]),
			PODate:     toISODate(inv["poDate"]),
			LineItems:  []entity.LineItem{},
		},
	}
	if items, ok := inv["lineItems"].([]any); ok {
		for _, it := range items {
			m := object(it)
			out.Invoice.LineItems = append(out.Invoice.LineItems, entity.LineItem{
				Description: str(m["description"]),
				UnitPrice:   toNumber(m["unitPrice"]),
				Quantity:    toNumber(m["quantity"]),
				Total:       toNumber(m["total"]),
			})
		}
	}
	return out
}

// NormalizePassthrough is the policy applied to Gemini output: only values
// that are already numbers are kept (header totals become absent otherwise,
// line item values zero) and dates are copied unchanged.
func NormalizePassthrough(raw RawPayload) entity.ExtractedFields {
	vendor := object(raw["vendor"])
	inv := object(raw["invoice"])

	out := entity.ExtractedFields{
		Vendor: entity.Vendor{
			Name:    str(vendor["name"]),
			Address: str(vendor["address"]),
			TaxID:   str(vendor["taxId"]),
		},
		Invoice: entity.Invoice{
			Number:     str(inv["number"]),
			Date:       str(inv["date"]),
			Currency:   strOr(inv["currency"], defaultCurrency),
			Subtotal:   numberPtr(inv["subtotal"]),
			TaxPercent: numberPtr(inv["taxPercent"]),
			Total:      numberPtr(inv["total"]),
			PONumber:   str(inv["poNumber"]),
			PODate:     str(inv["poDate"]),
			LineItems:  []entity.LineItem{},
		},
	}
	if items, ok := inv["lineItems"].([]any); ok {
		for _, it := range items {
			m := object(it)
			out.Invoice.LineItems = append(out.Invoice.LineItems, entity.LineItem{
				Description: str(m["description"]),
				UnitPrice:   numberOrZero(m["unitPrice"]),
				Quantity:    numberOrZero(m["quantity"]),
				Total:       numberOrZero(m["total"]),
			})
		}
	}
	return out
}

// IsEffectivelyEmpty reports whether an extraction found nothing useful:
// no vendor name, no invoice number and no non-zero total.
func IsEffectivelyEmpty(f entity.ExtractedFields) bool {
	return f.Vendor.Name == "" &&
		f.Invoice.Number == "" &&
		(f.Invoice.Total == nil || *f.Invoice.Total == 0)
}

func object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strOr(v any, def string) string {
	if s := str(v); s != "" {
		return s
	}
	return def
}

// number reports v as a float64 when it already is a JSON number.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberPtr(v any) *float64 {
	if f, ok := number(v); ok {
		return &f
	}
	return nil
}

func numberOrZero(v any) float64 {
	f, _ := number(v)
	return f
}

// toNumber keeps numbers, parses the leading float of a string after
// dropping every character other than digits, '.' and '-', and falls back
// to zero.
func toNumber(v any) float64 {
	if f, ok := number(v); ok {
		return f
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	lead := reFloat.FindString(reNonNumber.ReplaceAllString(s, ""))
	if lead == "" {
		return 0
	}
	f, err := strconv.ParseFloat(lead, 64)
	if err != nil {
		return 0
	}
	return f
}

// dateLayouts are tried in order when a date is not already YYYY-MM-DD.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

func toISODate(v any) string {
	switch d := v.(type) {
	case string:
		if d == "" {
			return ""
		}
		if reISODate.MatchString(d) {
			return d
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.Format(time.DateOnly)
			}
		}
		return ""
	default:
		// epoch milliseconds
		if ms, ok := number(v); ok && ms != 0 {
			return time.UnixMilli(int64(ms)).UTC().Format(time.DateOnly)
		}
		return ""
	}
}
