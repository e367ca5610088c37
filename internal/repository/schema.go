package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const invoiceSchemaURL = "invoice.schema.json"

// invoiceSchema returns the JSON Schema (draft 2020-12 subset) every stored
// invoice document must satisfy.
func invoiceSchema() map[string]any {
	date := map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
	number := map[string]any{"type": "number"}
	required := map[string]any{"type": "string", "minLength": 1, "pattern": `\S`}

	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": required,
			"unitPrice":   number,
			"quantity":    number,
			"total":       number,
		},
		"required": []string{"description", "unitPrice", "quantity", "total"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fileId":   required,
			"fileName": required,
			"vendor": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    required,
					"address": map[string]any{"type": "string"},
					"taxId":   map[string]any{"type": "string"},
				},
				"required": []string{"name"},
			},
			"invoice": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number":     required,
					"date":       date,
					"currency":   map[string]any{"type": "string"},
					"subtotal":   number,
					"taxPercent": number,
					"total":      number,
					"poNumber":   map[string]any{"type": "string"},
					"poDate":     map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
					"lineItems":  map[string]any{"type": "array", "items": lineItem},
				},
				"required": []string{"number", "date"},
			},
			"createdAt": map[string]any{"type": "string"},
			"updatedAt": map[string]any{"type": "string"},
		},
		"required": []string{"fileId", "fileName", "vendor", "invoice", "createdAt"},
	}
}

// documentValidator validates generic JSON values against the invoice schema.
type documentValidator struct {
	schema *jsonschema.Schema
}

func newDocumentValidator() (*documentValidator, error) {
	b, err := json.Marshal(invoiceSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(invoiceSchemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(invoiceSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &documentValidator{schema: schema}, nil
}

// Validate expects v to be the result of json.Unmarshal into an any.
func (d *documentValidator) Validate(v any) error {
	if err := d.schema.Validate(v); err != nil {
		return errors.New(describeValidation(err))
	}
	return nil
}

// describeValidation flattens a schema error into "location: message" pairs.
func describeValidation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := strings.TrimPrefix(e.InstanceLocation, "/")
			loc = strings.ReplaceAll(loc, "/", ".")
			if loc == "" {
				loc = "document"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}

// toJSONValue round-trips v through encoding/json so the validator sees
// only maps, slices, strings, float64, bools and nil.
func toJSONValue(v any) (any, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, nil, err
	}
	return out, b, nil
}
