package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The target schemas are plain maps so they can be sent to the model as a
// structured-output constraint and compiled locally for validation.

func addressSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":       map[string]any{"type": "string"},
			"company":    map[string]any{"type": "string"},
			"street":     map[string]any{"type": "string"},
			"city":       map[string]any{"type": "string"},
			"state":      map[string]any{"type": "string"},
			"postalCode": map[string]any{"type": "string"},
			"country":    map[string]any{"type": "string"},
			"phone":      map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
}

// BuildShippingOrderSchema returns the generic shipping-order target
// schema: addresses, carrier, tracking number, line items.
func BuildShippingOrderSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"orderNumber":    map[string]any{"type": "string"},
			"orderDate":      map[string]any{"type": "string"},
			"shipFrom":       addressSchema(),
			"shipTo":         addressSchema(),
			"carrier":        map[string]any{"type": "string"},
			"shippingMethod": map[string]any{"type": "string"},
			"trackingNumber": map[string]any{"type": "string"},
			"shipDate":       map[string]any{"type": "string"},
			"deliveryDate":   map[string]any{"type": "string"},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description":   map[string]any{"type": "string"},
						"quantity":      map[string]any{"type": "number"},
						"weight":        map[string]any{"type": "string"},
						"declaredValue": map[string]any{"type": "string"},
					},
					"additionalProperties": false,
				},
			},
			"totalCost":           map[string]any{"type": "string"},
			"currency":            map[string]any{"type": "string"},
			"specialInstructions": map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
}

// BuildInvoiceSchema returns the domain-specific invoice target schema:
// localized party blocks with tax identifiers plus line items.
func BuildInvoiceSchema() map[string]any {
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"address": map[string]any{"type": "string"},
			"taxId":   map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"invoiceNumber": map[string]any{"type": "string"},
			"issueDate":     map[string]any{"type": "string"},
			"saleDate":      map[string]any{"type": "string"},
			"seller":        party,
			"buyer":         party,
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description":  map[string]any{"type": "string"},
						"quantity":     map[string]any{"type": "number"},
						"unit":         map[string]any{"type": "string"},
						"unitPriceNet": map[string]any{"type": "string"},
						"vatRate":      map[string]any{"type": "string"},
						"totalNet":     map[string]any{"type": "string"},
						"totalGross":   map[string]any{"type": "string"},
					},
					"additionalProperties": false,
				},
			},
			"totalNet":       map[string]any{"type": "string"},
			"totalVat":       map[string]any{"type": "string"},
			"totalGross":     map[string]any{"type": "string"},
			"currency":       map[string]any{"type": "string"},
			"paymentMethod":  map[string]any{"type": "string"},
			"paymentDueDate": map[string]any{"type": "string"},
			"bankAccount":    map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
}

// BuildComparisonSchema returns the comparison result schema.
func BuildComparisonSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"discrepancies": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":       map[string]any{"type": "string"},
						"order1Value": map[string]any{"type": "string"},
						"order2Value": map[string]any{"type": "string"},
						"severity":    map[string]any{"type": "string", "enum": []string{"critical", "major", "minor"}},
						"description": map[string]any{"type": "string"},
					},
					"required":             []string{"field", "severity"},
					"additionalProperties": false,
				},
			},
			"matches": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":      map[string]any{"type": "string"},
						"value":      map[string]any{"type": "string"},
						"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
					},
					"required":             []string{"field"},
					"additionalProperties": false,
				},
			},
			"analysis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"overallConfidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
					"dataQuality":       map[string]any{"type": "string", "enum": []string{"excellent", "good", "fair", "poor"}},
					"potentialIssues":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"recommendation":    map[string]any{"type": "string"},
				},
				"required":             []string{"overallConfidence", "dataQuality"},
				"additionalProperties": false,
			},
			"summary": map[string]any{"type": "string"},
		},
		"required":             []string{"discrepancies", "matches", "analysis", "summary"},
		"additionalProperties": false,
	}
}

// ValidateAgainstSchema validates data against the given schema map.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
