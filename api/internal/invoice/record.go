package invoice

import (
	"bytes"
	"encoding/json"
)

// Record is the fixed invoice schema requested from the model.
// Fields never use omitempty: unknown values stay as empty strings.
type Record struct {
	Header  Header     `json:"invoice_header"`
	Details []LineItem `json:"invoice_details"`
	Totals  Totals     `json:"totals"`
}

type Header struct {
	CompanyName     string   `json:"company_name"`
	Address         string   `json:"address"`
	InvoiceNumber   string   `json:"invoice_number"`
	Date            string   `json:"date"`
	CustomerDetails Customer `json:"customer_details"`
}

type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

type LineItem struct {
	ItemNumber string `json:"item_number"`
	ItemName   string `json:"item_name"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Rate       string `json:"rate"`
	Amount     string `json:"amount"`
}

type Totals struct {
	Subtotal       string `json:"subtotal"`
	CGSTPercentage string `json:"cgst_percentage"`
	CGSTAmount     string `json:"cgst_amount"`
	SGSTPercentage string `json:"sgst_percentage"`
	SGSTAmount     string `json:"sgst_amount"`
	Total          string `json:"total"`
}

// MarshalJSON keeps invoice_details an array even when no items were read.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	p := plain(r)
	if p.Details == nil {
		p.Details = []LineItem{}
	}
	return json.Marshal(p)
}

// SchemaKeys are the top-level keys of a Record, in prompt order.
var SchemaKeys = []string{"invoice_header", "invoice_details", "totals"}

// Result is the outcome of one extraction.
type Result struct {
	Raw   string // model text as received
	Text  string // text after fence stripping
	Value any    // parsed JSON, unchanged
}

// JSON returns the validated text compacted, so keys keep the model's order.
// A Result built without Text falls back to encoding Value.
func (r Result) JSON() ([]byte, error) {
	if r.Text != "" {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(r.Text)); err == nil {
			return buf.Bytes(), nil
		}
	}
	if r.Value == nil {
		return []byte(r.Text), nil
	}
	return json.Marshal(r.Value)
}

// Record decodes the parsed value into the typed schema. Missing fields are left empty.
func (r Result) Record() (Record, error) {
	var rec Record
	b, err := r.JSON()
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// HasSchemaKeys reports whether the top-level keys are exactly SchemaKeys.
func (r Result) HasSchemaKeys() bool {
	m, ok := r.Value.(map[string]any)
	if !ok || len(m) != len(SchemaKeys) {
		return false
	}
	for _, k := range SchemaKeys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
