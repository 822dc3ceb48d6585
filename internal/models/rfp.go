// internal/models/rfp.go
package models

import "time"

// RFPRequest is the raw procurement request handed to the pipeline.
type RFPRequest struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Excerpt  string    `json:"excerpt"`
	DueDate  time.Time `json:"dueDate"`
	Currency string    `json:"currency"`
}

// Param is one named technical parameter of a requirement. Requirements keep
// parameters as an ordered slice so scoring breakdowns are reproducible; the
// raw value stays a string (numeric, text, or a "min-max" range) and is parsed
// at scoring time.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Requirement is one structured line item extracted from the RFP.
// Immutable after extraction.
type Requirement struct {
	ItemID      string  `json:"itemId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	Params      []Param `json:"params"`
}

// Param returns the value for a parameter name, or "" when absent.
func (r Requirement) Param(name string) string {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// TestRequirement is one inspection/test demanded by the RFP. PerUnit tests
// cost fee*quantity, per-lot tests cost a flat fee. An empty AppliesTo list
// means the test applies to every line item.
type TestRequirement struct {
	Name      string   `json:"name"`
	Method    string   `json:"method,omitempty"`
	PerUnit   bool     `json:"perUnit"`
	AppliesTo []string `json:"appliesTo,omitempty"`
}

// AppliesToItem reports whether the test covers the given line item.
func (t TestRequirement) AppliesToItem(itemID string) bool {
	if len(t.AppliesTo) == 0 {
		return true
	}
	for _, id := range t.AppliesTo {
		if id == itemID {
			return true
		}
	}
	return false
}

// ExtractionResult is the validated output of the extraction service.
// Inferred is set when the service reports it had to infer line items from a
// thin excerpt; downstream treats that as a warning, never as a silent mode.
type ExtractionResult struct {
	Requirements []Requirement     `json:"requirements"`
	Tests        []TestRequirement `json:"tests"`
	Inferred     bool              `json:"inferred"`
}
