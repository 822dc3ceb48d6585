// internal/workers/proposal/generate-proposal/models.go
package generateproposal

import "proposal-engine/internal/models"

type Input struct {
	RequestID string `json:"requestId"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	DueDate   string `json:"dueDate,omitempty"` // RFC 3339
	Currency  string `json:"currency,omitempty"`
}

// Output carries the generated proposal back into the process instance.
type Output struct {
	ProposalID     string                `json:"proposalId"`
	WinProbability int                   `json:"winProbability"`
	GrandTotal     float64               `json:"grandTotal"`
	Currency       string                `json:"currency"`
	RiskLevel      models.RiskLevel      `json:"riskLevel"`
	Compliance     models.ComplianceStatus `json:"compliance"`
	Summary        string                `json:"summary"`
}
