// internal/models/proposal.go
package models

import "time"

// ManualSourcingModel is the sentinel model name for lines where no catalog
// item matched and procurement has to source manually.
const ManualSourcingModel = "MANUAL SOURCING REQUIRED"

// PricingLine is one priced row of the bill of materials.
type PricingLine struct {
	ItemID       string  `json:"itemId"`
	ModelName    string  `json:"modelName"`
	UnitPrice    float64 `json:"unitPrice"`
	Quantity     int     `json:"quantity"`
	ProductTotal float64 `json:"productTotal"`
	TestCost     float64 `json:"testCost"`
	LineTotal    float64 `json:"lineTotal"`
	LeadTimeNote string  `json:"leadTimeNote"`
}

// CostBreakdown aggregates the bill of materials into a grand total.
// Currency is display-only and never branches the arithmetic.
type CostBreakdown struct {
	Subtotal    float64 `json:"subtotal"`
	Logistics   float64 `json:"logistics"`
	Contingency float64 `json:"contingency"`
	Taxes       float64 `json:"taxes"`
	GrandTotal  float64 `json:"grandTotal"`
	Currency    string  `json:"currency"`
}

// RiskLevel is the coarse banding of the numeric risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskAssessment is the risk assessor's output. Higher score means riskier.
type RiskAssessment struct {
	Score      float64   `json:"score"`
	Level      RiskLevel `json:"level"`
	Factors    []string  `json:"factors"`
	Mitigation string    `json:"mitigation"`
}

// ComplianceStatus is the tri-state checklist verdict.
type ComplianceStatus string

const (
	CompliancePass        ComplianceStatus = "Pass"
	ComplianceConditional ComplianceStatus = "Conditional"
	ComplianceFail        ComplianceStatus = "Fail"
)

// ComplianceResult is the standards-checklist evaluation of the request text.
type ComplianceResult struct {
	Status         ComplianceStatus `json:"status"`
	Missing        []string         `json:"missing,omitempty"`
	TermsEvaluated int              `json:"termsEvaluated"`
	Rationale      string           `json:"rationale"`
}

// PricePosition classifies our price against the simulated market band.
type PricePosition string

const (
	PositionPremium     PricePosition = "premium"
	PositionCompetitive PricePosition = "competitive"
	PositionLowCost     PricePosition = "low-cost"
)

// CompetitorSnapshot is the simulated competitive landscape for one proposal.
type CompetitorSnapshot struct {
	OurTotal   float64       `json:"ourTotal"`
	MarketAvg  float64       `json:"marketAvg"`
	MarketHigh float64       `json:"marketHigh"`
	MarketLow  float64       `json:"marketLow"`
	Position   PricePosition `json:"position"`
}

// ProposalBundle is the pipeline's final product. Built once per run by the
// strategy synthesizer; immutable once returned.
type ProposalBundle struct {
	ProposalID     string             `json:"proposalId"`
	RequestID      string             `json:"requestId"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	Lines          []PricingLine      `json:"lines"`
	Costs          CostBreakdown      `json:"costs"`
	Risk           RiskAssessment     `json:"risk"`
	Compliance     ComplianceResult   `json:"compliance"`
	Competitors    CompetitorSnapshot `json:"competitors"`
	WinProbability int                `json:"winProbability"`
	Summary        string             `json:"summary"`
}
