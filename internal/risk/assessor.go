// Package risk aggregates supply, timeline and technical risk into a single
// score, level and mitigation recommendation.
package risk

import (
	"fmt"
	"time"

	"proposal-engine/internal/models"
)

// Thresholds parameterize the assessor. Zero value is not usable; start from
// DefaultThresholds.
type Thresholds struct {
	BaseScore           float64
	MTOPenalty          float64
	UrgencyPenalty      float64
	UrgencyDays         int
	ConfidencePenalty   float64
	ConfidenceThreshold float64
}

var DefaultThresholds = Thresholds{
	BaseScore:           20,
	MTOPenalty:          30,
	UrgencyPenalty:      15,
	UrgencyDays:         5,
	ConfidencePenalty:   15,
	ConfidenceThreshold: 80,
}

// Assess scores the supply, timeline and technical risk of fulfilling the
// request. now is passed in so assessments are reproducible.
func Assess(results []models.MatchResult, dueDate time.Time, now time.Time, th Thresholds) models.RiskAssessment {
	score := th.BaseScore
	var factors []string

	mtoCount := 0
	for _, r := range results {
		if r.IsMTO {
			mtoCount++
		}
	}
	if mtoCount > 0 {
		score += th.MTOPenalty
		factors = append(factors, fmt.Sprintf("%d of %d line items require made-to-order fulfilment", mtoCount, len(results)))
	}

	if !dueDate.IsZero() {
		daysLeft := int(dueDate.Sub(now).Hours() / 24)
		if daysLeft < th.UrgencyDays {
			score += th.UrgencyPenalty
			factors = append(factors, fmt.Sprintf("Submission due in under %d days", th.UrgencyDays))
		}
	}

	lowConfidence := 0
	for _, r := range results {
		if r.TopScore() < th.ConfidenceThreshold {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		score += th.ConfidencePenalty
		factors = append(factors, fmt.Sprintf("%d line items matched below %.0f%% confidence", lowConfidence, th.ConfidenceThreshold))
	}

	level := levelFor(score)
	return models.RiskAssessment{
		Score:      score,
		Level:      level,
		Factors:    factors,
		Mitigation: mitigationFor(level),
	}
}

func levelFor(score float64) models.RiskLevel {
	switch {
	case score > 70:
		return models.RiskHigh
	case score > 40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func mitigationFor(level models.RiskLevel) string {
	if level == models.RiskHigh {
		return "Tighten commercial terms: advance payment milestone, capped liquidated damages, and written lead-time confirmation from production before bid submission"
	}
	return "Proceed with standard commercial terms and routine delivery tracking"
}
