// Package compliance evaluates the request text against a fixed standards
// checklist.
package compliance

import (
	"fmt"
	"strings"

	"proposal-engine/internal/models"
)

// ChecklistEntry names a standard and the terms whose presence in the request
// text satisfies it.
type ChecklistEntry struct {
	Standard string
	Terms    []string
}

// DefaultChecklist covers the baseline procurement documentation expectations.
var DefaultChecklist = []ChecklistEntry{
	{Standard: "ISO 9001 quality management system", Terms: []string{"iso 9001", "iso9001", "quality management"}},
	{Standard: "Type test certificates", Terms: []string{"type test", "type-test"}},
	{Standard: "Warranty terms", Terms: []string{"warranty", "guarantee"}},
}

// Check scans the request text for each checklist entry. Nothing missing
// yields Pass; otherwise Conditional with the missing standards listed.
// termsEvaluated is a fixed reporting figure, not a computation input.
func Check(text string, checklist []ChecklistEntry, termsEvaluated int) models.ComplianceResult {
	lower := strings.ToLower(text)

	var missing []string
	for _, entry := range checklist {
		if !mentionsAny(lower, entry.Terms) {
			missing = append(missing, entry.Standard)
		}
	}

	if len(missing) == 0 {
		return models.ComplianceResult{
			Status:         models.CompliancePass,
			TermsEvaluated: termsEvaluated,
			Rationale:      "All checklist standards are referenced in the request",
		}
	}

	return models.ComplianceResult{
		Status:         models.ComplianceConditional,
		Missing:        missing,
		TermsEvaluated: termsEvaluated,
		Rationale:      fmt.Sprintf("%d of %d checklist standards are not referenced; clarification required before award", len(missing), len(checklist)),
	}
}

func mentionsAny(lowerText string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowerText, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
