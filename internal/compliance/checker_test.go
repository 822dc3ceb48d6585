package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"proposal-engine/internal/models"
)

// ==========================
// 1. Pass / Conditional
// ==========================

func TestCheck_AllStandardsReferenced(t *testing.T) {
	text := "Supplier shall hold ISO 9001 certification, provide type test reports and a 24 month warranty."

	got := Check(text, DefaultChecklist, 12)

	assert.Equal(t, models.CompliancePass, got.Status)
	assert.Empty(t, got.Missing)
	assert.Equal(t, 12, got.TermsEvaluated)
	assert.Contains(t, got.Rationale, "All checklist standards")
}

func TestCheck_MissingStandardsListed(t *testing.T) {
	text := "Supplier shall provide type test certificates with each delivery."

	got := Check(text, DefaultChecklist, 12)

	assert.Equal(t, models.ComplianceConditional, got.Status)
	assert.Equal(t, []string{
		"ISO 9001 quality management system",
		"Warranty terms",
	}, got.Missing)
	assert.Contains(t, got.Rationale, "2 of 3")
}

func TestCheck_EmptyTextMissesEverything(t *testing.T) {
	got := Check("", DefaultChecklist, 12)

	assert.Equal(t, models.ComplianceConditional, got.Status)
	assert.Len(t, got.Missing, len(DefaultChecklist))
}

// ==========================
// 2. Term Matching
// ==========================

func TestCheck_TermMatchingIsCaseInsensitive(t *testing.T) {
	text := "ISO9001 QUALITY SYSTEM, TYPE-TEST RECORDS AND A GUARANTEE PERIOD APPLY."

	got := Check(text, DefaultChecklist, 12)
	assert.Equal(t, models.CompliancePass, got.Status)
}

func TestCheck_AnyTermSatisfiesTheEntry(t *testing.T) {
	checklist := []ChecklistEntry{
		{Standard: "Warranty terms", Terms: []string{"warranty", "guarantee"}},
	}

	got := Check("a two year guarantee is included", checklist, 1)
	assert.Equal(t, models.CompliancePass, got.Status)
}

func TestCheck_EmptyChecklistPasses(t *testing.T) {
	got := Check("anything", nil, 0)
	assert.Equal(t, models.CompliancePass, got.Status)
	assert.Equal(t, 0, got.TermsEvaluated)
}
