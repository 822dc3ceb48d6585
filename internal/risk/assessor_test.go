package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"proposal-engine/internal/models"
)

// ==========================
// 1. Test Helpers
// ==========================

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func result(isMTO bool, topScore float64) models.MatchResult {
	return models.MatchResult{
		ItemID:     "item-1",
		SelectedID: "CAT-001",
		IsMTO:      isMTO,
		Candidates: []models.ScoredCandidate{
			{Item: models.CatalogItem{ID: "CAT-001"}, Score: topScore},
		},
	}
}

// ==========================
// 2. Score Accumulation
// ==========================

func TestAssess_Factors(t *testing.T) {
	tests := []struct {
		name      string
		results   []models.MatchResult
		dueDate   time.Time
		wantScore float64
		wantLevel models.RiskLevel
	}{
		{
			name:      "baseline only",
			results:   []models.MatchResult{result(false, 95)},
			dueDate:   now.AddDate(0, 1, 0),
			wantScore: 20,
			wantLevel: models.RiskLow,
		},
		{
			name:      "made to order",
			results:   []models.MatchResult{result(true, 95)},
			dueDate:   now.AddDate(0, 1, 0),
			wantScore: 50,
			wantLevel: models.RiskMedium,
		},
		{
			name:      "urgent deadline",
			results:   []models.MatchResult{result(false, 95)},
			dueDate:   now.Add(3 * 24 * time.Hour),
			wantScore: 35,
			wantLevel: models.RiskLow,
		},
		{
			name:      "low confidence match",
			results:   []models.MatchResult{result(false, 60)},
			dueDate:   now.AddDate(0, 1, 0),
			wantScore: 35,
			wantLevel: models.RiskLow,
		},
		{
			name:      "everything at once",
			results:   []models.MatchResult{result(true, 60)},
			dueDate:   now.Add(2 * 24 * time.Hour),
			wantScore: 80,
			wantLevel: models.RiskHigh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(tt.results, tt.dueDate, now, DefaultThresholds)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestAssess_PenaltiesApplyOncePerCategory(t *testing.T) {
	// Three MTO lines still add the penalty a single time.
	results := []models.MatchResult{result(true, 95), result(true, 95), result(true, 95)}

	got := Assess(results, now.AddDate(0, 1, 0), now, DefaultThresholds)
	assert.InDelta(t, 50.0, got.Score, 1e-9)
	assert.Len(t, got.Factors, 1)
	assert.Contains(t, got.Factors[0], "3 of 3")
}

func TestAssess_ZeroDueDateSkipsUrgency(t *testing.T) {
	got := Assess([]models.MatchResult{result(false, 95)}, time.Time{}, now, DefaultThresholds)
	assert.InDelta(t, 20.0, got.Score, 1e-9)
}

func TestAssess_ConfidenceThresholdIsExclusive(t *testing.T) {
	// Exactly at the threshold is not low confidence.
	got := Assess([]models.MatchResult{result(false, 80)}, now.AddDate(0, 1, 0), now, DefaultThresholds)
	assert.InDelta(t, 20.0, got.Score, 1e-9)
}

// ==========================
// 3. Levels and Mitigation
// ==========================

func TestLevelBoundaries(t *testing.T) {
	assert.Equal(t, models.RiskLow, levelFor(40))
	assert.Equal(t, models.RiskMedium, levelFor(41))
	assert.Equal(t, models.RiskMedium, levelFor(70))
	assert.Equal(t, models.RiskHigh, levelFor(71))
}

func TestMitigation_HighRiskTightensTerms(t *testing.T) {
	high := Assess([]models.MatchResult{result(true, 60)}, now.Add(24*time.Hour), now, DefaultThresholds)
	assert.Equal(t, models.RiskHigh, high.Level)
	assert.Contains(t, high.Mitigation, "advance payment")

	low := Assess([]models.MatchResult{result(false, 95)}, now.AddDate(0, 1, 0), now, DefaultThresholds)
	assert.Contains(t, low.Mitigation, "standard commercial terms")
}
