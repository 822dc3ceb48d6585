// Package strategy fuses matcher, pricer, risk and compliance signals into a
// win-probability estimate and a simulated competitive snapshot.
package strategy

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"proposal-engine/internal/matching"
	"proposal-engine/internal/models"
	"proposal-engine/internal/pricing"
)

// VarianceSource yields the competitor-simulation variance factor. Injectable
// so synthesizer output is reproducible in tests; production seeds from the
// clock.
type VarianceSource interface {
	Factor(min, max float64) float64
}

// randSource draws uniformly from [min, max).
type randSource struct {
	rng *rand.Rand
}

func NewSeededSource(seed int64) VarianceSource {
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

func NewClockSource() VarianceSource {
	return NewSeededSource(time.Now().UnixNano())
}

func (s *randSource) Factor(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

// FixedSource always returns the same factor; for tests.
type FixedSource float64

func (f FixedSource) Factor(_, _ float64) float64 { return float64(f) }

// Weights are the win-probability blend. They should sum to 1.
type Weights struct {
	Tech       float64
	Price      float64
	Risk       float64
	Compliance float64
}

var DefaultWeights = Weights{Tech: 0.35, Price: 0.45, Risk: 0.10, Compliance: 0.10}

// Band bounds the competitor simulation: variance factor range applied to our
// grand total, and the spread of the simulated market high/low around the
// average.
type Band struct {
	VarianceMin float64
	VarianceMax float64
	Spread      float64
}

var DefaultBand = Band{VarianceMin: -0.05, VarianceMax: 0.15, Spread: 0.15}

// Synthesizer holds the strategy parameters and the variance source.
type Synthesizer struct {
	weights  Weights
	band     Band
	variance VarianceSource
}

func New(weights Weights, band Band, variance VarianceSource) *Synthesizer {
	return &Synthesizer{weights: weights, band: band, variance: variance}
}

// Inputs are the completed Phase-2 results the synthesizer joins on.
type Inputs struct {
	Request    models.RFPRequest
	Matches    []models.MatchResult
	Bill       *pricing.BillOfMaterials
	Risk       models.RiskAssessment
	Compliance models.ComplianceResult
}

// Synthesize builds the final proposal bundle. The bundle is constructed once
// and never mutated afterwards.
func (s *Synthesizer) Synthesize(proposalID string, in Inputs) *models.ProposalBundle {
	snapshot := s.simulateCompetitors(in.Bill.Costs.GrandTotal)
	priceScore := priceScoreFor(snapshot.Position)
	techScore := matching.AverageTopScore(in.Matches)

	complianceScore := 50.0
	if in.Compliance.Status == models.CompliancePass {
		complianceScore = 100
	}

	raw := techScore*s.weights.Tech +
		priceScore*s.weights.Price +
		(100-in.Risk.Score)*s.weights.Risk +
		complianceScore*s.weights.Compliance
	winProbability := clamp(int(math.Round(raw)), 1, 99)

	return &models.ProposalBundle{
		ProposalID:     proposalID,
		RequestID:      in.Request.ID,
		GeneratedAt:    time.Now().UTC(),
		Lines:          in.Bill.Lines,
		Costs:          in.Bill.Costs,
		Risk:           in.Risk,
		Compliance:     in.Compliance,
		Competitors:    snapshot,
		WinProbability: winProbability,
		Summary:        summarize(snapshot.Position, winProbability, techScore, in.Risk.Level),
	}
}

func (s *Synthesizer) simulateCompetitors(ourTotal float64) models.CompetitorSnapshot {
	factor := s.variance.Factor(s.band.VarianceMin, s.band.VarianceMax)
	avg := ourTotal * (1 + factor)
	high := avg * (1 + s.band.Spread)
	low := avg * (1 - s.band.Spread)

	position := models.PositionCompetitive
	switch {
	case ourTotal < low:
		position = models.PositionLowCost
	case ourTotal > high:
		position = models.PositionPremium
	}

	return models.CompetitorSnapshot{
		OurTotal:   ourTotal,
		MarketAvg:  avg,
		MarketHigh: high,
		MarketLow:  low,
		Position:   position,
	}
}

func priceScoreFor(position models.PricePosition) float64 {
	switch position {
	case models.PositionLowCost:
		return 100
	case models.PositionPremium:
		return 40
	default:
		return 75
	}
}

func summarize(position models.PricePosition, winProbability int, techScore float64, riskLevel models.RiskLevel) string {
	alignment := "strong"
	switch {
	case techScore <= 50:
		alignment = "weak"
	case techScore <= 80:
		alignment = "moderate"
	}

	return fmt.Sprintf(
		"Positioned as the %s offer with an estimated %d%% win probability. Technical alignment with the stated requirements is %s; overall delivery risk is %s.",
		position, winProbability, alignment, strings.ToLower(string(riskLevel)),
	)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
