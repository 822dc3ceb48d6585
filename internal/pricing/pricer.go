// Package pricing converts match results into a priced bill of materials.
// Pure arithmetic over its inputs: re-running on identical MatchResults and
// tests yields an identical cost breakdown.
package pricing

import (
	"fmt"

	"proposal-engine/internal/common/errors"
	"proposal-engine/internal/models"
)

// Rates are the multiplicative surcharges and per-test fees. Currency is a
// pass-through label.
type Rates struct {
	Logistics      float64
	Contingency    float64
	Tax            float64
	PerUnitTestFee float64
	PerLotTestFee  float64
	Currency       string
}

// DefaultRates mirrors the standard commercial terms.
var DefaultRates = Rates{
	Logistics:      0.05,
	Contingency:    0.03,
	Tax:            0.10,
	PerUnitTestFee: 50,
	PerLotTestFee:  500,
	Currency:       "USD",
}

// BillOfMaterials is the pricer's output: the priced lines and the
// aggregated cost breakdown.
type BillOfMaterials struct {
	Lines []models.PricingLine
	Costs models.CostBreakdown
}

// Price builds the bill of materials for a set of match results.
//
// A result without a selected candidate becomes a zero-cost line flagged for
// manual sourcing; it is never an error. An empty catalog, however, is fatal
// here: there is nothing to price against.
func Price(results []models.MatchResult, tests []models.TestRequirement, catalogSize int, rates Rates) (*BillOfMaterials, error) {
	if catalogSize == 0 {
		return nil, errors.NewCatalogEmptyError()
	}

	lines := make([]models.PricingLine, 0, len(results))
	subtotal := 0.0

	for _, result := range results {
		line := priceLine(result, tests, rates)
		subtotal += line.LineTotal
		lines = append(lines, line)
	}

	logistics := subtotal * rates.Logistics
	contingency := subtotal * rates.Contingency
	taxes := (subtotal + logistics + contingency) * rates.Tax

	return &BillOfMaterials{
		Lines: lines,
		Costs: models.CostBreakdown{
			Subtotal:    subtotal,
			Logistics:   logistics,
			Contingency: contingency,
			Taxes:       taxes,
			GrandTotal:  subtotal + logistics + contingency + taxes,
			Currency:    rates.Currency,
		},
	}, nil
}

func priceLine(result models.MatchResult, tests []models.TestRequirement, rates Rates) models.PricingLine {
	selected := result.Selected()
	if selected == nil {
		return models.PricingLine{
			ItemID:       result.ItemID,
			ModelName:    models.ManualSourcingModel,
			Quantity:     result.RequestedQty,
			LeadTimeNote: "Requires manual sourcing; lead time to be confirmed",
		}
	}

	qty := result.RequestedQty
	productTotal := selected.Item.UnitPrice * float64(qty)
	testCost := testCostFor(result.ItemID, qty, tests, rates)

	note := "Ex-stock; standard 2-3 week delivery"
	if result.IsMTO {
		note = fmt.Sprintf("Made to order (stock %d < qty %d); extended 8-12 week lead time", selected.Item.StockQty, qty)
	}

	return models.PricingLine{
		ItemID:       result.ItemID,
		ModelName:    selected.Item.ModelName,
		UnitPrice:    selected.Item.UnitPrice,
		Quantity:     qty,
		ProductTotal: productTotal,
		TestCost:     testCost,
		LineTotal:    productTotal + testCost,
		LeadTimeNote: note,
	}
}

// testCostFor accumulates fee*qty for applicable per-unit tests and a flat
// fee for applicable per-lot tests.
func testCostFor(itemID string, qty int, tests []models.TestRequirement, rates Rates) float64 {
	cost := 0.0
	for _, t := range tests {
		if !t.AppliesToItem(itemID) {
			continue
		}
		if t.PerUnit {
			cost += rates.PerUnitTestFee * float64(qty)
		} else {
			cost += rates.PerLotTestFee
		}
	}
	return cost
}
