// Package matching scores catalog items against extracted requirements.
// Everything here is a pure function of its inputs: no I/O, no clock, no
// randomness. Identical inputs always produce identical MatchResults,
// including tie-break order.
package matching

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"proposal-engine/internal/models"
)

const (
	// maxCandidates is how many ranked candidates a MatchResult keeps.
	maxCandidates = 3

	// epsilon guards the closeness denominator when the requested value is 0.
	epsilon = 1e-5
)

type paramKind int

const (
	kindText paramKind = iota
	kindNumber
	kindRange
)

// paramValue is the tagged form of a raw requirement value, parsed once at
// scoring time.
type paramValue struct {
	kind     paramKind
	num      float64
	min, max float64
	text     string
}

func parseValue(raw string) paramValue {
	trimmed := strings.TrimSpace(raw)

	if min, max, ok := parseRange(trimmed); ok {
		return paramValue{kind: kindRange, min: min, max: max, text: trimmed}
	}
	if num, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(num, 0) && !math.IsNaN(num) {
		return paramValue{kind: kindNumber, num: num, text: trimmed}
	}
	return paramValue{kind: kindText, text: trimmed}
}

// parseRange recognizes "<min>-<max>". The separator must sit after the first
// character so negative numbers like "-5" stay plain numbers.
func parseRange(s string) (float64, float64, bool) {
	if len(s) < 3 {
		return 0, 0, false
	}
	idx := strings.Index(s[1:], "-")
	if idx < 0 {
		return 0, 0, false
	}
	idx++ // offset for the skipped first character

	min, err1 := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
	max, err2 := strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
	if err1 != nil || err2 != nil || min > max {
		return 0, 0, false
	}
	return min, max, true
}

// scoreParam computes the [0,1] score of one catalog spec value against one
// requirement parameter value.
//
// Range rule: inside the interval scores 1, outside decays linearly with the
// shortest distance to the interval over the range width (width 1 for a
// degenerate interval). Numeric rule: linear closeness relative to the
// requested magnitude. Otherwise: trimmed case-insensitive equality.
func scoreParam(reqVal paramValue, catRaw string) float64 {
	catTrimmed := strings.TrimSpace(catRaw)

	switch reqVal.kind {
	case kindRange:
		v, err := strconv.ParseFloat(catTrimmed, 64)
		if err != nil {
			return categoricalScore(reqVal.text, catTrimmed)
		}
		if v >= reqVal.min && v <= reqVal.max {
			return 1
		}
		width := reqVal.max - reqVal.min
		if width == 0 {
			width = 1
		}
		var distance float64
		if v < reqVal.min {
			distance = reqVal.min - v
		} else {
			distance = v - reqVal.max
		}
		return math.Max(0, 1-distance/width)

	case kindNumber:
		v, err := strconv.ParseFloat(catTrimmed, 64)
		if err != nil {
			return categoricalScore(reqVal.text, catTrimmed)
		}
		return math.Max(0, 1-math.Abs(v-reqVal.num)/(math.Abs(reqVal.num)+epsilon))

	default:
		return categoricalScore(reqVal.text, catTrimmed)
	}
}

func categoricalScore(reqVal, catVal string) float64 {
	if strings.EqualFold(reqVal, catVal) {
		return 1
	}
	return 0
}

// ScoreItem computes the percentage match of one catalog item against one
// requirement, with the per-parameter breakdown. Parameters with empty values
// do not count; a missing spec key on the item scores 0 for that parameter.
func ScoreItem(req models.Requirement, item models.CatalogItem) (float64, map[string]float64) {
	breakdown := make(map[string]float64)

	paramCount := 0
	sum := 0.0
	for _, p := range req.Params {
		if strings.TrimSpace(p.Value) == "" {
			continue
		}
		paramCount++

		catRaw, ok := item.Specs[p.Name]
		if !ok {
			breakdown[p.Name] = 0
			continue
		}
		s := scoreParam(parseValue(p.Value), catRaw)
		breakdown[p.Name] = s
		sum += s
	}

	if paramCount == 0 {
		return 0, breakdown
	}
	return sum / float64(paramCount) * 100, breakdown
}

// MatchOne ranks the whole catalog against a single requirement. The sort is
// stable, so score ties preserve catalog input order.
func MatchOne(req models.Requirement, catalog []models.CatalogItem) models.MatchResult {
	result := models.MatchResult{
		ItemID:       req.ItemID,
		RequestedQty: req.Quantity,
	}

	if len(catalog) == 0 {
		result.IsMTO = true
		return result
	}

	candidates := make([]models.ScoredCandidate, 0, len(catalog))
	for _, item := range catalog {
		score, breakdown := ScoreItem(req, item)
		candidates = append(candidates, models.ScoredCandidate{
			Item:      item,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	result.Candidates = candidates
	result.SelectedID = candidates[0].Item.ID
	result.IsMTO = candidates[0].Item.StockQty < req.Quantity
	return result
}

// Match runs MatchOne for every requirement, in input order.
func Match(requirements []models.Requirement, catalog []models.CatalogItem) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, MatchOne(req, catalog))
	}
	return results
}

// AverageTopScore is the mean of every requirement's top match score, 0 when
// there are no requirements. Requirements with no selected candidate
// contribute 0.
func AverageTopScore(results []models.MatchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.TopScore()
	}
	return sum / float64(len(results))
}
