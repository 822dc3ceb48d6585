// internal/models/match.go
package models

// ScoredCandidate pairs a catalog item with its match score for one
// requirement. Score is in [0,100]; Breakdown maps parameter name to that
// parameter's score in [0,1].
type ScoredCandidate struct {
	Item      CatalogItem        `json:"item"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// MatchResult is the matcher's verdict for one requirement: the top-3
// candidates ranked descending, the selected (highest scoring) item, and
// whether fulfilment requires manufacturing to order.
type MatchResult struct {
	ItemID       string            `json:"itemId"`
	Candidates   []ScoredCandidate `json:"candidates"`
	SelectedID   string            `json:"selectedId,omitempty"`
	IsMTO        bool              `json:"isMTO"`
	RequestedQty int               `json:"requestedQty"`
}

// Selected returns the chosen candidate, or nil when the catalog was empty.
func (m MatchResult) Selected() *ScoredCandidate {
	if m.SelectedID == "" || len(m.Candidates) == 0 {
		return nil
	}
	return &m.Candidates[0]
}

// TopScore is the selected candidate's score, 0 when nothing matched.
func (m MatchResult) TopScore() float64 {
	if len(m.Candidates) == 0 {
		return 0
	}
	return m.Candidates[0].Score
}
