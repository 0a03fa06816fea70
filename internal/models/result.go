package models

import "time"

// Match is one ranked reference item for an event.
type Match struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// ScoreResult is the outcome of scoring one event against the reference corpus.
// Matches are ordered by score descending; Top1Score is the first score or 0 when
// there are no matches.
type ScoreResult struct {
	EventID   string    `json:"event_id"`
	Text      string    `json:"text"`
	Matches   []Match   `json:"matches"`
	Top1Score float64   `json:"top1_score"`
	IsMatch   bool      `json:"is_match"`
	ScoredAt  time.Time `json:"scored_at"`
}

// Top1ID returns the ID of the best match, or "" when there are none.
func (r *ScoreResult) Top1ID() string {
	if len(r.Matches) == 0 {
		return ""
	}
	return r.Matches[0].ItemID
}

// MatchIDs returns the ranked item IDs.
func (r *ScoreResult) MatchIDs() []string {
	ids := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		ids[i] = m.ItemID
	}
	return ids
}

// MatchScores returns the ranked scores.
func (r *ScoreResult) MatchScores() []float64 {
	scores := make([]float64, len(r.Matches))
	for i, m := range r.Matches {
		scores[i] = m.Score
	}
	return scores
}

// Run is a completed scoring run as recorded in the history store.
type Run struct {
	ID                   string    `json:"id" db:"id"`
	StartedAt            time.Time `json:"started_at" db:"started_at"`
	FinishedAt           time.Time `json:"finished_at" db:"finished_at"`
	Reference            string    `json:"reference" db:"reference"`
	Stream               string    `json:"stream" db:"stream"`
	ReferenceFingerprint string    `json:"reference_fingerprint" db:"reference_fingerprint"`
	ReferenceRows        int       `json:"reference_rows" db:"reference_rows"`
	TopK                 int       `json:"topk" db:"topk"`
	MinScore             float64   `json:"min_score" db:"min_score"`
	Events               int       `json:"events" db:"events"`
	Matches              int       `json:"matches" db:"matches"`
	OutputPath           string    `json:"output_path" db:"output_path"`
}

// CountMatches returns how many results have IsMatch set.
func CountMatches(results []ScoreResult) int {
	n := 0
	for i := range results {
		if results[i].IsMatch {
			n++
		}
	}
	return n
}
