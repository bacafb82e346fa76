package models

import "time"

// ActorScore attaches a score breakdown to the actor it was computed for.
type ActorScore struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
	Score     Score  `json:"score"`
}

// AnalysisReport is the envelope one analysis run emits to the output writers.
type AnalysisReport struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Summary         Summary          `json:"summary"`
	Patterns        []TaggedPattern  `json:"patterns"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	ActorScores     []ActorScore     `json:"actor_scores,omitempty"`
}
