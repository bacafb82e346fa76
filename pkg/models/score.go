package models

// ScoreLevel is the four-level severity tier of a risk score.
type ScoreLevel string

const (
	LevelCritical ScoreLevel = "critical"
	LevelHigh     ScoreLevel = "high"
	LevelMedium   ScoreLevel = "medium"
	LevelLow      ScoreLevel = "low"
)

// FactorScore is one evaluated factor in a score breakdown. Value is the raw
// input the sub-score was derived from, kept so an analyst can audit the
// result.
type FactorScore struct {
	Factor string  `json:"factor"`
	Value  any     `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Score is a 0-100 weighted risk value with its tier and full factor
// breakdown. Factors appear in evaluation order; WeightsUsed is the weight map
// actually applied, including weights for factors that were skipped.
type Score struct {
	Score       int                `json:"score"`
	Level       ScoreLevel         `json:"level"`
	Factors     []FactorScore      `json:"factors"`
	WeightsUsed map[string]float64 `json:"weights_used,omitempty"`
}
