package models

import "time"

// PatternType tags a detected pattern variant.
type PatternType string

const (
	PatternActorSector     PatternType = "actor_sector"
	PatternActorTechnique  PatternType = "actor_technique"
	PatternTemporalCluster PatternType = "temporal_cluster"
	PatternGeographic      PatternType = "geographic"
	PatternCampaign        PatternType = "campaign"
	PatternAnomaly         PatternType = "anomaly"
)

// AllPatternTypes lists every detector output type.
func AllPatternTypes() []PatternType {
	return []PatternType{
		PatternActorSector,
		PatternActorTechnique,
		PatternTemporalCluster,
		PatternGeographic,
		PatternCampaign,
		PatternAnomaly,
	}
}

// Pattern is a derived intelligence signal. Each variant is a concrete struct;
// consumers type-switch on the value for the variant-specific fields.
type Pattern interface {
	Kind() PatternType
	Strength() float64
	Describe() string
}

// ActorSectorPattern reports an actor repeatedly hitting one sector.
type ActorSectorPattern struct {
	ActorID     string  `json:"actor_id"`
	ActorName   string  `json:"actor_name,omitempty"`
	Sector      string  `json:"sector"`
	Occurrences int     `json:"occurrences"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

func (p ActorSectorPattern) Kind() PatternType { return PatternActorSector }
func (p ActorSectorPattern) Strength() float64 { return p.Confidence }
func (p ActorSectorPattern) Describe() string  { return p.Description }

// ActorTechniquePattern reports a technique an actor keeps reusing.
type ActorTechniquePattern struct {
	ActorID     string  `json:"actor_id"`
	ActorName   string  `json:"actor_name,omitempty"`
	Technique   string  `json:"technique"`
	Occurrences int     `json:"occurrences"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

func (p ActorTechniquePattern) Kind() PatternType { return PatternActorTechnique }
func (p ActorTechniquePattern) Strength() float64 { return p.Confidence }
func (p ActorTechniquePattern) Describe() string  { return p.Description }

// TemporalClusterPattern reports a burst of incidents inside one window.
type TemporalClusterPattern struct {
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	IncidentCount int       `json:"incident_count"`
	ActorIDs      []string  `json:"actor_ids,omitempty"`
	Confidence    float64   `json:"confidence"`
	Description   string    `json:"description"`
}

func (p TemporalClusterPattern) Kind() PatternType { return PatternTemporalCluster }
func (p TemporalClusterPattern) Strength() float64 { return p.Confidence }
func (p TemporalClusterPattern) Describe() string  { return p.Description }

// GeographicPattern reports concentrated targeting of one country.
type GeographicPattern struct {
	Country       string   `json:"country"`
	IncidentCount int      `json:"incident_count"`
	ActorIDs      []string `json:"actor_ids,omitempty"`
	Confidence    float64  `json:"confidence"`
	Description   string   `json:"description"`
}

func (p GeographicPattern) Kind() PatternType { return PatternGeographic }
func (p GeographicPattern) Strength() float64 { return p.Confidence }
func (p GeographicPattern) Describe() string  { return p.Description }

// CampaignPattern reports a chain of incidents attributed to one actor where
// consecutive incidents are close together in time.
type CampaignPattern struct {
	ActorID       string    `json:"actor_id"`
	ActorName     string    `json:"actor_name,omitempty"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	IncidentCount int       `json:"incident_count"`
	IncidentIDs   []string  `json:"incident_ids,omitempty"`
	Confidence    float64   `json:"confidence"`
	Description   string    `json:"description"`
}

func (p CampaignPattern) Kind() PatternType { return PatternCampaign }
func (p CampaignPattern) Strength() float64 { return p.Confidence }
func (p CampaignPattern) Describe() string  { return p.Description }

// AnomalyDirection marks whether a flagged day is above or below baseline.
type AnomalyDirection string

const (
	AnomalySpike AnomalyDirection = "spike"
	AnomalyDrop  AnomalyDirection = "drop"
)

// AnomalyPattern flags a day whose incident count deviates from the baseline.
type AnomalyPattern struct {
	Day           time.Time        `json:"day"`
	IncidentCount int              `json:"incident_count"`
	BaselineMean  float64          `json:"baseline_mean"`
	BaselineStdev float64          `json:"baseline_stdev"`
	ZScore        float64          `json:"z_score"`
	Direction     AnomalyDirection `json:"direction"`
	Confidence    float64          `json:"confidence"`
	Description   string           `json:"description"`
}

func (p AnomalyPattern) Kind() PatternType { return PatternAnomaly }
func (p AnomalyPattern) Strength() float64 { return p.Confidence }
func (p AnomalyPattern) Describe() string  { return p.Description }

// TaggedPattern is the serialized form of a Pattern: a type tag plus the
// variant payload, so JSONL consumers can dispatch without reflection.
type TaggedPattern struct {
	Type    PatternType `json:"type"`
	Pattern Pattern     `json:"pattern"`
}

// TagPatterns wraps patterns in their serialization envelopes.
func TagPatterns(patterns []Pattern) []TaggedPattern {
	out := make([]TaggedPattern, 0, len(patterns))
	for _, p := range patterns {
		if p == nil {
			continue
		}
		out = append(out, TaggedPattern{Type: p.Kind(), Pattern: p})
	}
	return out
}

// Summary describes one analysis run.
type Summary struct {
	TotalIncidents int                 `json:"total_incidents"`
	WindowDays     int                 `json:"window_days"`
	PatternCount   int                 `json:"pattern_count"`
	ByType         map[PatternType]int `json:"by_type,omitempty"`
}

// Recommendation is a prioritized action item derived from detected patterns.
type Recommendation struct {
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Actions  []string `json:"actions,omitempty"`
}
