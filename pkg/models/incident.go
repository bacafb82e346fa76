package models

import "time"

// TrendStatus describes the direction of an actor's recent activity.
type TrendStatus string

const (
	TrendEscalating TrendStatus = "ESCALATING"
	TrendStable     TrendStatus = "STABLE"
	TrendDeclining  TrendStatus = "DECLINING"
)

// Incident is one timestamped security record supplied by the input provider.
// Optional attributes stay zero-valued when the source did not provide them;
// detectors exclude such records from the counts that need the missing field.
type Incident struct {
	ID              string       `json:"id"`
	DiscoveredAt    time.Time    `json:"discovered_at"`
	ActorID         string       `json:"actor_id,omitempty"`
	Sector          string       `json:"sector,omitempty"`
	TargetCountries []string     `json:"target_countries,omitempty"`
	TTPs            []string     `json:"ttps,omitempty"`
	ThreatActor     *ThreatActor `json:"threat_actor,omitempty"`
}

// ThreatActor is an actor profile, optionally joined onto incidents by the
// input provider. Numeric fields are pointers so an absent value is
// distinguishable from zero.
type ThreatActor struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	TrendStatus      TrendStatus `json:"trend_status,omitempty"`
	IncidentVelocity *float64    `json:"incident_velocity,omitempty"`
	Incidents7d      *int        `json:"incidents_7d,omitempty"`
	TargetSectors    []string    `json:"target_sectors,omitempty"`
	TargetCountries  []string    `json:"target_countries,omitempty"`
	Sophistication   string      `json:"sophistication,omitempty"`
	ActorType        string      `json:"actor_type,omitempty"`
}

// Vulnerability is a scored vulnerability record. A non-nil KevDate means the
// vulnerability is known to be exploited in the wild.
type Vulnerability struct {
	ID              string     `json:"id"`
	CVSSScore       *float64   `json:"cvss_score,omitempty"`
	EPSSScore       *float64   `json:"epss_score,omitempty"`
	KevDate         *time.Time `json:"kev_date,omitempty"`
	ExploitMaturity string     `json:"exploit_maturity,omitempty"`
	Vendor          string     `json:"vendor,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
}

// IOC is an indicator of compromise.
type IOC struct {
	ID               string       `json:"id"`
	Value            string       `json:"value,omitempty"`
	Confidence       *float64     `json:"confidence,omitempty"`
	Source           string       `json:"source,omitempty"`
	FirstSeen        *time.Time   `json:"first_seen,omitempty"`
	CreatedAt        *time.Time   `json:"created_at,omitempty"`
	CorrelationCount *int         `json:"correlation_count,omitempty"`
	Metadata         *IOCMetadata `json:"metadata,omitempty"`
}

// IOCMetadata carries enrichment flags attached to an indicator.
type IOCMetadata struct {
	Enriched        bool   `json:"enriched,omitempty"`
	HasVulns        bool   `json:"has_vulns,omitempty"`
	ReputationLevel string `json:"reputation_level,omitempty"`
	SuspiciousTLD   bool   `json:"suspicious_tld,omitempty"`
}

// OrgProfile describes the organization a score is computed for. Relevance
// factors are evaluated only when a profile is supplied.
type OrgProfile struct {
	Sector      string   `json:"sector,omitempty"`
	Region      string   `json:"region,omitempty"`
	Country     string   `json:"country,omitempty"`
	TechVendors []string `json:"tech_vendors,omitempty"`
}
