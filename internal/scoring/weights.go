package scoring

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entity kinds accepted by NewModel and the weight-override loader.
const (
	KindActor         = "actor"
	KindVulnerability = "vulnerability"
	KindIOC           = "ioc"
	KindIncident      = "incident"
)

// ErrUnknownEntityKind is returned when a model is requested for a kind the
// engine does not score. It signals a programming mistake, not bad data.
var ErrUnknownEntityKind = errors.New("unknown entity kind")

// Factor names per entity kind. Default weights sum to 100 for each kind;
// custom models renormalize after merging overrides.
const (
	FactorTrendStatus         = "trend_status"
	FactorIncidentVelocity    = "incident_velocity"
	FactorRecentActivity      = "recent_activity"
	FactorSophistication      = "sophistication"
	FactorSectorRelevance     = "sector_relevance"
	FactorGeographicRelevance = "geographic_relevance"

	FactorCVSS            = "cvss"
	FactorEPSS            = "epss"
	FactorKEV             = "kev"
	FactorExploitMaturity = "exploit_maturity"
	FactorVendorRelevance = "vendor_relevance"

	FactorSourceConfidence  = "source_confidence"
	FactorCorrelation       = "correlation"
	FactorReputation        = "reputation"
	FactorVulnerabilityLink = "vulnerability_link"
	FactorEnrichment        = "enrichment"
	FactorSuspiciousTLD     = "suspicious_tld"

	FactorActorThreat      = "actor_threat"
	FactorRecency          = "recency"
	FactorTechniqueBreadth = "technique_breadth"
	FactorGeographicSpread = "geographic_spread"
)

// Recency half-lives per entity kind, in days.
const (
	incidentHalfLifeDays      = 7
	iocHalfLifeDays           = 14
	vulnerabilityHalfLifeDays = 90
)

var defaultWeights = map[string]map[string]float64{
	KindActor: {
		FactorTrendStatus:         25,
		FactorIncidentVelocity:    20,
		FactorRecentActivity:      20,
		FactorSophistication:      10,
		FactorSectorRelevance:     15,
		FactorGeographicRelevance: 10,
	},
	KindVulnerability: {
		FactorCVSS:            30,
		FactorEPSS:            25,
		FactorKEV:             20,
		FactorExploitMaturity: 10,
		FactorRecency:         5,
		FactorVendorRelevance: 10,
	},
	KindIOC: {
		FactorSourceConfidence:  30,
		FactorCorrelation:       20,
		FactorRecency:           15,
		FactorReputation:        15,
		FactorVulnerabilityLink: 10,
		FactorEnrichment:        5,
		FactorSuspiciousTLD:     5,
	},
	KindIncident: {
		FactorActorThreat:         25,
		FactorRecency:             30,
		FactorTechniqueBreadth:    15,
		FactorGeographicSpread:    10,
		FactorSectorRelevance:     10,
		FactorGeographicRelevance: 10,
	},
}

// DefaultWeights returns a copy of the default weight map for the kind.
func DefaultWeights(kind string) (map[string]float64, error) {
	defaults, ok := defaultWeights[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	out := make(map[string]float64, len(defaults))
	for name, w := range defaults {
		out[name] = w
	}
	return out, nil
}

// LoadWeightOverrides reads per-kind factor weight overrides from a YAML file
// shaped like:
//
//	actor:
//	  trend_status: 40
//	vulnerability:
//	  kev: 35
//
// Kinds must be known; factor names are validated against the kind's default
// set so a typo fails loudly instead of silently scoring with defaults.
func LoadWeightOverrides(path string) (map[string]map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}
	var raw map[string]map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse weights file: %w", err)
	}
	for kind, overrides := range raw {
		defaults, ok := defaultWeights[kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
		}
		for name, w := range overrides {
			if _, ok := defaults[name]; !ok {
				return nil, fmt.Errorf("unknown factor %q for kind %q", name, kind)
			}
			if w < 0 {
				return nil, fmt.Errorf("negative weight %.2f for %s.%s", w, kind, name)
			}
		}
	}
	return raw, nil
}

// mergeWeights overlays overrides onto the kind defaults and renormalizes the
// post-merge weights to sum to 100, so overriding one factor rebalances the
// others proportionally. A merge whose weights sum to zero is returned as-is;
// every factor then carries zero weight and the resulting score is 0.
func mergeWeights(defaults, overrides map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(defaults))
	for name, w := range defaults {
		merged[name] = w
	}
	for name, w := range overrides {
		merged[name] = w
	}

	total := 0.0
	for _, w := range merged {
		total += w
	}
	if total <= 0 {
		return merged
	}
	for name, w := range merged {
		merged[name] = w / total * 100
	}
	return merged
}
