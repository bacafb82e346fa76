// Package scoring computes 0-100 multi-factor risk scores for threat actors,
// vulnerabilities, indicators, and incidents. Each scorer follows the same
// shape: evaluate the factors the input actually carries (missing data skips
// a factor entirely, contributing to neither the weighted sum nor the weight
// denominator), combine them as a weighted mean, and classify the result into
// a four-level tier. Scores are pure functions of their inputs.
package scoring

import (
	"math"
	"strings"
	"time"

	"threatlens/internal/stats"
	"threatlens/pkg/models"
)

var trendScores = map[models.TrendStatus]float64{
	models.TrendEscalating: 100,
	models.TrendStable:     50,
	models.TrendDeclining:  20,
}

var sophisticationScores = map[string]float64{
	"advanced":     100,
	"high":         75,
	"intermediate": 50,
	"basic":        25,
}

var maturityScores = map[string]float64{
	"weaponized":  100,
	"high":        85,
	"functional":  70,
	"poc":         40,
	"unproven":    10,
	"not_defined": 0,
}

var reputationScores = map[string]float64{
	"malicious":  100,
	"suspicious": 70,
	"unknown":    40,
	"clean":      0,
}

// accumulator collects evaluated factors and their weighted contributions.
type accumulator struct {
	weights     map[string]float64
	factors     []models.FactorScore
	weightedSum float64
	totalWeight float64
	now         time.Time
}

func newAccumulator(weights map[string]float64, now time.Time) *accumulator {
	return &accumulator{weights: weights, now: now}
}

// add records one evaluated factor. Factors whose weight is absent or zero
// still appear in the breakdown but contribute nothing.
func (a *accumulator) add(name string, value any, score float64) {
	w := a.weights[name]
	a.factors = append(a.factors, models.FactorScore{Factor: name, Value: value, Score: score, Weight: w})
	a.weightedSum += score * w
	a.totalWeight += w
}

// addDecay evaluates a recency factor from a timestamp and half-life.
func (a *accumulator) addDecay(name string, ts time.Time, halfLifeDays float64) {
	factor := stats.Decay(a.now.Sub(ts), halfLifeDays)
	a.add(name, ts.UTC().Format(time.RFC3339), factor*100)
}

// addMatch evaluates a binary profile-relevance factor.
func (a *accumulator) addMatch(name string, want string, have []string) {
	score := 0.0
	for _, v := range have {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
			score = 100
			break
		}
	}
	a.add(name, want, score)
}

func (a *accumulator) result() models.Score {
	score := 0
	if a.totalWeight > 0 {
		score = int(math.Round(a.weightedSum / a.totalWeight))
	}
	factors := a.factors
	if factors == nil {
		factors = []models.FactorScore{}
	}
	return models.Score{
		Score:       score,
		Level:       Classify(score),
		Factors:     factors,
		WeightsUsed: a.weights,
	}
}

// Classify maps a 0-100 score onto its severity tier.
func Classify(score int) models.ScoreLevel {
	switch {
	case score >= 75:
		return models.LevelCritical
	case score >= 50:
		return models.LevelHigh
	case score >= 25:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

// ScoreActor scores a threat actor. A nil weight map applies the actor
// defaults; otherwise the overrides are merged over the defaults and
// renormalized. Relevance factors are evaluated only when a profile is given.
func ScoreActor(actor models.ThreatActor, profile *models.OrgProfile, weights map[string]float64) models.Score {
	return scoreActor(actor, profile, resolveWeights(KindActor, weights), time.Now())
}

func scoreActor(actor models.ThreatActor, profile *models.OrgProfile, weights map[string]float64, now time.Time) models.Score {
	acc := newAccumulator(weights, now)

	if s, ok := trendScores[actor.TrendStatus]; ok {
		acc.add(FactorTrendStatus, string(actor.TrendStatus), s)
	}
	if actor.IncidentVelocity != nil {
		acc.add(FactorIncidentVelocity, *actor.IncidentVelocity, stats.NormalizeRange(*actor.IncidentVelocity, 0, 5))
	}
	if actor.Incidents7d != nil {
		acc.add(FactorRecentActivity, *actor.Incidents7d, stats.NormalizeRange(float64(*actor.Incidents7d), 0, 10))
	}
	if s, ok := sophisticationScores[strings.ToLower(actor.Sophistication)]; ok {
		acc.add(FactorSophistication, actor.Sophistication, s)
	}
	if profile != nil {
		if profile.Sector != "" && len(actor.TargetSectors) > 0 {
			acc.addMatch(FactorSectorRelevance, profile.Sector, actor.TargetSectors)
		}
		if profile.Country != "" && len(actor.TargetCountries) > 0 {
			acc.addMatch(FactorGeographicRelevance, profile.Country, actor.TargetCountries)
		}
	}

	return acc.result()
}

// ScoreVulnerability scores a vulnerability record. KEV status is always
// evaluated: absence of a KEV date is the negative signal, not missing data.
func ScoreVulnerability(vuln models.Vulnerability, profile *models.OrgProfile, weights map[string]float64) models.Score {
	return scoreVulnerability(vuln, profile, resolveWeights(KindVulnerability, weights), time.Now())
}

func scoreVulnerability(vuln models.Vulnerability, profile *models.OrgProfile, weights map[string]float64, now time.Time) models.Score {
	acc := newAccumulator(weights, now)

	if vuln.CVSSScore != nil {
		acc.add(FactorCVSS, *vuln.CVSSScore, stats.NormalizeRange(*vuln.CVSSScore, 0, 10))
	}
	if vuln.EPSSScore != nil {
		acc.add(FactorEPSS, *vuln.EPSSScore, stats.NormalizeRange(*vuln.EPSSScore, 0, 1))
	}
	if vuln.KevDate != nil {
		acc.add(FactorKEV, vuln.KevDate.UTC().Format("2006-01-02"), 100)
	} else {
		acc.add(FactorKEV, nil, 0)
	}
	if s, ok := maturityScores[strings.ToLower(vuln.ExploitMaturity)]; ok {
		acc.add(FactorExploitMaturity, vuln.ExploitMaturity, s)
	}
	if vuln.PublishedDate != nil {
		acc.addDecay(FactorRecency, *vuln.PublishedDate, vulnerabilityHalfLifeDays)
	}
	if profile != nil && len(profile.TechVendors) > 0 && vuln.Vendor != "" {
		acc.addMatch(FactorVendorRelevance, vuln.Vendor, profile.TechVendors)
	}

	return acc.result()
}

// ScoreIOC scores an indicator of compromise. IOCs carry no organizational
// relevance factors, so no profile is taken.
func ScoreIOC(ioc models.IOC, weights map[string]float64) models.Score {
	return scoreIOC(ioc, resolveWeights(KindIOC, weights), time.Now())
}

func scoreIOC(ioc models.IOC, weights map[string]float64, now time.Time) models.Score {
	acc := newAccumulator(weights, now)

	if ioc.Confidence != nil {
		acc.add(FactorSourceConfidence, *ioc.Confidence, stats.NormalizeRange(*ioc.Confidence, 0, 100))
	}
	if ioc.CorrelationCount != nil {
		acc.add(FactorCorrelation, *ioc.CorrelationCount, stats.NormalizeRange(float64(*ioc.CorrelationCount), 0, 10))
	}
	if seen := firstSeenOrCreated(ioc); seen != nil {
		acc.addDecay(FactorRecency, *seen, iocHalfLifeDays)
	}
	if ioc.Metadata != nil {
		if s, ok := reputationScores[strings.ToLower(ioc.Metadata.ReputationLevel)]; ok {
			acc.add(FactorReputation, ioc.Metadata.ReputationLevel, s)
		}
		acc.add(FactorVulnerabilityLink, ioc.Metadata.HasVulns, boolScore(ioc.Metadata.HasVulns))
		acc.add(FactorEnrichment, ioc.Metadata.Enriched, boolScore(ioc.Metadata.Enriched))
		acc.add(FactorSuspiciousTLD, ioc.Metadata.SuspiciousTLD, boolScore(ioc.Metadata.SuspiciousTLD))
	}

	return acc.result()
}

// ScoreIncident scores a single incident, using the joined actor profile when
// the input provider attached one.
func ScoreIncident(inc models.Incident, profile *models.OrgProfile, weights map[string]float64) models.Score {
	return scoreIncident(inc, profile, resolveWeights(KindIncident, weights), time.Now())
}

func scoreIncident(inc models.Incident, profile *models.OrgProfile, weights map[string]float64, now time.Time) models.Score {
	acc := newAccumulator(weights, now)

	if inc.ThreatActor != nil {
		if s, ok := trendScores[inc.ThreatActor.TrendStatus]; ok {
			acc.add(FactorActorThreat, string(inc.ThreatActor.TrendStatus), s)
		} else if inc.ThreatActor.IncidentVelocity != nil {
			v := *inc.ThreatActor.IncidentVelocity
			acc.add(FactorActorThreat, v, stats.NormalizeRange(v, 0, 5))
		}
	}
	if !inc.DiscoveredAt.IsZero() {
		acc.addDecay(FactorRecency, inc.DiscoveredAt, incidentHalfLifeDays)
	}
	if n := len(inc.TTPs); n > 0 {
		acc.add(FactorTechniqueBreadth, n, stats.NormalizeRange(float64(n), 0, 8))
	}
	if n := len(inc.TargetCountries); n > 0 {
		acc.add(FactorGeographicSpread, n, stats.NormalizeRange(float64(n), 0, 5))
	}
	if profile != nil {
		if profile.Sector != "" && inc.Sector != "" {
			acc.addMatch(FactorSectorRelevance, profile.Sector, []string{inc.Sector})
		}
		if profile.Country != "" && len(inc.TargetCountries) > 0 {
			acc.addMatch(FactorGeographicRelevance, profile.Country, inc.TargetCountries)
		}
	}

	return acc.result()
}

// resolveWeights merges optional overrides over the kind defaults. The kind
// constants passed here are always valid, so the defaults lookup cannot fail.
func resolveWeights(kind string, overrides map[string]float64) map[string]float64 {
	defaults := defaultWeights[kind]
	if overrides == nil {
		out := make(map[string]float64, len(defaults))
		for name, w := range defaults {
			out[name] = w
		}
		return out
	}
	return mergeWeights(defaults, overrides)
}

func firstSeenOrCreated(ioc models.IOC) *time.Time {
	if ioc.FirstSeen != nil {
		return ioc.FirstSeen
	}
	return ioc.CreatedAt
}

func boolScore(v bool) float64 {
	if v {
		return 100
	}
	return 0
}
