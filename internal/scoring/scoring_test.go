package scoring

import (
	"math"
	"testing"
	"time"

	"threatlens/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func timePtr(t time.Time) *time.Time {
	return &t
}

func findFactor(t *testing.T, s models.Score, name string) models.FactorScore {
	t.Helper()
	for _, f := range s.Factors {
		if f.Factor == name {
			return f
		}
	}
	t.Fatalf("factor %s not in breakdown: %+v", name, s.Factors)
	return models.FactorScore{}
}

func hasFactor(s models.Score, name string) bool {
	for _, f := range s.Factors {
		if f.Factor == name {
			return true
		}
	}
	return false
}

func TestClassifyTierBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  models.ScoreLevel
	}{
		{100, models.LevelCritical},
		{75, models.LevelCritical},
		{74, models.LevelHigh},
		{50, models.LevelHigh},
		{49, models.LevelMedium},
		{25, models.LevelMedium},
		{24, models.LevelLow},
		{0, models.LevelLow},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Fatalf("Classify(%d)=%s, want %s", c.score, got, c.want)
		}
	}
}

func TestScoreActorWeightedMean(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, err := DefaultWeights(KindActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actor := models.ThreatActor{
		ID:               "akira",
		Name:             "Akira",
		TrendStatus:      models.TrendEscalating,
		IncidentVelocity: floatPtr(2.5),
		Incidents7d:      intPtr(5),
		Sophistication:   "advanced",
		TargetSectors:    []string{"healthcare", "finance"},
		TargetCountries:  []string{"DE"},
	}
	profile := &models.OrgProfile{Sector: "Healthcare", Country: "US"}

	got := scoreActor(actor, profile, weights, now)
	// 100*25 + 50*20 + 50*20 + 100*10 + 100*15 + 0*10 over total weight 100.
	if got.Score != 70 {
		t.Fatalf("expected score 70, got %d", got.Score)
	}
	if got.Level != models.LevelHigh {
		t.Fatalf("expected high, got %s", got.Level)
	}
	if len(got.Factors) != 6 {
		t.Fatalf("expected 6 factors, got %d", len(got.Factors))
	}
	if f := findFactor(t, got, FactorSectorRelevance); f.Score != 100 {
		t.Fatalf("expected case-insensitive sector match, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorGeographicRelevance); f.Score != 0 {
		t.Fatalf("expected country mismatch to score 0, got %f", f.Score)
	}
}

func TestScoreActorMissingFactorsAreSkipped(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindActor)

	actor := models.ThreatActor{ID: "akira", TrendStatus: models.TrendEscalating}
	got := scoreActor(actor, nil, weights, now)
	if len(got.Factors) != 1 {
		t.Fatalf("expected only the trend factor, got %d", len(got.Factors))
	}
	if got.Score != 100 {
		t.Fatalf("expected the sole factor to carry full weight, got %d", got.Score)
	}
	if got.Level != models.LevelCritical {
		t.Fatalf("expected critical, got %s", got.Level)
	}
}

func TestScoreActorEmptyInputScoresZeroLow(t *testing.T) {
	got := ScoreActor(models.ThreatActor{ID: "ghost"}, nil, nil)
	if got.Score != 0 {
		t.Fatalf("expected 0, got %d", got.Score)
	}
	if got.Level != models.LevelLow {
		t.Fatalf("expected low, got %s", got.Level)
	}
	if got.Factors == nil || len(got.Factors) != 0 {
		t.Fatalf("expected empty factor breakdown, got %v", got.Factors)
	}
}

func TestScoreVulnerabilityKEVIsAlwaysEvaluated(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindVulnerability)

	bare := scoreVulnerability(models.Vulnerability{ID: "CVE-2026-0001"}, nil, weights, now)
	if len(bare.Factors) != 1 {
		t.Fatalf("expected only the kev factor, got %d", len(bare.Factors))
	}
	if f := findFactor(t, bare, FactorKEV); f.Score != 0 {
		t.Fatalf("expected missing kev date to score 0, got %f", f.Score)
	}
	if bare.Score != 0 {
		t.Fatalf("expected score 0 for unlisted vulnerabilities, got %d", bare.Score)
	}

	kev := scoreVulnerability(models.Vulnerability{
		ID:      "CVE-2026-0002",
		KevDate: timePtr(now.AddDate(0, 0, -3)),
	}, nil, weights, now)
	if f := findFactor(t, kev, FactorKEV); f.Score != 100 {
		t.Fatalf("expected kev listing to score 100, got %f", f.Score)
	}
	if kev.Score != 100 {
		t.Fatalf("expected score 100, got %d", kev.Score)
	}
}

func TestScoreVulnerabilityRecencyDecaysByHalfLife(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindVulnerability)

	got := scoreVulnerability(models.Vulnerability{
		ID:            "CVE-2026-0003",
		PublishedDate: timePtr(now.AddDate(0, 0, -90)),
	}, nil, weights, now)
	f := findFactor(t, got, FactorRecency)
	if math.Abs(f.Score-50) > 1e-6 {
		t.Fatalf("expected 50 after one 90-day half-life, got %f", f.Score)
	}
}

func TestScoreVulnerabilityVendorRelevanceNeedsProfile(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindVulnerability)

	vuln := models.Vulnerability{ID: "CVE-2026-0004", Vendor: "Fortinet"}
	without := scoreVulnerability(vuln, nil, weights, now)
	if hasFactor(without, FactorVendorRelevance) {
		t.Fatalf("expected no vendor factor without a profile")
	}

	with := scoreVulnerability(vuln, &models.OrgProfile{TechVendors: []string{"fortinet", "cisco"}}, weights, now)
	if f := findFactor(t, with, FactorVendorRelevance); f.Score != 100 {
		t.Fatalf("expected vendor match, got %f", f.Score)
	}
}

func TestScoreIOCUsesMetadataAndRecency(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindIOC)

	ioc := models.IOC{
		ID:               "ioc-1",
		Confidence:       floatPtr(80),
		CorrelationCount: intPtr(5),
		FirstSeen:        timePtr(now.AddDate(0, 0, -14)),
		CreatedAt:        timePtr(now.AddDate(0, 0, -200)),
		Metadata: &models.IOCMetadata{
			Enriched:        true,
			HasVulns:        false,
			ReputationLevel: "malicious",
			SuspiciousTLD:   true,
		},
	}

	got := scoreIOC(ioc, weights, now)
	if f := findFactor(t, got, FactorSourceConfidence); f.Score != 80 {
		t.Fatalf("expected confidence 80, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorCorrelation); f.Score != 50 {
		t.Fatalf("expected correlation 50, got %f", f.Score)
	}
	// FirstSeen wins over CreatedAt; one 14-day half-life gives 50.
	if f := findFactor(t, got, FactorRecency); math.Abs(f.Score-50) > 1e-6 {
		t.Fatalf("expected recency 50, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorReputation); f.Score != 100 {
		t.Fatalf("expected malicious reputation 100, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorVulnerabilityLink); f.Score != 0 {
		t.Fatalf("expected no vulnerability link, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorSuspiciousTLD); f.Score != 100 {
		t.Fatalf("expected suspicious tld 100, got %f", f.Score)
	}
}

func TestScoreIOCWithoutMetadataSkipsMetadataFactors(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindIOC)

	got := scoreIOC(models.IOC{ID: "ioc-2", Confidence: floatPtr(100)}, weights, now)
	if len(got.Factors) != 1 {
		t.Fatalf("expected only the confidence factor, got %d", len(got.Factors))
	}
	if got.Score != 100 {
		t.Fatalf("expected 100, got %d", got.Score)
	}
}

func TestScoreIncidentActorThreatFallsBackToVelocity(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindIncident)

	inc := models.Incident{
		ID:          "i1",
		ThreatActor: &models.ThreatActor{ID: "akira", IncidentVelocity: floatPtr(5)},
	}
	got := scoreIncident(inc, nil, weights, now)
	if f := findFactor(t, got, FactorActorThreat); f.Score != 100 {
		t.Fatalf("expected velocity fallback to score 100, got %f", f.Score)
	}

	inc.ThreatActor.TrendStatus = models.TrendDeclining
	got = scoreIncident(inc, nil, weights, now)
	if f := findFactor(t, got, FactorActorThreat); f.Score != 20 {
		t.Fatalf("expected trend status to take precedence, got %f", f.Score)
	}
}

func TestScoreIncidentBreadthSpreadAndRelevance(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	weights, _ := DefaultWeights(KindIncident)

	inc := models.Incident{
		ID:              "i2",
		DiscoveredAt:    now.AddDate(0, 0, -7),
		Sector:          "healthcare",
		TargetCountries: []string{"US", "DE"},
		TTPs:            []string{"T1486", "T1190", "T1059", "T1021"},
	}
	got := scoreIncident(inc, &models.OrgProfile{Sector: "healthcare", Country: "us"}, weights, now)

	if f := findFactor(t, got, FactorRecency); math.Abs(f.Score-50) > 1e-6 {
		t.Fatalf("expected recency 50 after one 7-day half-life, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorTechniqueBreadth); f.Score != 50 {
		t.Fatalf("expected 4 of 8 techniques to score 50, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorGeographicSpread); f.Score != 40 {
		t.Fatalf("expected 2 of 5 countries to score 40, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorSectorRelevance); f.Score != 100 {
		t.Fatalf("expected sector match, got %f", f.Score)
	}
	if f := findFactor(t, got, FactorGeographicRelevance); f.Score != 100 {
		t.Fatalf("expected case-insensitive country match, got %f", f.Score)
	}
}
