package pipeline

import (
	"testing"
	"time"

	"threatlens/internal/analyzer"
	"threatlens/pkg/models"
)

func waveResult(t *testing.T, incidents []models.Incident) *analyzer.Result {
	t.Helper()
	a := analyzer.New(nil, analyzer.Config{})
	res, err := a.AnalyzeIncidents(incidents, analyzer.Options{Days: 90})
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	return res
}

func joinedIncidents(base time.Time) []models.Incident {
	velocityA := 4.0
	velocityB := 1.0
	out := make([]models.Incident, 0, 8)
	for i := 0; i < 4; i++ {
		out = append(out, models.Incident{
			ID:           "a-" + string(rune('0'+i)),
			DiscoveredAt: base.AddDate(0, 0, i),
			ActorID:      "akira",
			Sector:       "healthcare",
			ThreatActor: &models.ThreatActor{
				ID:               "akira",
				Name:             "Akira",
				TrendStatus:      models.TrendEscalating,
				IncidentVelocity: &velocityA,
			},
		})
	}
	for i := 0; i < 2; i++ {
		out = append(out, models.Incident{
			ID:           "l-" + string(rune('0'+i)),
			DiscoveredAt: base.AddDate(0, 0, i),
			ActorID:      "lockbit",
			ThreatActor: &models.ThreatActor{
				ID:               "lockbit",
				Name:             "LockBit",
				TrendStatus:      models.TrendDeclining,
				IncidentVelocity: &velocityB,
			},
		})
	}
	return out
}

func TestBuildReportAssemblesEnvelope(t *testing.T) {
	base := time.Now().UTC().AddDate(0, 0, -10)
	incidents := joinedIncidents(base)
	res := waveResult(t, incidents)

	report := BuildReport(res, incidents, ReportOptions{})
	if report.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("expected a generation timestamp")
	}
	if report.Summary.TotalIncidents != len(incidents) {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if len(report.Patterns) != res.Summary.PatternCount {
		t.Fatalf("expected %d tagged patterns, got %d", res.Summary.PatternCount, len(report.Patterns))
	}
	for _, tp := range report.Patterns {
		if tp.Type != tp.Pattern.Kind() {
			t.Fatalf("tag %s disagrees with pattern kind %s", tp.Type, tp.Pattern.Kind())
		}
	}
	if len(report.Recommendations) == 0 {
		t.Fatalf("expected recommendations for a detected campaign")
	}
	if report.ActorScores != nil {
		t.Fatalf("expected no actor scores unless requested")
	}
}

func TestBuildReportScoresDistinctActorsOrderedByScore(t *testing.T) {
	base := time.Now().UTC().AddDate(0, 0, -10)
	incidents := joinedIncidents(base)
	res := waveResult(t, incidents)

	report := BuildReport(res, incidents, ReportOptions{ScoreActors: true})
	if len(report.ActorScores) != 2 {
		t.Fatalf("expected 2 distinct actors, got %d", len(report.ActorScores))
	}
	if report.ActorScores[0].ActorID != "akira" {
		t.Fatalf("expected escalating actor first, got %s", report.ActorScores[0].ActorID)
	}
	if report.ActorScores[0].Score.Score <= report.ActorScores[1].Score.Score {
		t.Fatalf("expected descending scores, got %d then %d",
			report.ActorScores[0].Score.Score, report.ActorScores[1].Score.Score)
	}
	if report.ActorScores[0].ActorName != "Akira" {
		t.Fatalf("expected actor name carried through, got %q", report.ActorScores[0].ActorName)
	}
}

func TestBuildReportActorScoresHonorWeightOverrides(t *testing.T) {
	base := time.Now().UTC().AddDate(0, 0, -10)
	incidents := joinedIncidents(base)
	res := waveResult(t, incidents)

	report := BuildReport(res, incidents, ReportOptions{
		ScoreActors: true,
		WeightOverrides: map[string]map[string]float64{
			"actor": {"trend_status": 100},
		},
	})
	if len(report.ActorScores) != 2 {
		t.Fatalf("expected 2 actors, got %d", len(report.ActorScores))
	}
	weights := report.ActorScores[0].Score.WeightsUsed
	if weights["trend_status"] <= weights["incident_velocity"] {
		t.Fatalf("expected override to dominate, got %v", weights)
	}
}
