package analyzer

import (
	"testing"
	"time"

	"threatlens/pkg/models"
)

func TestRecommendationsCampaignRanksHigh(t *testing.T) {
	patterns := []models.Pattern{
		models.CampaignPattern{
			ActorID:       "akira",
			ActorName:     "Akira",
			IncidentCount: 12,
			Description:   "Sustained campaign by Akira",
		},
	}

	got := Recommendations(patterns)
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(got))
	}
	if got[0].Category != "campaign" || got[0].Priority != "high" {
		t.Fatalf("unexpected recommendation: %+v", got[0])
	}
	if len(got[0].Actions) == 0 {
		t.Fatalf("expected concrete actions")
	}
}

func TestRecommendationsOnlySpikesTriggerAnomalyAdvice(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	patterns := []models.Pattern{
		models.AnomalyPattern{Day: day, Direction: models.AnomalyDrop, ZScore: -3},
	}
	if got := Recommendations(patterns); len(got) != 0 {
		t.Fatalf("expected no recommendation for a drop, got %d", len(got))
	}

	patterns = []models.Pattern{
		models.AnomalyPattern{Day: day, Direction: models.AnomalySpike, ZScore: 3},
	}
	got := Recommendations(patterns)
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation for a spike, got %d", len(got))
	}
	if got[0].Category != "anomaly" || got[0].Priority != "high" {
		t.Fatalf("unexpected recommendation: %+v", got[0])
	}
}

func TestRecommendationsOrderedByPriorityAndCapped(t *testing.T) {
	day := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	patterns := []models.Pattern{
		models.GeographicPattern{Country: "US", IncidentCount: 9},
		models.GeographicPattern{Country: "DE", IncidentCount: 4},
		models.CampaignPattern{ActorID: "akira", IncidentCount: 5},
		models.CampaignPattern{ActorID: "lockbit", IncidentCount: 3},
		models.AnomalyPattern{Day: day, Direction: models.AnomalySpike, ZScore: 3},
	}

	got := Recommendations(patterns)
	if len(got) != 3 {
		t.Fatalf("expected one recommendation per category, got %d", len(got))
	}
	if got[0].Priority != "high" || got[1].Priority != "high" || got[2].Priority != "medium" {
		t.Fatalf("unexpected priority order: %s %s %s", got[0].Priority, got[1].Priority, got[2].Priority)
	}
	if got[2].Category != "geographic" {
		t.Fatalf("expected geographic last, got %s", got[2].Category)
	}
}

func TestRecommendationsEmptyPatternsYieldNothing(t *testing.T) {
	if got := Recommendations(nil); len(got) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(got))
	}
}
