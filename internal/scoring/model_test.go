package scoring

import (
	"errors"
	"math"
	"testing"
	"time"

	"threatlens/pkg/models"
)

func TestNewModelUnknownKind(t *testing.T) {
	if _, err := NewModel("malware", nil); !errors.Is(err, ErrUnknownEntityKind) {
		t.Fatalf("expected ErrUnknownEntityKind, got %v", err)
	}
}

func TestNewModelRenormalizesOverrides(t *testing.T) {
	m, err := NewModel(KindVulnerability, map[string]float64{FactorKEV: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum := weightSum(m.Weights); math.Abs(sum-100) > 1e-9 {
		t.Fatalf("model weights sum to %f, want 100", sum)
	}
	if m.Weights[FactorKEV] <= m.Weights[FactorCVSS] {
		t.Fatalf("expected kev override to outweigh cvss, got %f vs %f", m.Weights[FactorKEV], m.Weights[FactorCVSS])
	}
}

func TestModelScoreDispatchesByKind(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	m, err := NewModel(KindActor, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.now = func() time.Time { return now }

	actor := models.ThreatActor{ID: "akira", TrendStatus: models.TrendEscalating}
	byValue, err := m.Score(actor, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byPointer, err := m.Score(&actor, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byValue.Score != byPointer.Score || byValue.Score != 100 {
		t.Fatalf("expected identical scores of 100, got %d and %d", byValue.Score, byPointer.Score)
	}
}

func TestModelScoreRejectsMismatchedEntity(t *testing.T) {
	m, err := NewModel(KindActor, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Score(models.Vulnerability{ID: "CVE-2026-0001"}, nil); err == nil {
		t.Fatalf("expected error for mismatched entity type")
	}
	if _, err := m.Score((*models.ThreatActor)(nil), nil); err == nil {
		t.Fatalf("expected error for nil pointer entity")
	}
}

func TestModelScoreAllKinds(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entities := map[string]any{
		KindActor:         models.ThreatActor{ID: "akira", TrendStatus: models.TrendStable},
		KindVulnerability: models.Vulnerability{ID: "CVE-2026-0001", CVSSScore: floatPtr(9.8)},
		KindIOC:           models.IOC{ID: "ioc-1", Confidence: floatPtr(90)},
		KindIncident:      models.Incident{ID: "i1", DiscoveredAt: now.AddDate(0, 0, -1)},
	}

	for kind, entity := range entities {
		m, err := NewModel(kind, nil)
		if err != nil {
			t.Fatalf("NewModel(%s): %v", kind, err)
		}
		m.now = func() time.Time { return now }
		got, err := m.Score(entity, nil)
		if err != nil {
			t.Fatalf("Score(%s): %v", kind, err)
		}
		if len(got.Factors) == 0 {
			t.Fatalf("expected at least one factor for %s", kind)
		}
		if got.Level == "" {
			t.Fatalf("expected a level for %s", kind)
		}
	}
}
