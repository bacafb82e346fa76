package scoring

import (
	"fmt"
	"time"

	"threatlens/pkg/models"
)

// Model is a reusable scoring closure for one entity kind with a fixed,
// renormalized weight map.
type Model struct {
	Kind    string
	Weights map[string]float64

	now func() time.Time
}

// NewModel builds a scoring model for the kind, merging any overrides over
// the kind's default weights and renormalizing the merged map to sum to 100.
// Unknown kinds return ErrUnknownEntityKind.
func NewModel(kind string, overrides map[string]float64) (*Model, error) {
	defaults, ok := defaultWeights[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityKind, kind)
	}
	return &Model{
		Kind:    kind,
		Weights: mergeWeights(defaults, overrides),
		now:     time.Now,
	}, nil
}

// Score applies the model to one entity of its kind. Entities may be passed
// by value or pointer; a kind mismatch is an error since it indicates a
// caller bug, not bad data.
func (m *Model) Score(entity any, profile *models.OrgProfile) (models.Score, error) {
	now := m.now()
	switch m.Kind {
	case KindActor:
		actor, ok := asActor(entity)
		if !ok {
			return models.Score{}, fmt.Errorf("actor model cannot score %T", entity)
		}
		return scoreActor(actor, profile, m.Weights, now), nil
	case KindVulnerability:
		vuln, ok := asVulnerability(entity)
		if !ok {
			return models.Score{}, fmt.Errorf("vulnerability model cannot score %T", entity)
		}
		return scoreVulnerability(vuln, profile, m.Weights, now), nil
	case KindIOC:
		ioc, ok := asIOC(entity)
		if !ok {
			return models.Score{}, fmt.Errorf("ioc model cannot score %T", entity)
		}
		return scoreIOC(ioc, m.Weights, now), nil
	case KindIncident:
		inc, ok := asIncident(entity)
		if !ok {
			return models.Score{}, fmt.Errorf("incident model cannot score %T", entity)
		}
		return scoreIncident(inc, profile, m.Weights, now), nil
	}
	return models.Score{}, fmt.Errorf("%w: %q", ErrUnknownEntityKind, m.Kind)
}

func asActor(entity any) (models.ThreatActor, bool) {
	switch v := entity.(type) {
	case models.ThreatActor:
		return v, true
	case *models.ThreatActor:
		if v != nil {
			return *v, true
		}
	}
	return models.ThreatActor{}, false
}

func asVulnerability(entity any) (models.Vulnerability, bool) {
	switch v := entity.(type) {
	case models.Vulnerability:
		return v, true
	case *models.Vulnerability:
		if v != nil {
			return *v, true
		}
	}
	return models.Vulnerability{}, false
}

func asIOC(entity any) (models.IOC, bool) {
	switch v := entity.(type) {
	case models.IOC:
		return v, true
	case *models.IOC:
		if v != nil {
			return *v, true
		}
	}
	return models.IOC{}, false
}

func asIncident(entity any) (models.Incident, bool) {
	switch v := entity.(type) {
	case models.Incident:
		return v, true
	case *models.Incident:
		if v != nil {
			return *v, true
		}
	}
	return models.Incident{}, false
}
