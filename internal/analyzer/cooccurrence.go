package analyzer

import (
	"fmt"
	"sort"

	"threatlens/pkg/models"
)

// DetectActorSectorPatterns counts (actor, sector) pairs across the incidents
// and reports pairs seen at least cfg.MinOccurrences times. Incidents without
// both an actor and a sector are excluded. Output is ordered by descending
// occurrence count.
func DetectActorSectorPatterns(incidents []models.Incident, cfg Config) []models.ActorSectorPattern {
	cfg = cfg.withDefaults()

	type pairKey struct {
		actorID string
		sector  string
	}
	counts := make(map[pairKey]int, 64)
	names := make(map[string]string, 32)
	for _, inc := range incidents {
		if inc.ActorID == "" || inc.Sector == "" {
			continue
		}
		counts[pairKey{actorID: inc.ActorID, sector: inc.Sector}]++
		if label := actorLabel(inc); label != "" {
			names[inc.ActorID] = label
		}
	}

	out := make([]models.ActorSectorPattern, 0, len(counts))
	for key, count := range counts {
		if count < cfg.MinOccurrences {
			continue
		}
		name := names[key.actorID]
		out = append(out, models.ActorSectorPattern{
			ActorID:     key.actorID,
			ActorName:   name,
			Sector:      key.sector,
			Occurrences: count,
			Confidence:  cappedConfidence(count, 10),
			Description: fmt.Sprintf("%s repeatedly targets the %s sector (%d incidents)", actorDisplay(name, key.actorID), key.sector, count),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		if out[i].ActorID != out[j].ActorID {
			return out[i].ActorID < out[j].ActorID
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

// DetectActorTechniquePatterns groups incidents by actor and counts technique
// usage inside each group. Techniques seen at least cfg.MinOccurrences times
// for one actor are reported, ordered by descending occurrence count.
func DetectActorTechniquePatterns(incidents []models.Incident, cfg Config) []models.ActorTechniquePattern {
	cfg = cfg.withDefaults()

	type techKey struct {
		actorID   string
		technique string
	}
	counts := make(map[techKey]int, 64)
	names := make(map[string]string, 32)
	for _, inc := range incidents {
		if inc.ActorID == "" || len(inc.TTPs) == 0 {
			continue
		}
		if label := actorLabel(inc); label != "" {
			names[inc.ActorID] = label
		}
		for _, ttp := range inc.TTPs {
			if ttp == "" {
				continue
			}
			counts[techKey{actorID: inc.ActorID, technique: ttp}]++
		}
	}

	out := make([]models.ActorTechniquePattern, 0, len(counts))
	for key, count := range counts {
		if count < cfg.MinOccurrences {
			continue
		}
		name := names[key.actorID]
		out = append(out, models.ActorTechniquePattern{
			ActorID:     key.actorID,
			ActorName:   name,
			Technique:   key.technique,
			Occurrences: count,
			Confidence:  cappedConfidence(count, 5),
			Description: fmt.Sprintf("%s keeps using technique %s (%d incidents)", actorDisplay(name, key.actorID), key.technique, count),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		if out[i].ActorID != out[j].ActorID {
			return out[i].ActorID < out[j].ActorID
		}
		return out[i].Technique < out[j].Technique
	})
	return out
}

// cappedConfidence maps an occurrence count onto (0,1], saturating at the
// given denominator.
func cappedConfidence(count, denom int) float64 {
	c := float64(count) / float64(denom)
	if c > 1 {
		return 1
	}
	return c
}

func actorDisplay(name, actorID string) string {
	if name != "" {
		return name
	}
	if actorID != "" {
		return "Actor " + actorID
	}
	return "Unknown actor"
}
