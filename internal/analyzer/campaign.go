package analyzer

import (
	"fmt"
	"sort"

	"threatlens/pkg/models"
)

// DetectCampaigns segments each actor's incidents into campaigns with a
// single left-to-right greedy pass: consecutive incidents chain into one
// campaign while the gap between them stays under cfg.CampaignGap, and a
// chain is reported once it holds at least cfg.MinOccurrences incidents.
// There is no backtracking; re-ordering the pass would change the output.
// Output is ordered by descending incident count.
func DetectCampaigns(incidents []models.Incident, cfg Config) []models.CampaignPattern {
	cfg = cfg.withDefaults()

	byActor := make(map[string][]models.Incident, 32)
	names := make(map[string]string, 32)
	for _, inc := range incidents {
		if inc.ActorID == "" || inc.DiscoveredAt.IsZero() {
			continue
		}
		byActor[inc.ActorID] = append(byActor[inc.ActorID], inc)
		if label := actorLabel(inc); label != "" {
			names[inc.ActorID] = label
		}
	}

	actorIDs := make([]string, 0, len(byActor))
	for id := range byActor {
		actorIDs = append(actorIDs, id)
	}
	sort.Strings(actorIDs)

	out := make([]models.CampaignPattern, 0, 8)
	for _, actorID := range actorIDs {
		chron := byActor[actorID]
		sort.Slice(chron, func(i, j int) bool {
			if !chron[i].DiscoveredAt.Equal(chron[j].DiscoveredAt) {
				return chron[i].DiscoveredAt.Before(chron[j].DiscoveredAt)
			}
			return chron[i].ID < chron[j].ID
		})

		chain := chron[:1]
		for i := 1; i < len(chron); i++ {
			gap := chron[i].DiscoveredAt.Sub(chron[i-1].DiscoveredAt)
			if gap < cfg.CampaignGap {
				chain = chron[i-len(chain) : i+1]
				continue
			}
			if c, ok := buildCampaign(actorID, names[actorID], chain, cfg); ok {
				out = append(out, c)
			}
			chain = chron[i : i+1]
		}
		if c, ok := buildCampaign(actorID, names[actorID], chain, cfg); ok {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IncidentCount != out[j].IncidentCount {
			return out[i].IncidentCount > out[j].IncidentCount
		}
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ActorID < out[j].ActorID
	})
	return out
}

func buildCampaign(actorID, name string, chain []models.Incident, cfg Config) (models.CampaignPattern, bool) {
	if len(chain) < cfg.MinOccurrences {
		return models.CampaignPattern{}, false
	}
	ids := make([]string, 0, len(chain))
	for _, inc := range chain {
		if inc.ID != "" {
			ids = append(ids, inc.ID)
		}
	}
	start := chain[0].DiscoveredAt
	end := chain[len(chain)-1].DiscoveredAt
	return models.CampaignPattern{
		ActorID:       actorID,
		ActorName:     name,
		StartAt:       start,
		EndAt:         end,
		IncidentCount: len(chain),
		IncidentIDs:   ids,
		Confidence:    cappedConfidence(len(chain), 10),
		Description:   fmt.Sprintf("Sustained campaign by %s: %d incidents between %s and %s", actorDisplay(name, actorID), len(chain), start.Format("2006-01-02"), end.Format("2006-01-02")),
	}, true
}
