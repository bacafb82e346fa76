package analyzer

import (
	"fmt"
	"sort"

	"threatlens/pkg/models"
)

// DetectGeographicPatterns counts incidents per target country (one incident
// may count toward several countries) and reports countries hit at least
// cfg.MinOccurrences times together with the distinct actors targeting them.
// Output is ordered by descending incident count.
func DetectGeographicPatterns(incidents []models.Incident, cfg Config) []models.GeographicPattern {
	cfg = cfg.withDefaults()

	counts := make(map[string]int, 32)
	actorsByCountry := make(map[string]map[string]struct{}, 32)
	for _, inc := range incidents {
		for _, country := range inc.TargetCountries {
			if country == "" {
				continue
			}
			counts[country]++
			if inc.ActorID != "" {
				set := actorsByCountry[country]
				if set == nil {
					set = make(map[string]struct{}, 4)
					actorsByCountry[country] = set
				}
				set[inc.ActorID] = struct{}{}
			}
		}
	}

	out := make([]models.GeographicPattern, 0, len(counts))
	for country, count := range counts {
		if count < cfg.MinOccurrences {
			continue
		}
		actorIDs := make([]string, 0, len(actorsByCountry[country]))
		for id := range actorsByCountry[country] {
			actorIDs = append(actorIDs, id)
		}
		sort.Strings(actorIDs)
		out = append(out, models.GeographicPattern{
			Country:       country,
			IncidentCount: count,
			ActorIDs:      actorIDs,
			Confidence:    cappedConfidence(count, 15),
			Description:   fmt.Sprintf("Concentrated targeting of %s: %d incidents from %d actors", country, count, len(actorIDs)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IncidentCount != out[j].IncidentCount {
			return out[i].IncidentCount > out[j].IncidentCount
		}
		return out[i].Country < out[j].Country
	})
	return out
}
