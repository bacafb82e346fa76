package analyzer

import (
	"fmt"
	"sort"

	"threatlens/pkg/models"
)

// DetectTemporalClusters finds bursts of incidents inside a sliding forward
// window. Incidents are sorted ascending by timestamp; each incident opens a
// window of cfg.ClusterWindow and the window qualifies when it holds at least
// twice cfg.MinOccurrences incidents. Qualifying windows whose starts lie
// within half the window width of an already-kept cluster are dropped, keeping
// the first found. Output is ordered by descending incident count.
func DetectTemporalClusters(incidents []models.Incident, cfg Config) []models.TemporalClusterPattern {
	cfg = cfg.withDefaults()

	timed := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.DiscoveredAt.IsZero() {
			continue
		}
		timed = append(timed, inc)
	}
	sort.Slice(timed, func(i, j int) bool {
		if !timed[i].DiscoveredAt.Equal(timed[j].DiscoveredAt) {
			return timed[i].DiscoveredAt.Before(timed[j].DiscoveredAt)
		}
		return timed[i].ID < timed[j].ID
	})

	minCount := 2 * cfg.MinOccurrences
	halfWindow := cfg.ClusterWindow / 2

	out := make([]models.TemporalClusterPattern, 0, 8)
	for i, start := range timed {
		windowEnd := start.DiscoveredAt.Add(cfg.ClusterWindow)

		count := 0
		actors := make(map[string]struct{}, 8)
		for _, inc := range timed[i:] {
			if inc.DiscoveredAt.After(windowEnd) {
				break
			}
			count++
			if inc.ActorID != "" {
				actors[inc.ActorID] = struct{}{}
			}
		}
		if count < minCount {
			continue
		}

		// Overlap dedup keeps the earliest of closely spaced starts, even
		// when a later window holds more incidents.
		if n := len(out); n > 0 {
			gap := start.DiscoveredAt.Sub(out[n-1].WindowStart)
			if gap < halfWindow {
				continue
			}
		}

		actorIDs := make([]string, 0, len(actors))
		for id := range actors {
			actorIDs = append(actorIDs, id)
		}
		sort.Strings(actorIDs)

		out = append(out, models.TemporalClusterPattern{
			WindowStart:   start.DiscoveredAt,
			WindowEnd:     windowEnd,
			IncidentCount: count,
			ActorIDs:      actorIDs,
			Confidence:    cappedConfidence(count, 20),
			Description:   fmt.Sprintf("Burst of %d incidents within %s starting %s", count, cfg.ClusterWindow, start.DiscoveredAt.UTC().Format("2006-01-02 15:04")),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IncidentCount != out[j].IncidentCount {
			return out[i].IncidentCount > out[j].IncidentCount
		}
		return out[i].WindowStart.Before(out[j].WindowStart)
	})
	return out
}
