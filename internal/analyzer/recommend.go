package analyzer

import (
	"fmt"
	"sort"

	"threatlens/pkg/models"
)

var priorityRank = map[string]int{
	"high":   0,
	"medium": 1,
	"low":    2,
}

// Recommendations converts the strongest pattern of each actionable category
// into a prioritized action item: campaigns and anomaly spikes rank high,
// geographic concentration ranks medium. At most one recommendation per
// category is emitted, always from the first (detector-sorted) pattern of that
// category.
func Recommendations(patterns []models.Pattern) []models.Recommendation {
	var campaign *models.CampaignPattern
	var spike *models.AnomalyPattern
	var geo *models.GeographicPattern

	for _, p := range patterns {
		switch v := p.(type) {
		case models.CampaignPattern:
			if campaign == nil {
				campaign = &v
			}
		case models.AnomalyPattern:
			if spike == nil && v.Direction == models.AnomalySpike {
				spike = &v
			}
		case models.GeographicPattern:
			if geo == nil {
				geo = &v
			}
		}
	}

	out := make([]models.Recommendation, 0, 3)
	if campaign != nil {
		out = append(out, models.Recommendation{
			Category: "campaign",
			Priority: "high",
			Title:    fmt.Sprintf("Active campaign attributed to %s", actorDisplay(campaign.ActorName, campaign.ActorID)),
			Detail:   campaign.Description,
			Actions: []string{
				"Review open incidents linked to this actor",
				"Block known infrastructure associated with the campaign",
				"Brief the on-call team on the actor's techniques",
			},
		})
	}
	if spike != nil {
		out = append(out, models.Recommendation{
			Category: "anomaly",
			Priority: "high",
			Title:    fmt.Sprintf("Incident volume spike on %s", spike.Day.Format("2006-01-02")),
			Detail:   spike.Description,
			Actions: []string{
				"Verify ingestion health to rule out a feed artifact",
				"Triage the day's incidents for a common root cause",
				"Raise monitoring sensitivity until volume normalizes",
			},
		})
	}
	if geo != nil {
		out = append(out, models.Recommendation{
			Category: "geographic",
			Priority: "medium",
			Title:    fmt.Sprintf("Concentrated targeting of %s", geo.Country),
			Detail:   geo.Description,
			Actions: []string{
				"Notify assets operating in the affected region",
				"Review regional exposure and access policies",
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
	})
	return out
}
