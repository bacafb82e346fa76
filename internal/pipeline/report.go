package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"threatlens/internal/analyzer"
	"threatlens/internal/scoring"
	"threatlens/pkg/models"
)

// ReportOptions controls what goes into an assembled report beyond the
// pattern list.
type ReportOptions struct {
	ScoreActors     bool
	Profile         *models.OrgProfile
	WeightOverrides map[string]map[string]float64
}

// BuildReport assembles the report envelope for one analysis run:
// type-tagged patterns, recommendations, and (optionally) score breakdowns
// for every actor joined onto the analyzed incidents.
func BuildReport(res *analyzer.Result, incidents []models.Incident, opts ReportOptions) *models.AnalysisReport {
	report := &models.AnalysisReport{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Summary:         res.Summary,
		Patterns:        models.TagPatterns(res.Patterns),
		Recommendations: analyzer.Recommendations(res.Patterns),
	}
	if opts.ScoreActors {
		report.ActorScores = scoreActors(incidents, opts)
	}
	return report
}

func scoreActors(incidents []models.Incident, opts ReportOptions) []models.ActorScore {
	actors := make(map[string]models.ThreatActor, 16)
	for _, inc := range incidents {
		if inc.ThreatActor == nil || inc.ThreatActor.ID == "" {
			continue
		}
		actors[inc.ThreatActor.ID] = *inc.ThreatActor
	}
	if len(actors) == 0 {
		return nil
	}

	var overrides map[string]float64
	if opts.WeightOverrides != nil {
		overrides = opts.WeightOverrides[scoring.KindActor]
	}

	out := make([]models.ActorScore, 0, len(actors))
	for _, actor := range actors {
		out = append(out, models.ActorScore{
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Score:     scoring.ScoreActor(actor, opts.Profile, overrides),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score.Score != out[j].Score.Score {
			return out[i].Score.Score > out[j].Score.Score
		}
		return out[i].ActorID < out[j].ActorID
	})
	return out
}
