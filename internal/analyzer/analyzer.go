// Package analyzer derives intelligence patterns from windows of incident
// records: co-occurrence mining, temporal clustering, campaign segmentation,
// geographic concentration, and statistical anomaly detection. Every detector
// is a pure function over the incident slice it is given; records missing a
// field a detector needs are excluded from that detector's counts rather than
// causing an error.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"threatlens/internal/logger"
	"threatlens/pkg/models"
)

// Config controls detector thresholds. Zero values fall back to the defaults
// below.
type Config struct {
	MinOccurrences int           // minimum pair/chain count, default 3
	ClusterWindow  time.Duration // temporal cluster width, default 24h
	CampaignGap    time.Duration // max gap inside one campaign, default 7 days
	BaselineDays   int           // anomaly baseline length, default 30
	ZThreshold     float64       // absolute z-score cutoff, default 2.0
}

func (c Config) withDefaults() Config {
	if c.MinOccurrences <= 0 {
		c.MinOccurrences = 3
	}
	if c.ClusterWindow <= 0 {
		c.ClusterWindow = 24 * time.Hour
	}
	if c.CampaignGap <= 0 {
		c.CampaignGap = 7 * 24 * time.Hour
	}
	if c.BaselineDays <= 0 {
		c.BaselineDays = 30
	}
	if c.ZThreshold <= 0 {
		c.ZThreshold = 2.0
	}
	return c
}

// IncidentSource supplies incident records for an analysis window. The
// provider is expected to return records already joined with their actor
// profiles.
type IncidentSource interface {
	IncidentsSince(ctx context.Context, since time.Time) ([]models.Incident, error)
}

// Options selects the window and detector subset for one analysis run.
type Options struct {
	Days         int                  // analysis window in days, default 90
	IncludeTypes []models.PatternType // nil means all detectors
}

// Result is the output of one analysis run: the flat pattern list plus a
// summary with per-type counts.
type Result struct {
	Patterns []models.Pattern
	Summary  models.Summary
}

// Analyzer runs the configured detectors over incidents from a source.
type Analyzer struct {
	source IncidentSource
	cfg    Config
	now    func() time.Time
}

// New creates an analyzer. The source may be nil when only AnalyzeIncidents
// is used.
func New(source IncidentSource, cfg Config) *Analyzer {
	return &Analyzer{
		source: source,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
}

// Analyze fetches incidents for the window and runs the selected detectors.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*Result, error) {
	if a.source == nil {
		return nil, fmt.Errorf("analyzer has no incident source")
	}
	days := opts.Days
	if days <= 0 {
		days = 90
	}
	since := a.now().AddDate(0, 0, -days)
	incidents, err := a.source.IncidentsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch incidents: %w", err)
	}
	return a.AnalyzeIncidents(incidents, opts)
}

// AnalyzeIncidents runs the selected detectors over an already-materialized
// incident slice. Each detector is isolated: a panic in one is recovered and
// reported after the others have run, so partial results are never dropped.
func (a *Analyzer) AnalyzeIncidents(incidents []models.Incident, opts Options) (*Result, error) {
	days := opts.Days
	if days <= 0 {
		days = 90
	}

	selected, err := selectTypes(opts.IncludeTypes)
	if err != nil {
		return nil, err
	}

	cutoff := a.now().AddDate(0, 0, -days)
	windowed := make([]models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !inc.DiscoveredAt.IsZero() && inc.DiscoveredAt.Before(cutoff) {
			continue
		}
		windowed = append(windowed, inc)
	}

	cfg := a.cfg
	if cfg.BaselineDays > days {
		cfg.BaselineDays = days
	}

	patterns := make([]models.Pattern, 0, 32)
	var errs []error
	run := func(typ models.PatternType, detect func() []models.Pattern) {
		if !selected[typ] {
			return
		}
		found, err := runDetector(string(typ), detect)
		if err != nil {
			errs = append(errs, err)
			return
		}
		patterns = append(patterns, found...)
	}

	run(models.PatternActorSector, func() []models.Pattern {
		return asPatterns(DetectActorSectorPatterns(windowed, cfg))
	})
	run(models.PatternActorTechnique, func() []models.Pattern {
		return asPatterns(DetectActorTechniquePatterns(windowed, cfg))
	})
	run(models.PatternTemporalCluster, func() []models.Pattern {
		return asPatterns(DetectTemporalClusters(windowed, cfg))
	})
	run(models.PatternGeographic, func() []models.Pattern {
		return asPatterns(DetectGeographicPatterns(windowed, cfg))
	})
	run(models.PatternCampaign, func() []models.Pattern {
		return asPatterns(DetectCampaigns(windowed, cfg))
	})
	run(models.PatternAnomaly, func() []models.Pattern {
		return asPatterns(DetectAnomalies(windowed, cfg))
	})

	byType := make(map[models.PatternType]int, 6)
	for _, p := range patterns {
		byType[p.Kind()]++
	}

	res := &Result{
		Patterns: patterns,
		Summary: models.Summary{
			TotalIncidents: len(windowed),
			WindowDays:     days,
			PatternCount:   len(patterns),
			ByType:         byType,
		},
	}
	return res, errors.Join(errs...)
}

// runDetector converts a detector panic into an error so the remaining
// detectors still run.
func runDetector(name string, detect func() []models.Pattern) (found []models.Pattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Detector %s panicked: %v", name, r)
			err = fmt.Errorf("detector %s: %v", name, r)
		}
	}()
	return detect(), nil
}

func selectTypes(include []models.PatternType) (map[models.PatternType]bool, error) {
	known := make(map[models.PatternType]bool, 6)
	for _, t := range models.AllPatternTypes() {
		known[t] = true
	}
	if len(include) == 0 {
		return known, nil
	}
	selected := make(map[models.PatternType]bool, len(include))
	for _, t := range include {
		if !known[t] {
			return nil, fmt.Errorf("unknown pattern type %q", t)
		}
		selected[t] = true
	}
	return selected, nil
}

func asPatterns[T models.Pattern](in []T) []models.Pattern {
	out := make([]models.Pattern, 0, len(in))
	for _, p := range in {
		out = append(out, p)
	}
	return out
}

func actorLabel(inc models.Incident) string {
	if inc.ThreatActor != nil && inc.ThreatActor.Name != "" {
		return inc.ThreatActor.Name
	}
	return inc.ActorID
}
