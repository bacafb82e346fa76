package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"threatlens/internal/stats"
	"threatlens/pkg/models"
)

// DetectAnomalies buckets incidents by calendar day over a trailing baseline
// window (cfg.BaselineDays, anchored at the latest incident) and flags days
// whose count deviates from the baseline mean by more than cfg.ZThreshold
// standard deviations. A flat baseline (zero deviation) flags nothing. Output
// is ordered by descending absolute z-score.
func DetectAnomalies(incidents []models.Incident, cfg Config) []models.AnomalyPattern {
	cfg = cfg.withDefaults()

	var latest time.Time
	for _, inc := range incidents {
		if inc.DiscoveredAt.After(latest) {
			latest = inc.DiscoveredAt
		}
	}
	if latest.IsZero() {
		return nil
	}
	cutoff := latest.AddDate(0, 0, -cfg.BaselineDays)

	byDay := make(map[time.Time]int, cfg.BaselineDays)
	for _, inc := range incidents {
		if inc.DiscoveredAt.IsZero() || inc.DiscoveredAt.Before(cutoff) {
			continue
		}
		byDay[inc.DiscoveredAt.UTC().Truncate(24*time.Hour)]++
	}
	if len(byDay) == 0 {
		return nil
	}

	days := make([]time.Time, 0, len(byDay))
	counts := make([]float64, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		counts = append(counts, float64(byDay[day]))
	}

	mean := stats.Mean(counts)
	stdDev := stats.StdDev(counts)

	out := make([]models.AnomalyPattern, 0, 4)
	for _, day := range days {
		count := byDay[day]
		z := stats.ZScore(float64(count), mean, stdDev)
		if math.Abs(z) <= cfg.ZThreshold {
			continue
		}
		direction := models.AnomalySpike
		verb := "spiked above"
		if z < 0 {
			direction = models.AnomalyDrop
			verb = "dropped below"
		}
		out = append(out, models.AnomalyPattern{
			Day:           day,
			IncidentCount: count,
			BaselineMean:  mean,
			BaselineStdev: stdDev,
			ZScore:        z,
			Direction:     direction,
			Confidence:    cappedConfidence01(math.Abs(z) / 4),
			Description:   fmt.Sprintf("Incident volume %s baseline on %s: %d incidents (z=%.2f)", verb, day.Format("2006-01-02"), count, z),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		zi, zj := math.Abs(out[i].ZScore), math.Abs(out[j].ZScore)
		if zi != zj {
			return zi > zj
		}
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

func cappedConfidence01(c float64) float64 {
	if c > 1 {
		return 1
	}
	return c
}
