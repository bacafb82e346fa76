package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"threatlens/config"
	"threatlens/internal/analyzer"
	"threatlens/internal/input/redisincidents"
	"threatlens/internal/logger"
	"threatlens/internal/metrics"
	"threatlens/internal/output/reporthttp"
	"threatlens/internal/output/reportjson"
	"threatlens/internal/pipeline"
	"threatlens/internal/scoring"
	"threatlens/pkg/models"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("threatlens.yml"); err == nil {
		return "threatlens.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "threatlens.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "threatlens.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.ThreatLens.Input.Redis.Addr == "" {
		cfg.ThreatLens.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.ThreatLens.Input.Redis.Key == "" {
		cfg.ThreatLens.Input.Redis.Key = "incidents"
	}
	if cfg.ThreatLens.Input.Redis.BlockTimeout == 0 {
		cfg.ThreatLens.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if cfg.ThreatLens.Analysis.WindowDays <= 0 {
		cfg.ThreatLens.Analysis.WindowDays = 90
	}
	if cfg.ThreatLens.Analysis.FlushInterval <= 0 {
		cfg.ThreatLens.Analysis.FlushInterval = 1 * time.Minute
	}

	if cfg.ThreatLens.Output.Mode == "" {
		cfg.ThreatLens.Output.Mode = "file"
	}
	if cfg.ThreatLens.Output.File.Path == "" {
		cfg.ThreatLens.Output.File.Path = "output/reports.jsonl"
	}

	if cfg.ThreatLens.Metrics.Addr == "" {
		cfg.ThreatLens.Metrics.Addr = "127.0.0.1:9205"
	}

	if cfg.ThreatLens.Logging.Level == "" {
		cfg.ThreatLens.Logging.Level = "info"
	}
}

func runStream(args []string) {
	configArg := ""
	if len(args) > 0 {
		configArg = args[0]
	}

	configPath := findConfigFile(configArg)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyDefaults(cfg)

	if err := logger.Init(cfg.ThreatLens.Logging.Enabled, cfg.ThreatLens.Logging.Level, cfg.ThreatLens.Logging.File, cfg.ThreatLens.Logging.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("ThreatLens starting")
	logger.Infof("Config loaded from: %s", configPath)

	consumer, err := redisincidents.NewConsumer(redisincidents.Config{
		Addr:         cfg.ThreatLens.Input.Redis.Addr,
		Password:     cfg.ThreatLens.Input.Redis.Password,
		DB:           cfg.ThreatLens.Input.Redis.DB,
		Key:          cfg.ThreatLens.Input.Redis.Key,
		BlockTimeout: cfg.ThreatLens.Input.Redis.BlockTimeout,
	})
	if err != nil {
		logger.Errorf("Failed to create Redis consumer: %v", err)
		log.Fatalf("Failed to create Redis consumer: %v", err)
	}

	writer, err := newReportWriter(cfg)
	if err != nil {
		logger.Errorf("Failed to create report writer: %v", err)
		log.Fatalf("Failed to create report writer: %v", err)
	}

	includeTypes, err := parsePatternTypes(cfg.ThreatLens.Analysis.IncludeTypes)
	if err != nil {
		log.Fatalf("Invalid include_types: %v", err)
	}

	reportOpts, err := reportOptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to prepare scoring options: %v", err)
	}

	a := analyzer.New(nil, analyzer.Config{
		MinOccurrences: cfg.ThreatLens.Analysis.MinOccurrences,
		ClusterWindow:  cfg.ThreatLens.Analysis.ClusterWindow,
		CampaignGap:    cfg.ThreatLens.Analysis.CampaignGap,
		BaselineDays:   cfg.ThreatLens.Analysis.BaselineDays,
		ZThreshold:     cfg.ThreatLens.Analysis.ZThreshold,
	})

	stream := pipeline.NewStream(consumer, a, writer, pipeline.Config{
		WindowDays:    cfg.ThreatLens.Analysis.WindowDays,
		FlushInterval: cfg.ThreatLens.Analysis.FlushInterval,
		IncludeTypes:  includeTypes,
		Report:        reportOpts,
	})

	if cfg.ThreatLens.Metrics.Enabled {
		go func() {
			logger.Infof("Metrics endpoint listening on %s", cfg.ThreatLens.Metrics.Addr)
			if err := metrics.Serve(cfg.ThreatLens.Metrics.Addr); err != nil {
				logger.Errorf("Metrics endpoint stopped: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := stream.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	cancel()
	time.Sleep(1 * time.Second)

	if err := stream.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}

	logger.Infof("ThreatLens stopped")
}

func runAnalyze(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	input := fs.String("input", "output/incidents.jsonl", "Incident JSONL input path")
	output := fs.String("output", "output/reports.jsonl", "Report JSONL output path")
	days := fs.Int("days", 90, "Analysis window in days")
	minOccurrences := fs.Int("min-occurrences", 3, "Minimum pair/chain occurrence count")
	clusterWindow := fs.Duration("cluster-window", 24*time.Hour, "Temporal cluster window width")
	campaignGap := fs.Duration("campaign-gap", 7*24*time.Hour, "Maximum gap inside one campaign")
	baselineDays := fs.Int("baseline-days", 30, "Anomaly baseline length in days")
	zThreshold := fs.Float64("z-threshold", 2.0, "Absolute z-score cutoff for anomalies")
	types := fs.String("types", "", "Comma-separated pattern types to run (default all)")
	weightsFile := fs.String("weights", "", "YAML file with scoring weight overrides")
	scoreActors := fs.Bool("score-actors", false, "Attach actor score breakdowns to the report")
	profileSector := fs.String("profile-sector", "", "Organization sector for relevance factors")
	profileCountry := fs.String("profile-country", "", "Organization country for relevance factors")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	incidents, err := analyzer.LoadIncidentsJSONL(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load incidents: %v\n", err)
		return 1
	}

	includeTypes, err := parsePatternTypes(splitList(*types))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -types: %v\n", err)
		return 2
	}

	var overrides map[string]map[string]float64
	if strings.TrimSpace(*weightsFile) != "" {
		overrides, err = scoring.LoadWeightOverrides(*weightsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load weight overrides: %v\n", err)
			return 1
		}
	}

	var profile *models.OrgProfile
	if *profileSector != "" || *profileCountry != "" {
		profile = &models.OrgProfile{Sector: *profileSector, Country: *profileCountry}
	}

	a := analyzer.New(nil, analyzer.Config{
		MinOccurrences: *minOccurrences,
		ClusterWindow:  *clusterWindow,
		CampaignGap:    *campaignGap,
		BaselineDays:   *baselineDays,
		ZThreshold:     *zThreshold,
	})

	res, err := a.AnalyzeIncidents(incidents, analyzer.Options{Days: *days, IncludeTypes: includeTypes})
	if err != nil && res == nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis completed with detector errors: %v\n", err)
	}

	report := pipeline.BuildReport(res, incidents, pipeline.ReportOptions{
		ScoreActors:     *scoreActors,
		Profile:         profile,
		WeightOverrides: overrides,
	})

	writer, err := reportjson.NewWriter(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create report writer: %v\n", err)
		return 1
	}
	defer writer.Close()

	if err := writer.WriteReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		return 1
	}

	fmt.Printf("analyzed incidents=%d patterns=%d recommendations=%d output=%s\n",
		res.Summary.TotalIncidents, res.Summary.PatternCount, len(report.Recommendations), *output)
	return 0
}

func newReportWriter(cfg *config.Config) (pipeline.ReportWriter, error) {
	switch cfg.ThreatLens.Output.Mode {
	case "file":
		w, err := reportjson.NewWriter(cfg.ThreatLens.Output.File.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof("Report output mode: file (%s)", cfg.ThreatLens.Output.File.Path)
		return w, nil
	case "http":
		w, err := reporthttp.NewWriter(reporthttp.Config{
			URL:     cfg.ThreatLens.Output.HTTP.URL,
			Timeout: cfg.ThreatLens.Output.HTTP.Timeout,
			Headers: cfg.ThreatLens.Output.HTTP.Headers,
		})
		if err != nil {
			return nil, err
		}
		logger.Infof("Report output mode: http (%s)", cfg.ThreatLens.Output.HTTP.URL)
		return w, nil
	default:
		return nil, fmt.Errorf("unknown output mode: %s", cfg.ThreatLens.Output.Mode)
	}
}

func reportOptionsFromConfig(cfg *config.Config) (pipeline.ReportOptions, error) {
	opts := pipeline.ReportOptions{ScoreActors: cfg.ThreatLens.Scoring.ScoreActors}

	p := cfg.ThreatLens.Scoring.Profile
	if p.Sector != "" || p.Region != "" || p.Country != "" || len(p.TechVendors) > 0 {
		opts.Profile = &models.OrgProfile{
			Sector:      p.Sector,
			Region:      p.Region,
			Country:     p.Country,
			TechVendors: p.TechVendors,
		}
	}

	if path := strings.TrimSpace(cfg.ThreatLens.Scoring.WeightsPath); path != "" {
		overrides, err := scoring.LoadWeightOverrides(path)
		if err != nil {
			return opts, err
		}
		opts.WeightOverrides = overrides
	}

	return opts, nil
}

func parsePatternTypes(raw []string) ([]models.PatternType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	known := make(map[models.PatternType]bool, 6)
	for _, t := range models.AllPatternTypes() {
		known[t] = true
	}
	out := make([]models.PatternType, 0, len(raw))
	for _, v := range raw {
		t := models.PatternType(strings.TrimSpace(v))
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, fmt.Errorf("unknown pattern type %q", t)
		}
		out = append(out, t)
	}
	return out, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: threatlens <stream|analyze> [args]\n")
	fmt.Fprintf(os.Stderr, "  stream [config]   Consume incidents from Redis and emit reports continuously\n")
	fmt.Fprintf(os.Stderr, "  analyze [flags]   One-shot analysis of an incident JSONL file\n")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "stream":
			runStream(os.Args[2:])
			return
		case "analyze":
			os.Exit(runAnalyze(os.Args[2:]))
		default:
			// Backward-compatible mode: first arg is config path.
			runStream(os.Args[1:])
			return
		}
	}
	usage()
	os.Exit(2)
}
