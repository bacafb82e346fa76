package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	ThreatLens ThreatLensConfig `yaml:"threatlens"`
}

// ThreatLensConfig is the project configuration.
type ThreatLensConfig struct {
	Input    InputConfig    `yaml:"input"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig controls the incident input reader.
type InputConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls the Redis incident queue.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// AnalysisConfig controls detector thresholds and the streaming window.
type AnalysisConfig struct {
	WindowDays     int           `yaml:"window_days"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	MinOccurrences int           `yaml:"min_occurrences"`
	ClusterWindow  time.Duration `yaml:"cluster_window"`
	CampaignGap    time.Duration `yaml:"campaign_gap"`
	BaselineDays   int           `yaml:"baseline_days"`
	ZThreshold     float64       `yaml:"z_threshold"`
	IncludeTypes   []string      `yaml:"include_types"`
}

// ScoringConfig controls actor scoring in emitted reports.
type ScoringConfig struct {
	ScoreActors bool          `yaml:"score_actors"`
	WeightsPath string        `yaml:"weights_path"`
	Profile     ProfileConfig `yaml:"profile"`
}

// ProfileConfig describes the organization scores are computed for.
type ProfileConfig struct {
	Sector      string   `yaml:"sector"`
	Region      string   `yaml:"region"`
	Country     string   `yaml:"country"`
	TechVendors []string `yaml:"tech_vendors"`
}

// OutputConfig controls report output.
type OutputConfig struct {
	Mode string           `yaml:"mode"` // file|http
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
}

// FileOutputConfig config for local JSONL output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
