// Package pipeline runs the streaming analysis loop: incident payloads come
// off a Redis queue, decode workers feed a bounded in-memory window, and a
// flush ticker re-runs the pattern analyzer over the window and writes the
// resulting report.
package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"threatlens/internal/analyzer"
	"threatlens/internal/input/redisincidents"
	"threatlens/internal/logger"
	"threatlens/internal/metrics"
	"threatlens/pkg/models"
)

// Config controls streaming behavior.
type Config struct {
	Workers       int
	WindowDays    int
	FlushInterval time.Duration
	IncludeTypes  []models.PatternType
	Report        ReportOptions
}

// Stream consumes incidents from Redis and periodically re-analyzes the
// trailing window.
type Stream struct {
	consumer *redisincidents.Consumer
	analyzer *analyzer.Analyzer
	writer   ReportWriter
	cfg      Config
	now      func() time.Time

	mu     sync.Mutex
	window []models.Incident
}

// NewStream creates a streaming pipeline.
func NewStream(consumer *redisincidents.Consumer, a *analyzer.Analyzer, writer ReportWriter, cfg Config) *Stream {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 90
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 1 * time.Minute
	}
	return &Stream{
		consumer: consumer,
		analyzer: a,
		writer:   writer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run starts the pipeline loops and blocks until ctx is canceled.
func (s *Stream) Run(ctx context.Context) error {
	logger.Infof("Streaming analysis pipeline started")

	msgCh := make(chan []byte, s.cfg.Workers*4)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.readLoop(ctx, msgCh)
		close(msgCh)
	}()

	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.decodeLoop(msgCh)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.analyzeLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// Close releases pipeline resources.
func (s *Stream) Close() error {
	if s.writer != nil {
		if err := s.writer.Close(); err != nil {
			logger.Errorf("Failed to close report writer: %v", err)
		}
	}
	if s.consumer != nil {
		return s.consumer.Close()
	}
	return nil
}

func (s *Stream) readLoop(ctx context.Context, out chan<- []byte) {
	for {
		payload, err := s.consumer.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Failed to pop incident payload: %v", err)
			continue
		}
		if payload == nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		select {
		case out <- payload:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) decodeLoop(in <-chan []byte) {
	for payload := range in {
		var inc models.Incident
		if err := json.Unmarshal(payload, &inc); err != nil {
			metrics.DecodeFailures.Inc()
			logger.Warnf("Dropping undecodable incident payload: %v", err)
			continue
		}
		if inc.DiscoveredAt.IsZero() {
			inc.DiscoveredAt = s.now()
		}
		s.mu.Lock()
		s.window = append(s.window, inc)
		s.mu.Unlock()
		metrics.IncidentsConsumed.Inc()
	}
}

func (s *Stream) analyzeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.analyzeOnce()
		}
	}
}

func (s *Stream) analyzeOnce() {
	incidents := s.snapshotWindow()
	if len(incidents) == 0 {
		return
	}

	start := s.now()
	res, err := s.analyzer.AnalyzeIncidents(incidents, analyzer.Options{
		Days:         s.cfg.WindowDays,
		IncludeTypes: s.cfg.IncludeTypes,
	})
	if err != nil {
		logger.Errorf("Analysis run reported errors: %v", err)
	}
	if res == nil {
		metrics.ObserveRun(models.Summary{}, s.now().Sub(start), true)
		return
	}
	metrics.ObserveRun(res.Summary, s.now().Sub(start), err != nil)

	report := BuildReport(res, incidents, s.cfg.Report)
	if werr := s.writer.WriteReport(report); werr != nil {
		logger.Errorf("Failed to write report: %v", werr)
		return
	}
	logger.Infof("Report %s written: incidents=%d patterns=%d", report.RunID, res.Summary.TotalIncidents, res.Summary.PatternCount)
}

// snapshotWindow prunes records older than the analysis window and returns a
// copy of what remains.
func (s *Stream) snapshotWindow() []models.Incident {
	cutoff := s.now().AddDate(0, 0, -s.cfg.WindowDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.window[:0]
	for _, inc := range s.window {
		if inc.DiscoveredAt.Before(cutoff) {
			continue
		}
		kept = append(kept, inc)
	}
	s.window = kept

	out := make([]models.Incident, len(kept))
	copy(out, kept)
	return out
}
