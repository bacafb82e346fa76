package analyzer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"threatlens/pkg/models"
)

// LoadIncidentsJSONL reads incident records from a JSONL file. Blank and
// unparseable lines are skipped.
func LoadIncidentsJSONL(path string) ([]models.Incident, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	incidents := make([]models.Incident, 0, 1024)
	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 8*1024*1024)

	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		var inc models.Incident
		if err := json.Unmarshal([]byte(line), &inc); err != nil {
			continue
		}
		incidents = append(incidents, inc)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return incidents, nil
}
