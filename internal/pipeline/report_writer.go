package pipeline

import "threatlens/pkg/models"

// ReportWriter writes analysis reports.
type ReportWriter interface {
	WriteReport(report *models.AnalysisReport) error
	Close() error
}
