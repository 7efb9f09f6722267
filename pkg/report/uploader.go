package report

import (
	"strings"

	"github.com/ShadowGuardAI/codeintel-timing-attack-analyzer/pkg/analysis"
)

// Uploader sends a flattened verdict record to a storage backend.
type Uploader interface {
	SendVerdict(record Record) error
}

// Record is the storage-friendly form of a verdict, flattened so that row
// oriented backends can persist it without understanding analysis types.
type Record struct {
	RunID         string
	RunName       string
	Statistic     float64
	EffectSize    float64
	Threshold     float64
	Vulnerable    bool
	MostSeparated string
	Classes       []ClassRecord
}

// ClassRecord is one class summary row. Durations are stored as nanoseconds
// so backends sort and aggregate them natively.
type ClassRecord struct {
	RunID    string
	Class    string
	Count    int
	Dropped  int
	MedianNs int64
	MADNs    int64
	MeanNs   int64
	StdDevNs int64
	MinNs    int64
	MaxNs    int64
}

// NewRecord flattens a report into its storage form.
func NewRecord(report Report) Record {
	record := Record{
		RunID:         report.Session.ID,
		RunName:       report.Session.Name,
		Statistic:     report.Verdict.Statistic,
		EffectSize:    report.Verdict.EffectSize,
		Threshold:     report.Verdict.Threshold,
		Vulnerable:    report.Verdict.Vulnerable,
		MostSeparated: strings.Join(report.Verdict.MostSeparated[:], " vs "),
	}
	for _, class := range report.Verdict.Classes {
		record.Classes = append(record.Classes, newClassRecord(report.Session.ID, class))
	}
	return record
}

func newClassRecord(runID string, summary analysis.ClassSummary) ClassRecord {
	return ClassRecord{
		RunID:    runID,
		Class:    summary.Class,
		Count:    summary.Count,
		Dropped:  summary.Dropped,
		MedianNs: summary.Median.Nanoseconds(),
		MADNs:    summary.MAD.Nanoseconds(),
		MeanNs:   summary.Mean.Nanoseconds(),
		StdDevNs: summary.StdDev.Nanoseconds(),
		MinNs:    summary.Min.Nanoseconds(),
		MaxNs:    summary.Max.Nanoseconds(),
	}
}
