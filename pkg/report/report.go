// Package report aggregates per-file lint results into a batch report
// and renders it as JSON artifacts, markdown or a terminal table.
package report

import (
	"time"

	"github.com/kvarta-studio/kontra/pkg/lint"
)

// Summary is the batch-level rollup.
type Summary struct {
	Total         int     `json:"total_files"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Errors        int     `json:"errors"`
	Warnings      int     `json:"warnings"`
	PassRate      float64 `json:"pass_rate"`
	SchemaVersion string  `json:"schema_version,omitempty"`
	GeneratedAt   string  `json:"generated_at"`
}

// Report is the full batch outcome: one result per validated file plus
// the rollup. Results arrive sorted by path, so serializing a report
// twice yields identical bytes apart from the timestamp.
type Report struct {
	Summary Summary        `json:"summary"`
	Results []*lint.Result `json:"results"`
}

// New computes the rollup over the given results.
func New(results []*lint.Result, schemaVersion string) *Report {
	s := Summary{
		Total:         len(results),
		SchemaVersion: schemaVersion,
		GeneratedAt:   time.Now().Format(time.RFC3339),
	}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Errors += r.Errors()
		s.Warnings += r.Warnings()
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}
	return &Report{Summary: s, Results: results}
}

// ExitCode maps the batch outcome to the process exit code: 0 when every
// file passed, 1 when any failed. Code 2 is reserved for run-level
// failures (unreadable schema, bad arguments) and is the caller's call.
func (r *Report) ExitCode() int {
	if r.Summary.Failed > 0 {
		return 1
	}
	return 0
}
