package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cerno-sec/cerno/coverage"
	"github.com/cerno-sec/cerno/finding"
)

// JobQueue is the Redis list holding pending analysis jobs.
const JobQueue = "cerno:jobs"

// ResultChannel returns the pub/sub channel carrying results for a job.
func ResultChannel(jobID string) string {
	return "cerno:results:" + jobID
}

// Job represents a scan analysis request submitted to the queue. It carries
// the scan's findings and tracing context so workers can link their spans
// to the submitter's trace.
type Job struct {
	// ID is a UUID identifying this job.
	ID string `json:"id"`

	// ScanID identifies the scan whose findings are analyzed.
	ScanID string `json:"scan_id"`

	// Findings are the scan's findings, with their raw endpoint lines.
	Findings []*finding.Finding `json:"findings"`

	// TraceID is the hex-encoded distributed tracing trace ID, if any.
	TraceID string `json:"trace_id,omitempty"`

	// SpanID is the hex-encoded parent span ID, if any.
	SpanID string `json:"span_id,omitempty"`

	// SubmittedAt is the Unix timestamp in milliseconds when the job was
	// submitted.
	SubmittedAt int64 `json:"submitted_at"`
}

// NewJob creates a Job for the scan's findings with a fresh ID and the
// current submission time.
func NewJob(scanID string, findings []*finding.Finding) Job {
	return Job{
		ID:          uuid.New().String(),
		ScanID:      scanID,
		Findings:    findings,
		SubmittedAt: time.Now().UnixMilli(),
	}
}

// IsValid checks that the job has all required fields populated. It returns
// an error describing the first validation failure.
func (j *Job) IsValid() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.ScanID == "" {
		return fmt.Errorf("scan_id is required")
	}
	if len(j.Findings) == 0 {
		return fmt.Errorf("job has no findings")
	}
	return nil
}

// JobResult represents the outcome of analyzing a Job. It is published to
// the job's result channel for the submitter to collect.
type JobResult struct {
	// JobID correlates this result with the original job.
	JobID string `json:"job_id"`

	// ScanID echoes the job's scan.
	ScanID string `json:"scan_id"`

	// Analysis is the coverage analysis. Nil if Error is set.
	Analysis *coverage.Analysis `json:"analysis,omitempty"`

	// Error is the error message if analysis failed.
	Error string `json:"error,omitempty"`

	// WorkerID identifies the worker that processed the job.
	WorkerID string `json:"worker_id"`

	// StartedAt and CompletedAt are Unix timestamps in milliseconds.
	StartedAt   int64 `json:"started_at"`
	CompletedAt int64 `json:"completed_at"`
}

// Succeeded reports whether the job was analyzed without error.
func (r *JobResult) Succeeded() bool {
	return r.Error == ""
}
