package models

import (
	"time"

	"github.com/google/uuid"
)

// IngestStatus classifies the terminal result of one upload
type IngestStatus string

const (
	IngestOK               IngestStatus = "ok"
	IngestPartialFailure   IngestStatus = "PartialFailure"
	IngestValidationFailed IngestStatus = "ValidationFailed"
)

// MaxFailureSample bounds the failed-row detail returned to callers and
// stored in the audit log
const MaxFailureSample = 20

// FieldError describes one invalid field of one row
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FailedRowReport is a row that failed validation
type FailedRowReport struct {
	Row    int          `json:"row"`
	Data   RawRecord    `json:"data"`
	Errors []FieldError `json:"errors"`
}

// BatchError records a failed upsert batch (1-based)
type BatchError struct {
	Batch int    `json:"batch"`
	Error string `json:"error"`
}

// IngestOutcome is the result of ingesting one file
type IngestOutcome struct {
	Status      IngestStatus      `json:"-"`
	OK          bool              `json:"ok"`
	Processed   int               `json:"processed"`
	Upserted    int               `json:"upserted"`
	Failed      int               `json:"failed"`
	BatchErrors []BatchError      `json:"batchErrors,omitempty"`
	Details     []FailedRowReport `json:"details,omitempty"`
}

// SampleFailures returns at most MaxFailureSample reports
func SampleFailures(failed []FailedRowReport) []FailedRowReport {
	if len(failed) > MaxFailureSample {
		return failed[:MaxFailureSample]
	}
	return failed
}

// IngestLog is the audit entry written once per ingestion attempt
type IngestLog struct {
	ID         uuid.UUID         `json:"id"`
	Filename   string            `json:"filename"`
	Processed  int               `json:"processed"`
	Inserted   int               `json:"inserted"`
	Updated    int               `json:"updated"`
	FailedRows []FailedRowReport `json:"failed_rows,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewIngestLog creates an audit entry with a generated ID and timestamp
func NewIngestLog(filename string, processed, inserted int, failed []FailedRowReport) *IngestLog {
	return &IngestLog{
		ID:         uuid.New(),
		Filename:   filename,
		Processed:  processed,
		Inserted:   inserted,
		FailedRows: SampleFailures(failed),
		CreatedAt:  time.Now().UTC(),
	}
}
