package models

import "time"

// ExportKind enumerates exportable content.
type ExportKind string

const (
	ExportKindInterns ExportKind = "interns"
	ExportKindNotes   ExportKind = "notes"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob tracks one asynchronous export.
type ExportJob struct {
	ID           string          `json:"id"`
	Kind         ExportKind      `json:"kind"`
	Format       ExportFormat    `json:"format"`
	Criteria     *FilterCriteria `json:"criteria,omitempty"`
	Status       ExportStatus    `json:"status"`
	Progress     int             `json:"progress"`
	ResultURL    *string         `json:"result_url,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}
