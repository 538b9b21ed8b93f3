package dto

import "github.com/noah-isme/intern-dashboard-api/internal/models"

// ExportRequest enqueues an asynchronous export.
type ExportRequest struct {
	Kind   models.ExportKind   `json:"kind" validate:"required,oneof=interns notes"`
	Format models.ExportFormat `json:"format" validate:"required,oneof=csv json pdf"`
	Filter *FilterQuery        `json:"filter"`
}

// ExportJobResponse acknowledges a queued export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports export progress and the signed download link once finished.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Kind      models.ExportKind   `json:"kind"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
