package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

const exportJobColumns = `id, kind, format, criteria, status, progress, result_url, created_by, created_at, finished_at, error_message`

// ExportJobRepository persists export job metadata in Postgres so job status survives restarts.
type ExportJobRepository struct {
	db *sqlx.DB
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

type exportJobRow struct {
	ID           string              `db:"id"`
	Kind         models.ExportKind   `db:"kind"`
	Format       models.ExportFormat `db:"format"`
	Criteria     []byte              `db:"criteria"`
	Status       models.ExportStatus `db:"status"`
	Progress     int                 `db:"progress"`
	ResultURL    *string             `db:"result_url"`
	CreatedBy    string              `db:"created_by"`
	CreatedAt    time.Time           `db:"created_at"`
	FinishedAt   *time.Time          `db:"finished_at"`
	ErrorMessage *string             `db:"error_message"`
}

func (row exportJobRow) toModel() (models.ExportJob, error) {
	job := models.ExportJob{
		ID:           row.ID,
		Kind:         row.Kind,
		Format:       row.Format,
		Status:       row.Status,
		Progress:     row.Progress,
		ResultURL:    row.ResultURL,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
		FinishedAt:   row.FinishedAt,
		ErrorMessage: row.ErrorMessage,
	}
	if len(row.Criteria) > 0 {
		var criteria models.FilterCriteria
		if err := json.Unmarshal(row.Criteria, &criteria); err != nil {
			return models.ExportJob{}, fmt.Errorf("decode export criteria: %w", err)
		}
		job.Criteria = &criteria
	}
	return job, nil
}

// Create inserts a new export job row with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	row := exportJobRow{
		ID:           job.ID,
		Kind:         job.Kind,
		Format:       job.Format,
		Status:       job.Status,
		Progress:     job.Progress,
		ResultURL:    job.ResultURL,
		CreatedBy:    job.CreatedBy,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
		ErrorMessage: job.ErrorMessage,
	}
	if job.Criteria != nil {
		encoded, err := json.Marshal(job.Criteria)
		if err != nil {
			return fmt.Errorf("encode export criteria: %w", err)
		}
		row.Criteria = encoded
	}
	const query = `INSERT INTO export_jobs (id, kind, format, criteria, status, progress, result_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :kind, :format, :criteria, :status, :progress, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier. Unknown ids wrap sql.ErrNoRows.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := `SELECT ` + exportJobColumns + ` FROM export_jobs WHERE id = $1`
	var row exportJobRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	job, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update persists the provided changes for a job row. An empty error message clears the column.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = NULLIF($%d, '')", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE export_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// ListFinishedBefore retrieves completed or failed jobs prior to cutoff for cleanup.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + exportJobColumns + ` FROM export_jobs
WHERE finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`
	var rows []exportJobRow
	if err := r.db.SelectContext(ctx, &rows, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	jobs := make([]models.ExportJob, 0, len(rows))
	for _, row := range rows {
		job, err := row.toModel()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Delete removes a job row.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete export job: %w", err)
	}
	return nil
}
