package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

// UpdateExportJobParams describes mutable job fields. Nil fields are left unchanged.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// ExportJobStore keeps export job metadata in memory for the lifetime of the process.
type ExportJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
	now  func() time.Time
}

// NewExportJobStore constructs an empty store.
func NewExportJobStore() *ExportJobStore {
	return &ExportJobStore{jobs: map[string]*models.ExportJob{}, now: time.Now}
}

// Create assigns an id and creation time, then stores the job.
func (s *ExportJobStore) Create(ctx context.Context, job *models.ExportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now().UTC()
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetByID returns a copy of the job or sql.ErrNoRows when unknown.
func (s *ExportJobStore) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneJob(job), nil
}

// Update applies the non-nil fields of params.
func (s *ExportJobStore) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		if *params.ErrorMessage == "" {
			job.ErrorMessage = nil
		} else {
			msg := *params.ErrorMessage
			job.ErrorMessage = &msg
		}
	}
	if params.FinishedAt != nil {
		at := *params.FinishedAt
		job.FinishedAt = &at
	}
	return nil
}

// ListFinishedBefore returns finished or failed jobs completed before cutoff, oldest first.
func (s *ExportJobStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ExportJob
	for _, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *cloneJob(job))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.Before(*out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete forgets a job.
func (s *ExportJobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func cloneJob(job *models.ExportJob) *models.ExportJob {
	cp := *job
	if job.Criteria != nil {
		c := *job.Criteria
		c.Departments = append([]string(nil), job.Criteria.Departments...)
		c.Statuses = append([]string(nil), job.Criteria.Statuses...)
		cp.Criteria = &c
	}
	if job.ResultURL != nil {
		v := *job.ResultURL
		cp.ResultURL = &v
	}
	if job.ErrorMessage != nil {
		v := *job.ErrorMessage
		cp.ErrorMessage = &v
	}
	if job.FinishedAt != nil {
		v := *job.FinishedAt
		cp.FinishedAt = &v
	}
	return &cp
}
