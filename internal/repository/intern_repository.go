package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// InternRepository loads intern performance records from a Postgres table.
type InternRepository struct {
	db    *sqlx.DB
	table string
}

// NewInternRepository constructs an InternRepository reading from table.
func NewInternRepository(db *sqlx.DB, table string) (*InternRepository, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid dataset table name %q", table)
	}
	return &InternRepository{db: db, table: table}, nil
}

// LoadInterns returns every row ordered by intern id.
func (r *InternRepository) LoadInterns(ctx context.Context) ([]models.InternRecord, error) {
	query := fmt.Sprintf(`SELECT intern_id, intern_name, department, completion_status, project_quality_score,
        mentor_feedback_score, task_completion_days, date_of_assignment, date_of_completion, COALESCE(month, '') AS month
        FROM %s ORDER BY intern_id`, r.table)

	var records []models.InternRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("load interns: %w", err)
	}
	for i := range records {
		normalizeDates(&records[i])
		normalizeMonth(&records[i])
	}
	return records, nil
}

func normalizeDates(record *models.InternRecord) {
	if record.AssignedAt != nil {
		d := analytics.DateOnly(record.AssignedAt.UTC())
		record.AssignedAt = &d
	}
	if record.CompletedAt != nil {
		d := analytics.DateOnly(record.CompletedAt.UTC())
		record.CompletedAt = &d
	}
}
