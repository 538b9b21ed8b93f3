package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

var exportJobRowColumns = []string{"id", "kind", "format", "criteria", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}

func newExportJobRepoMock(t *testing.T) (*ExportJobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewExportJobRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestExportJobRepositoryCreateAndGet(t *testing.T) {
	repo, mock := newExportJobRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO export_jobs")).
		WithArgs(sqlmock.AnyArg(), "interns", "csv", sqlmock.AnyArg(), "QUEUED", 0, nil, "mentor@example.com", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{
		Kind:      models.ExportKindInterns,
		Format:    models.ExportFormatCSV,
		Criteria:  &models.FilterCriteria{Departments: []string{"HR"}, QualityMax: 10},
		CreatedBy: "mentor@example.com",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows(exportJobRowColumns).
		AddRow(job.ID, "interns", "csv", []byte(`{"departments":["HR"],"statuses":null,"quality_min":0,"quality_max":10}`), "QUEUED", 0, nil, "mentor@example.com", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportKindInterns, fetched.Kind)
	require.NotNil(t, fetched.Criteria)
	assert.Equal(t, []string{"HR"}, fetched.Criteria.Departments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryGetMissing(t *testing.T) {
	repo, mock := newExportJobRepoMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestExportJobRepositoryUpdate(t *testing.T) {
	repo, mock := newExportJobRepoMock(t)

	now := time.Now()
	status := models.ExportStatusFinished
	progress := 100
	result := "/api/v1/exports/download/token"
	cleared := ""
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, progress = $2, result_url = $3, error_message = NULLIF($4, ''), finished_at = $5 WHERE id = $6")).
		WithArgs(status, progress, result, cleared, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{
		Status:       &status,
		Progress:     &progress,
		ResultURL:    &result,
		ErrorMessage: &cleared,
		FinishedAt:   &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListFinishedBeforeAndDelete(t *testing.T) {
	repo, mock := newExportJobRepoMock(t)

	cutoff := time.Now()
	finished := cutoff.Add(-2 * time.Hour)
	rows := sqlmock.NewRows(exportJobRowColumns).
		AddRow("job-1", "notes", "json", nil, "FINISHED", 100, "/x", "", finished.Add(-time.Minute), finished, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(cutoff, 50).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM export_jobs WHERE id = $1")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Nil(t, jobs[0].Criteria)
	assert.Equal(t, models.ExportStatusFinished, jobs[0].Status)

	require.NoError(t, repo.Delete(context.Background(), "job-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
