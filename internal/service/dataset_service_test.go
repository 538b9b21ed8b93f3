package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

type stubInternSource struct {
	records []models.InternRecord
	err     error
}

func (s stubInternSource) LoadInterns(context.Context) ([]models.InternRecord, error) {
	return s.records, s.err
}

func loadedDataset(t *testing.T, records []models.InternRecord) *DatasetService {
	t.Helper()
	svc := NewDatasetService(DatasetServiceParams{Source: stubInternSource{records: records}, Metrics: NewMetricsService()})
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestDatasetServiceLoadBuildsOptions(t *testing.T) {
	svc := loadedDataset(t, sampleInterns())

	assert.True(t, svc.Ready())
	assert.Len(t, svc.Version(), 16)

	opts, err := svc.Options()
	require.NoError(t, err)
	assert.Equal(t, []models.OptionCount{{Value: "Finance", Count: 2}, {Value: "HR", Count: 1}}, opts.Departments)
	assert.Equal(t, []models.OptionCount{{Value: "Completed", Count: 2}, {Value: "In Progress", Count: 1}}, opts.Statuses)
	require.NotNil(t, opts.DateMin)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), *opts.DateMin)
	assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), *opts.DateMax)
	assert.Equal(t, 3, opts.Records)

	defaults := svc.DefaultCriteria()
	assert.Equal(t, []string{"Finance", "HR"}, defaults.Departments)
	assert.Len(t, analytics.Filter(svc.Records(), defaults), 3)

	rec, ok := svc.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "Budi", rec.Name)
	_, ok = svc.Lookup(99)
	assert.False(t, ok)
}

func TestDatasetServiceRejectsDuplicateIDs(t *testing.T) {
	records := sampleInterns()
	records[2].InternID = 1
	svc := NewDatasetService(DatasetServiceParams{Source: stubInternSource{records: records}})

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intern id 1")
	assert.False(t, svc.Ready())
}

func TestDatasetServiceLoadPropagatesSourceErrors(t *testing.T) {
	cause := errors.New("no such file")
	svc := NewDatasetService(DatasetServiceParams{Source: stubInternSource{err: cause}})

	assert.ErrorIs(t, svc.Load(context.Background()), cause)
	_, err := svc.Options()
	assert.ErrorIs(t, err, appErrors.ErrDatasetUnavailable)
	_, _, err = svc.ResolveCriteria(dto.FilterQuery{})
	assert.ErrorIs(t, err, appErrors.ErrDatasetUnavailable)
}

func TestDatasetServiceResolveCriteria(t *testing.T) {
	svc := loadedDataset(t, sampleInterns())

	criteria, warnings, err := svc.ResolveCriteria(dto.FilterQuery{
		Departments: []string{"HR, Finance", "HR"},
		QualityMin:  ptr(2.5),
		From:        "2024-01-01",
		Search:      "  ana ",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"HR", "Finance"}, criteria.Departments)
	assert.Equal(t, []string{"Completed", "In Progress"}, criteria.Statuses)
	assert.Equal(t, 2.5, criteria.QualityMin)
	assert.Equal(t, 10.0, criteria.QualityMax)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), criteria.DateFrom)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), criteria.DateTo)
	assert.Equal(t, "ana", criteria.Search)
}

func TestDatasetServiceResolveCriteriaWarnsOnInvertedRanges(t *testing.T) {
	svc := loadedDataset(t, sampleInterns())

	_, warnings, err := svc.ResolveCriteria(dto.FilterQuery{From: "2024-03-01", To: "2024-01-01", QualityMin: ptr(8.0), QualityMax: ptr(3.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{analytics.WarningDateRange, analytics.WarningQualityRange}, warnings)
}

func TestDatasetServiceResolveCriteriaValidation(t *testing.T) {
	svc := loadedDataset(t, sampleInterns())

	_, _, err := svc.ResolveCriteria(dto.FilterQuery{QualityMax: ptr(11.0)})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.ResolveCriteria(dto.FilterQuery{From: "01/02/2024"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDatasetServiceDefaultCriteriaIsACopy(t *testing.T) {
	svc := loadedDataset(t, sampleInterns())

	c := svc.DefaultCriteria()
	c.Departments[0] = "mutated"

	assert.Equal(t, "Finance", svc.DefaultCriteria().Departments[0])
}
