package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

const queryDateLayout = "2006-01-02"

type internSource interface {
	LoadInterns(ctx context.Context) ([]models.InternRecord, error)
}

// DatasetServiceParams groups constructor dependencies.
type DatasetServiceParams struct {
	Source  internSource
	Metrics *MetricsService
	Logger  *zap.Logger
}

// DatasetService owns the immutable intern dataset loaded at startup.
type DatasetService struct {
	source  internSource
	metrics *MetricsService
	logger  *zap.Logger

	mu      sync.RWMutex
	loaded  bool
	records []models.InternRecord
	byID    map[int]int
	options models.DatasetOptions
	version string
}

// NewDatasetService constructs a DatasetService.
func NewDatasetService(params DatasetServiceParams) *DatasetService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{source: params.Source, metrics: params.Metrics, logger: logger}
}

// Load reads the dataset once. Duplicate intern ids are rejected.
func (s *DatasetService) Load(ctx context.Context) error {
	start := time.Now()
	records, err := s.source.LoadInterns(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	byID := make(map[int]int, len(records))
	for i, r := range records {
		if prev, exists := byID[r.InternID]; exists {
			return fmt.Errorf("load dataset: intern id %d appears in rows %d and %d", r.InternID, prev+1, i+1)
		}
		byID[r.InternID] = i
	}

	version, err := fingerprint(records)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.byID = byID
	s.options = buildOptions(records)
	s.version = version
	s.loaded = true
	s.mu.Unlock()

	s.metrics.SetDatasetRecords(len(records))
	s.logger.Info("dataset loaded",
		zap.Int("records", len(records)),
		zap.Int("departments", len(s.options.Departments)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Ready reports whether the dataset has been loaded.
func (s *DatasetService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Records returns the dataset in source order. The slice must be treated as read-only.
func (s *DatasetService) Records() []models.InternRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Version identifies the loaded dataset content.
func (s *DatasetService) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Lookup finds a record by intern id.
func (s *DatasetService) Lookup(id int) (models.InternRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.InternRecord{}, false
	}
	return s.records[i], true
}

// Options describes the selectable filter values and the reset criteria.
func (s *DatasetService) Options() (models.DatasetOptions, error) {
	if !s.Ready() {
		return models.DatasetOptions{}, appErrors.ErrDatasetUnavailable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options, nil
}

// DefaultCriteria selects every department and status, the full quality scale and the
// dataset's assignment date span.
func (s *DatasetService) DefaultCriteria() models.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCriteria(s.options.Defaults)
}

// ResolveCriteria turns raw query parameters into FilterCriteria. Omitted parameters take
// their default value. Inverted ranges are returned as warnings rather than errors.
func (s *DatasetService) ResolveCriteria(q dto.FilterQuery) (models.FilterCriteria, []string, error) {
	if !s.Ready() {
		return models.FilterCriteria{}, nil, appErrors.ErrDatasetUnavailable
	}
	criteria := s.DefaultCriteria()

	if departments := splitValues(q.Departments); len(departments) > 0 {
		criteria.Departments = departments
	}
	if statuses := splitValues(q.Statuses); len(statuses) > 0 {
		criteria.Statuses = statuses
	}
	if q.QualityMin != nil {
		criteria.QualityMin = *q.QualityMin
	}
	if q.QualityMax != nil {
		criteria.QualityMax = *q.QualityMax
	}
	if err := checkQualityBound("qualityMin", criteria.QualityMin); err != nil {
		return models.FilterCriteria{}, nil, err
	}
	if err := checkQualityBound("qualityMax", criteria.QualityMax); err != nil {
		return models.FilterCriteria{}, nil, err
	}

	var err error
	if q.From != "" {
		if criteria.DateFrom, err = parseQueryDate("from", q.From); err != nil {
			return models.FilterCriteria{}, nil, err
		}
	}
	if q.To != "" {
		if criteria.DateTo, err = parseQueryDate("to", q.To); err != nil {
			return models.FilterCriteria{}, nil, err
		}
	}
	criteria.Search = strings.TrimSpace(q.Search)

	return criteria, analytics.RangeWarnings(criteria), nil
}

func checkQualityBound(name string, v float64) error {
	if v < models.QualityScoreMin || v > models.QualityScoreMax {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%s must be between %g and %g", name, models.QualityScoreMin, models.QualityScoreMax))
	}
	return nil
}

func parseQueryDate(name, raw string) (time.Time, error) {
	t, err := time.Parse(queryDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", name))
	}
	return t, nil
}

func splitValues(raw []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			v := strings.TrimSpace(part)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func buildOptions(records []models.InternRecord) models.DatasetOptions {
	departments := map[string]int{}
	statuses := map[string]int{}
	var minDate, maxDate *time.Time
	for _, r := range records {
		departments[r.Department]++
		statuses[r.Status]++
		if r.AssignedAt == nil {
			continue
		}
		if minDate == nil || r.AssignedAt.Before(*minDate) {
			d := *r.AssignedAt
			minDate = &d
		}
		if maxDate == nil || r.AssignedAt.After(*maxDate) {
			d := *r.AssignedAt
			maxDate = &d
		}
	}

	opts := models.DatasetOptions{
		Departments: sortedCounts(departments),
		Statuses:    sortedCounts(statuses),
		DateMin:     minDate,
		DateMax:     maxDate,
		QualityMin:  models.QualityScoreMin,
		QualityMax:  models.QualityScoreMax,
		Records:     len(records),
	}
	opts.Defaults = models.FilterCriteria{
		Departments: optionValues(opts.Departments),
		Statuses:    optionValues(opts.Statuses),
		QualityMin:  models.QualityScoreMin,
		QualityMax:  models.QualityScoreMax,
	}
	if minDate != nil {
		opts.Defaults.DateFrom = *minDate
		opts.Defaults.DateTo = *maxDate
	}
	return opts
}

func sortedCounts(counts map[string]int) []models.OptionCount {
	out := make([]models.OptionCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, models.OptionCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

func optionValues(options []models.OptionCount) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}

func cloneCriteria(c models.FilterCriteria) models.FilterCriteria {
	c.Departments = append([]string(nil), c.Departments...)
	c.Statuses = append([]string(nil), c.Statuses...)
	return c
}

func fingerprint(records []models.InternRecord) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(records); err != nil {
		return "", fmt.Errorf("fingerprint dataset: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
