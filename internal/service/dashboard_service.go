package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

type datasetReader interface {
	Records() []models.InternRecord
	Version() string
}

const summaryKeyPrefix = "dash:summary:"

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	TopPerformersLimit int
}

// DashboardService composes dashboard payloads from the filtered view.
type DashboardService struct {
	dataset datasetReader
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Dataset datasetReader
	Cache   *CacheService
	Logger  *zap.Logger
	Config  DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopPerformersLimit <= 0 {
		cfg.TopPerformersLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		dataset: params.Dataset,
		cache:   params.Cache,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Summary returns the full dashboard for criteria and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context, criteria models.FilterCriteria) (*models.DashboardSummary, bool, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", summaryKeyPrefix, s.dataset.Version(), HashKey(criteria))
	if summary, hit, err := s.trySummaryCache(ctx, cacheKey); err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
	} else if hit {
		return summary, true, nil
	}

	view := analytics.Filter(s.dataset.Records(), criteria)
	summary := &models.DashboardSummary{
		Criteria:             criteria,
		KPIs:                 analytics.ComputeKPIs(view),
		Monthly:              analytics.MonthlySummary(view),
		Departments:          analytics.DepartmentSummary(view),
		TopPerformers:        analytics.TopPerformers(view, s.cfg.TopPerformersLimit),
		FeedbackDistribution: analytics.FeedbackDistribution(view),
		GeneratedAt:          s.now().UTC(),
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Monthly returns the monthly aggregates of the filtered view.
func (s *DashboardService) Monthly(criteria models.FilterCriteria) []models.MonthlyAggregate {
	return analytics.MonthlySummary(analytics.Filter(s.dataset.Records(), criteria))
}

// Departments returns the department aggregates of the filtered view.
func (s *DashboardService) Departments(criteria models.FilterCriteria) []models.DepartmentAggregate {
	return analytics.DepartmentSummary(analytics.Filter(s.dataset.Records(), criteria))
}

// PurgeCache drops every cached summary. Called at startup so entries computed from an
// earlier dataset version do not linger until their TTL.
func (s *DashboardService) PurgeCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, summaryKeyPrefix+"*")
}

func (s *DashboardService) trySummaryCache(ctx context.Context, key string) (*models.DashboardSummary, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached models.DashboardSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return &cached, true, nil
	}
	return nil, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
