package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

type memoryCacheRepo struct {
	store  map[string][]byte
	getErr error
	ttls   map[string]time.Duration
}

func (s *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
		s.ttls = make(map[string]time.Duration)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	s.ttls[key] = ttl
	return nil
}

func (s *memoryCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), false)
	var dest string

	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.False(t, svc.Enabled())
}

func TestCacheServiceRoundTripAndDefaultTTL(t *testing.T) {
	repo := &memoryCacheRepo{}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, zap.NewNop(), true)
	ctx := context.Background()

	var dest string
	hit, err := svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Equal(t, 10*time.Minute, repo.ttls["k"])

	hit, err = svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", dest)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(&memoryCacheRepo{getErr: errors.New("conn refused")}, nil, time.Minute, zap.NewNop(), true)
	var dest string

	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestHashKeyIsStable(t *testing.T) {
	a := models.FilterCriteria{Departments: []string{"Finance"}, QualityMax: 10}
	b := models.FilterCriteria{Departments: []string{"Finance"}, QualityMax: 10}
	c := models.FilterCriteria{Departments: []string{"HR"}, QualityMax: 10}

	assert.Equal(t, HashKey(a), HashKey(b))
	assert.NotEqual(t, HashKey(a), HashKey(c))
	assert.Len(t, HashKey(a), 16)
}
