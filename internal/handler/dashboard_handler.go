package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, criteria models.FilterCriteria) (*models.DashboardSummary, bool, error)
	Monthly(criteria models.FilterCriteria) []models.MonthlyAggregate
	Departments(criteria models.FilterCriteria) []models.DepartmentAggregate
}

type criteriaResolver interface {
	ResolveCriteria(q dto.FilterQuery) (models.FilterCriteria, []string, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	criteria criteriaResolver
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, criteria criteriaResolver) *DashboardHandler {
	return &DashboardHandler{service: service, criteria: criteria}
}

// Summary godoc
// @Summary Dashboard summary
// @Description KPIs, monthly and department aggregates, top performers and feedback distribution for the filtered view.
// @Tags Dashboard
// @Produce json
// @Param department query []string false "Department"
// @Param status query []string false "Completion status"
// @Param qualityMin query number false "Minimum quality score"
// @Param qualityMax query number false "Maximum quality score"
// @Param from query string false "Assignment date from (YYYY-MM-DD)"
// @Param to query string false "Assignment date to (YYYY-MM-DD)"
// @Param search query string false "Name or id substring"
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	criteria, ok := h.resolve(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := metaOrEmpty(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// Monthly godoc
// @Summary Monthly aggregates
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/monthly [get]
func (h *DashboardHandler) Monthly(c *gin.Context) {
	criteria, ok := h.resolve(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Monthly(criteria), nil, middleware.ExtractMeta(c))
}

// Departments godoc
// @Summary Department aggregates
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/departments [get]
func (h *DashboardHandler) Departments(c *gin.Context) {
	criteria, ok := h.resolve(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Departments(criteria), nil, middleware.ExtractMeta(c))
}

func (h *DashboardHandler) resolve(c *gin.Context) (models.FilterCriteria, bool) {
	q, err := bindFilterQuery(c)
	if err != nil {
		response.Error(c, err)
		return models.FilterCriteria{}, false
	}
	criteria, warnings, err := h.criteria.ResolveCriteria(q)
	if err != nil {
		response.Error(c, err)
		return models.FilterCriteria{}, false
	}
	middleware.SetWarnings(c, warnings)
	return criteria, true
}
