package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
	"github.com/noah-isme/intern-dashboard-api/pkg/export"
	"github.com/noah-isme/intern-dashboard-api/pkg/response"
)

type internService interface {
	List(q dto.InternListQuery) (*service.InternListResult, error)
	Detail(id int) (*models.InternDetail, error)
	ExportCSV(q dto.FilterQuery) ([]byte, []string, error)
}

// InternHandler exposes record level endpoints.
type InternHandler struct {
	service internService
}

// NewInternHandler constructs the handler.
func NewInternHandler(service internService) *InternHandler {
	return &InternHandler{service: service}
}

// List godoc
// @Summary List interns
// @Description Filtered, sorted and paginated intern records with display hints.
// @Tags Interns
// @Produce json
// @Param department query []string false "Department (repeatable or comma separated)"
// @Param status query []string false "Completion status (repeatable or comma separated)"
// @Param qualityMin query number false "Minimum quality score"
// @Param qualityMax query number false "Maximum quality score"
// @Param from query string false "Assignment date from (YYYY-MM-DD)"
// @Param to query string false "Assignment date to (YYYY-MM-DD)"
// @Param search query string false "Name or id substring"
// @Param sort query string false "id, name, quality, feedback, days, assigned"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	var q dto.InternListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	result, err := h.service.List(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetWarnings(c, result.Warnings)
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, middleware.ExtractMeta(c))
}

// Detail godoc
// @Summary Intern detail
// @Description One intern record with metric means over every record of the same name and the saved note.
// @Tags Interns
// @Produce json
// @Param id path int true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "intern id must be numeric"))
		return
	}
	detail, err := h.service.Detail(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// ExportCSV godoc
// @Summary Download filtered interns as CSV
// @Tags Interns
// @Produce text/csv
// @Param department query []string false "Department"
// @Param status query []string false "Completion status"
// @Param qualityMin query number false "Minimum quality score"
// @Param qualityMax query number false "Maximum quality score"
// @Param from query string false "Assignment date from (YYYY-MM-DD)"
// @Param to query string false "Assignment date to (YYYY-MM-DD)"
// @Param search query string false "Name or id substring"
// @Success 200 {file} file
// @Router /interns/export.csv [get]
func (h *InternHandler) ExportCSV(c *gin.Context) {
	q, err := bindFilterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, warnings, err := h.service.ExportCSV(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(warnings) > 0 {
		c.Header("X-Filter-Warnings", warnings[0])
	}
	response.Attachment(c, "interns.csv", export.FormatCSV.ContentType(), payload)
}
