package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/pkg/response"
)

type datasetService interface {
	Options() (models.DatasetOptions, error)
	Version() string
}

// DatasetHandler exposes filter metadata.
type DatasetHandler struct {
	service datasetService
}

// NewDatasetHandler constructs the handler.
func NewDatasetHandler(service datasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// Options godoc
// @Summary Filter options
// @Description Departments and statuses with counts, assignment date bounds, quality bounds and the reset criteria.
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dataset/options [get]
func (h *DatasetHandler) Options(c *gin.Context) {
	opts, err := h.service.Options()
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetDatasetVersion(c, h.service.Version())
	response.JSON(c, http.StatusOK, opts, nil, middleware.ExtractMeta(c))
}
