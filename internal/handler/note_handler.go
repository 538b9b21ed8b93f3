package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	"github.com/noah-isme/intern-dashboard-api/internal/repository"
	"github.com/noah-isme/intern-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
	"github.com/noah-isme/intern-dashboard-api/pkg/export"
	"github.com/noah-isme/intern-dashboard-api/pkg/response"
)

type noteService interface {
	List() []models.NoteRecord
	Get(id string) (models.NoteRecord, bool)
	Save(ctx context.Context, id, text string) (models.NoteRecord, error)
	Verify(ctx context.Context) (models.NoteConsistency, error)
	Export(format models.ExportFormat) ([]byte, error)
}

type internLookup interface {
	Lookup(id int) (models.InternRecord, bool)
}

// NoteHandler exposes the intern note store.
type NoteHandler struct {
	service noteService
	interns internLookup
}

// NewNoteHandler constructs the handler.
func NewNoteHandler(service noteService, interns internLookup) *NoteHandler {
	return &NoteHandler{service: service, interns: interns}
}

// List godoc
// @Summary List notes
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(), nil)
}

// Get godoc
// @Summary Get one note
// @Description Returns an empty note when none has been saved for the intern.
// @Tags Notes
// @Produce json
// @Param internId path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{internId} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	note, _ := h.service.Get(c.Param("internId"))
	response.JSON(c, http.StatusOK, note, nil)
}

// Put godoc
// @Summary Save a note
// @Description Inserts or replaces the note and persists both note files before responding.
// @Tags Notes
// @Accept json
// @Produce json
// @Param internId path int true "Intern ID"
// @Param payload body dto.SaveNoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Security BearerAuth
// @Router /notes/{internId} [put]
func (h *NoteHandler) Put(c *gin.Context) {
	id := repository.NormalizeNoteID(c.Param("internId"))
	numeric, err := strconv.Atoi(id)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "intern id must be numeric"))
		return
	}
	if _, ok := h.interns.Lookup(numeric); !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "intern not found"))
		return
	}
	var req dto.SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Note == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "note is required"))
		return
	}
	note, err := h.service.Save(c.Request.Context(), id, *req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Consistency godoc
// @Summary Compare note files
// @Description Parses both note files independently and reports differing ids.
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notes/consistency [get]
func (h *NoteHandler) Consistency(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download notes
// @Tags Notes
// @Produce text/csv
// @Produce json
// @Param format query string false "csv (default) or json"
// @Success 200 {file} file
// @Router /notes/export [get]
func (h *NoteHandler) Export(c *gin.Context) {
	format, err := service.ParseNoteExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.service.Export(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("intern_notes.%s", format), export.Format(format).ContentType(), payload)
}
