package service

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
	"github.com/noah-isme/intern-dashboard-api/pkg/export"
)

const maxPageSize = 1000

type internDataset interface {
	Records() []models.InternRecord
	Lookup(id int) (models.InternRecord, bool)
	ResolveCriteria(q dto.FilterQuery) (models.FilterCriteria, []string, error)
}

type noteReader interface {
	Text(id string) string
}

// InternListResult is one page of the filtered, sorted view.
type InternListResult struct {
	Items      []models.InternRow
	Pagination models.Pagination
	Criteria   models.FilterCriteria
	Warnings   []string
}

// InternServiceParams groups constructor dependencies.
type InternServiceParams struct {
	Dataset internDataset
	Notes   noteReader
	Logger  *zap.Logger
}

// InternService serves record level views of the dataset.
type InternService struct {
	dataset internDataset
	notes   noteReader
	csv     *export.CSVExporter
	logger  *zap.Logger
}

// NewInternService constructs an InternService.
func NewInternService(params InternServiceParams) *InternService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternService{
		dataset: params.Dataset,
		notes:   params.Notes,
		csv:     export.NewCSVExporter(export.WithFormulaEscaping()),
		logger:  logger,
	}
}

// View resolves query into criteria and returns the filtered records in source order.
func (s *InternService) View(q dto.FilterQuery) ([]models.InternRecord, models.FilterCriteria, []string, error) {
	criteria, warnings, err := s.dataset.ResolveCriteria(q)
	if err != nil {
		return nil, models.FilterCriteria{}, nil, err
	}
	return analytics.Filter(s.dataset.Records(), criteria), criteria, warnings, nil
}

// List returns a page of the filtered view with display hints.
func (s *InternService) List(q dto.InternListQuery) (*InternListResult, error) {
	field, ok := analytics.ParseSortField(q.Sort)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sort must be one of id, name, quality, feedback, days, assigned")
	}
	var desc bool
	switch strings.ToLower(strings.TrimSpace(q.Order)) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc")
	}
	if q.Page < 0 || q.Limit < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "page and limit must not be negative")
	}
	limit := q.Limit
	if limit > maxPageSize {
		limit = maxPageSize
	}

	view, criteria, warnings, err := s.View(q.FilterQuery)
	if err != nil {
		return nil, err
	}
	page, pagination := analytics.Paginate(analytics.Sort(view, field, desc), q.Page, limit)
	return &InternListResult{
		Items:      analytics.Annotate(page),
		Pagination: pagination,
		Criteria:   criteria,
		Warnings:   warnings,
	}, nil
}

// Detail returns one intern with name-level metric means and the saved note.
func (s *InternService) Detail(id int) (*models.InternDetail, error) {
	record, ok := s.dataset.Lookup(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
	}
	detail := &models.InternDetail{
		Record: analytics.Annotate([]models.InternRecord{record})[0],
		Means:  analytics.MeansForName(s.dataset.Records(), record.Name),
	}
	if s.notes != nil {
		detail.Note = s.notes.Text(strconv.Itoa(id))
	}
	return detail, nil
}

// ExportCSV renders the filtered view as a CSV table.
func (s *InternService) ExportCSV(q dto.FilterQuery) ([]byte, []string, error) {
	view, _, warnings, err := s.View(q)
	if err != nil {
		return nil, nil, err
	}
	data, err := InternDataset(view)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build intern export")
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render intern export")
	}
	return payload, warnings, nil
}

// InternDataset lays out records using the source dataset column names.
func InternDataset(records []models.InternRecord) (export.Dataset, error) {
	data := export.Dataset{
		Title: "Intern Performance",
		Headers: []string{
			"Intern ID", "Intern Name", "Department", "Completion Status",
			"Project Quality Score", "Mentor Feedback Score", "Task Completion Days",
			"Date of Assignment", "Date of Completion", "Month",
		},
		Rows: make([][]string, 0, len(records)),
	}
	for _, r := range records {
		if err := data.AddRow(
			strconv.Itoa(r.InternID), r.Name, r.Department, r.Status,
			formatScore(r.QualityScore), formatScore(r.FeedbackScore), formatScore(r.CompletionDays),
			formatDate(r.AssignedAt), formatDate(r.CompletedAt), r.Month,
		); err != nil {
			return export.Dataset{}, err
		}
	}
	return data, nil
}

// NotesDataset lays out notes as the two column note table.
func NotesDataset(notes []models.NoteRecord) (export.Dataset, error) {
	data := export.Dataset{Title: "Intern Notes", Headers: []string{"Intern ID", "Note"}}
	for _, n := range notes {
		if err := data.AddRow(n.InternID, n.Note); err != nil {
			return export.Dataset{}, err
		}
	}
	return data, nil
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(queryDateLayout)
}
