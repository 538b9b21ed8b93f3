package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/intern-dashboard-api/internal/analytics"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

// Canonical dataset column keys after header normalisation.
const (
	colInternID       = "intern id"
	colInternName     = "intern name"
	colDepartment     = "department"
	colStatus         = "completion status"
	colQuality        = "project quality score"
	colFeedback       = "mentor feedback score"
	colCompletionDays = "task completion days"
	colAssigned       = "date of assignment"
	colCompleted      = "date of completion"
	colMonth          = "month"
)

var requiredColumns = []string{colInternID, colInternName, colDepartment, colStatus}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// CSVInternSource loads intern performance records from a CSV file.
type CSVInternSource struct {
	path string
}

// NewCSVInternSource constructs a CSV backed dataset source.
func NewCSVInternSource(path string) *CSVInternSource {
	return &CSVInternSource{path: path}
}

// Path returns the dataset file location.
func (s *CSVInternSource) Path() string {
	return s.path
}

// LoadInterns parses every row of the dataset file in file order.
func (s *CSVInternSource) LoadInterns(ctx context.Context) ([]models.InternRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	defer file.Close()

	return ParseInternCSV(ctx, file)
}

// ParseInternCSV decodes dataset rows. Header names match case-insensitively and treat
// underscores as spaces. Empty metric or date cells become missing values.
func ParseInternCSV(ctx context.Context, r io.Reader) ([]models.InternRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", col)
		}
	}

	var records []models.InternRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset line %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}
		record, err := parseInternRow(index, row)
		if err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseInternRow(index map[string]int, row []string) (models.InternRecord, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	id, err := parseID(cell(colInternID))
	if err != nil {
		return models.InternRecord{}, err
	}
	record := models.InternRecord{
		InternID:   id,
		Name:       cell(colInternName),
		Department: cell(colDepartment),
		Status:     cell(colStatus),
		Month:      cell(colMonth),
	}
	if record.QualityScore, err = parseOptionalFloat(colQuality, cell(colQuality)); err != nil {
		return models.InternRecord{}, err
	}
	if record.FeedbackScore, err = parseOptionalFloat(colFeedback, cell(colFeedback)); err != nil {
		return models.InternRecord{}, err
	}
	if record.CompletionDays, err = parseOptionalFloat(colCompletionDays, cell(colCompletionDays)); err != nil {
		return models.InternRecord{}, err
	}
	if record.AssignedAt, err = parseOptionalDate(colAssigned, cell(colAssigned)); err != nil {
		return models.InternRecord{}, err
	}
	if record.CompletedAt, err = parseOptionalDate(colCompleted, cell(colCompleted)); err != nil {
		return models.InternRecord{}, err
	}
	normalizeMonth(&record)
	return record, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseID(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("intern id is empty")
	}
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	// ids exported through spreadsheets sometimes arrive as "12.0"
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid intern id %q", raw)
	}
	return int(f), nil
}

func parseOptionalFloat(col, raw string) (*float64, error) {
	if raw == "" || strings.EqualFold(raw, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", col, raw)
	}
	return &v, nil
}

func parseOptionalDate(col, raw string) (*time.Time, error) {
	if raw == "" || strings.EqualFold(raw, "nat") {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d := analytics.DateOnly(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("invalid %s %q", col, raw)
}

// normalizeMonth derives an empty month label from the assignment date.
func normalizeMonth(record *models.InternRecord) {
	if record.Month == "" && record.AssignedAt != nil {
		record.Month = analytics.MonthLabel(*record.AssignedAt)
	}
}
