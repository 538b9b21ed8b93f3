package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	escapeFormulas bool
}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithFormulaEscaping prefixes cells that a spreadsheet would evaluate with a single quote.
func WithFormulaEscaping() CSVOption {
	return func(e *CSVExporter) { e.escapeFormulas = true }
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces CSV encoded bytes for the dataset. The title is not part of the output.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if e.escapeFormulas {
			row = escapeRow(row)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = cell
		if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) && !isNumeric(cell) {
			out[i] = "'" + cell
		}
	}
	return out
}

func isNumeric(cell string) bool {
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}
