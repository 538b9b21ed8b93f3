package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) Dataset {
	t.Helper()
	data := Dataset{Title: "Interns", Headers: []string{"Intern ID", "Intern Name", "Note"}}
	require.NoError(t, data.AddRow("1", "Ana", "needs, \"quotes\""))
	require.NoError(t, data.AddRow("2", "Budi"))
	return data
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Intern ID,Intern Name,Note", lines[0])
	assert.Equal(t, `1,Ana,"needs, ""quotes"""`, lines[1])
	assert.Equal(t, "2,Budi,", lines[2])
}

func TestCSVExporterEscapesFormulas(t *testing.T) {
	data := Dataset{Headers: []string{"Intern ID", "Note"}}
	require.NoError(t, data.AddRow("1", "=HYPERLINK(\"x\")"))
	require.NoError(t, data.AddRow("2", "-3.5"))
	require.NoError(t, data.AddRow("3", "@mentor"))

	out, err := NewCSVExporter(WithFormulaEscaping()).Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `1,"'=HYPERLINK(""x"")"`, lines[1])
	assert.Equal(t, "2,-3.5", lines[2])
	assert.Equal(t, "3,'@mentor", lines[3])

	plain, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"=HYPERLINK(""x"")"`)
}

func TestExportersRejectInvalidDatasets(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)

	_, err = NewPDFExporter().Render(Dataset{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	require.Error(t, err)

	data := Dataset{Headers: []string{"a"}}
	require.Error(t, data.AddRow("1", "2"))
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset(t)
	for i := 0; i < 80; i++ {
		require.NoError(t, data.AddRow("9", strings.Repeat("long name ", 10), "n"))
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/octet-stream", Format("zip").ContentType())
}
