package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetCSV = `Intern ID,Intern Name,Department,Completion_Status,Project_Quality_Score,Mentor_Feedback_Score,Task_Completion_Days,Date of Assignment,Date of Completion,Month
1,Ana Putri,Engineering,Completed,8.5,4,12,2024-01-05,2024-01-17,January
2,Budi,Design,In Progress,,3,,2024-02-10,,
3.0,Citra,Engineering,Completed,6,5,9,03/15/2024,2024-03-24 10:00:00,March

`

func TestParseInternCSV(t *testing.T) {
	records, err := ParseInternCSV(context.Background(), strings.NewReader(datasetCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 1, first.InternID)
	assert.Equal(t, "Ana Putri", first.Name)
	assert.Equal(t, "Completed", first.Status)
	assert.InDelta(t, 8.5, *first.QualityScore, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *first.AssignedAt)
	assert.Equal(t, "January", first.Month)

	second := records[1]
	assert.Nil(t, second.QualityScore)
	assert.Nil(t, second.CompletionDays)
	assert.Nil(t, second.CompletedAt)
	assert.Equal(t, "February", second.Month)

	third := records[2]
	assert.Equal(t, 3, third.InternID)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *third.AssignedAt)
	assert.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), *third.CompletedAt)
}

func TestParseInternCSVHeaderVariants(t *testing.T) {
	data := "\ufeffintern_id, INTERN NAME ,department,completion status\n5,Eko,HR,Completed\n"

	records, err := ParseInternCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].InternID)
	assert.Equal(t, "Eko", records[0].Name)
	assert.Nil(t, records[0].AssignedAt)
	assert.Empty(t, records[0].Month)
}

func TestParseInternCSVErrors(t *testing.T) {
	_, err := ParseInternCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)

	_, err = ParseInternCSV(context.Background(), strings.NewReader("Intern ID,Intern Name\n1,Ana\n"))
	require.ErrorContains(t, err, "missing column")

	bad := "Intern ID,Intern Name,Department,Completion_Status,Project_Quality_Score\n1,Ana,A,Completed,high\n"
	_, err = ParseInternCSV(context.Background(), strings.NewReader(bad))
	require.ErrorContains(t, err, "line 2")

	badID := "Intern ID,Intern Name,Department,Completion_Status\nx,Ana,A,Completed\n"
	_, err = ParseInternCSV(context.Background(), strings.NewReader(badID))
	require.ErrorContains(t, err, "invalid intern id")
}

func TestCSVInternSourceMissingFile(t *testing.T) {
	src := NewCSVInternSource(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := src.LoadInterns(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVInternSourceLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0o644))

	records, err := NewCSVInternSource(path).LoadInterns(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
