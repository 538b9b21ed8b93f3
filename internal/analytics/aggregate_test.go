package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

func TestMonthlySummaryEmptyView(t *testing.T) {
	out := MonthlySummary(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMonthlySummaryCalendarOrderAndMeans(t *testing.T) {
	march := record(1, "Ana", "A", "Completed", 8, day(2024, 3, 2))
	march.FeedbackScore = f64(2)
	marchMissing := record(2, "Budi", "A", "Completed", 6, day(2024, 3, 9))
	marchMissing.CompletionDays = nil
	marchMissing.FeedbackScore = nil
	january := record(3, "Citra", "B", "Completed", 9, day(2024, 1, 15))
	december := record(4, "Dewi", "B", "Completed", 7, day(2023, 12, 1))
	odd := record(5, "Eko", "B", "Completed", 7, day(2024, 5, 1))
	odd.Month = "Q2"
	unlabelled := record(6, "Fajar", "B", "Completed", 7, nil)

	out := MonthlySummary([]models.InternRecord{march, marchMissing, january, december, odd, unlabelled})

	require.Len(t, out, 4)
	assert.Equal(t, []string{"January", "March", "December", "Q2"}, []string{out[0].Month, out[1].Month, out[2].Month, out[3].Month})

	m := out[1]
	assert.Equal(t, 2, m.Count)
	assert.InDelta(t, 7.0, *m.MeanQuality, 1e-9)
	assert.InDelta(t, 10.0, *m.MeanCompletionDays, 1e-9)
	assert.InDelta(t, 2.0, *m.MeanFeedback, 1e-9)
	assert.Equal(t, models.HintCritical, m.FeedbackHint)
	assert.Equal(t, models.HintNormal, out[0].FeedbackHint)
}

func TestMonthlySummaryAllMissingMetricIsNil(t *testing.T) {
	r := record(1, "Ana", "A", "Completed", 8, day(2024, 4, 1))
	r.FeedbackScore = nil

	out := MonthlySummary([]models.InternRecord{r})

	require.Len(t, out, 1)
	assert.Nil(t, out[0].MeanFeedback)
	assert.NotNil(t, out[0].MeanQuality)
}

func TestDepartmentSummary(t *testing.T) {
	view := []models.InternRecord{
		record(1, "Ana", "Engineering", "Completed", 8, day(2024, 1, 1)),
		record(2, "Budi", "Design", "Completed", 6, day(2024, 1, 1)),
		record(3, "Citra", "Engineering", "Completed", 6, day(2024, 1, 1)),
	}

	out := DepartmentSummary(view)

	require.Len(t, out, 2)
	assert.Equal(t, "Design", out[0].Department)
	assert.Equal(t, "Engineering", out[1].Department)
	assert.Equal(t, 2, out[1].Count)
	assert.InDelta(t, 7.0, *out[1].MeanQuality, 1e-9)
}

func TestComputeKPIs(t *testing.T) {
	a := record(1, "Ana", "A", "Completed", 8, day(2024, 1, 1))
	b := record(2, "Budi", "A", "Completed", 6, day(2024, 1, 1))
	b.CompletionDays = f64(20)

	kpis := ComputeKPIs([]models.InternRecord{a, b})

	assert.Equal(t, 2, kpis.Records)
	assert.InDelta(t, 15.0, *kpis.MeanCompletionDays, 1e-9)
	assert.InDelta(t, 7.0, *kpis.MeanQuality, 1e-9)

	empty := ComputeKPIs(nil)
	assert.Nil(t, empty.MeanQuality)
	assert.Zero(t, empty.Records)
}

func TestMeansForName(t *testing.T) {
	records := []models.InternRecord{
		record(1, "Ana", "A", "Completed", 8, day(2024, 1, 1)),
		record(2, "Budi", "A", "Completed", 2, day(2024, 1, 1)),
		record(3, "Ana", "B", "Completed", 6, day(2024, 2, 1)),
	}

	means := MeansForName(records, "Ana")

	assert.Equal(t, 2, means.Records)
	assert.InDelta(t, 7.0, *means.QualityScore, 1e-9)
}

func TestTopPerformersStableAndLimited(t *testing.T) {
	noScore := record(9, "Zed", "A", "Completed", 0, day(2024, 1, 1))
	noScore.QualityScore = nil
	view := []models.InternRecord{
		record(1, "Ana", "A", "Completed", 7, day(2024, 1, 1)),
		record(2, "Budi", "A", "Completed", 9, day(2024, 1, 1)),
		noScore,
		record(3, "Citra", "A", "Completed", 9, day(2024, 1, 1)),
		record(4, "Dewi", "A", "Completed", 5, day(2024, 1, 1)),
	}

	top := TopPerformers(view, 3)

	require.Len(t, top, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{top[0].InternID, top[1].InternID, top[2].InternID})

	all := TopPerformers(view, 10)
	require.Len(t, all, 4)
	assert.Equal(t, models.HintWarning, all[3].QualityHint)
}

func TestFeedbackDistribution(t *testing.T) {
	scores := []float64{5, 5, 4, 1, 2.5}
	view := make([]models.InternRecord, 0, len(scores)+1)
	for i, s := range scores {
		r := record(i+1, "n", "A", "Completed", 7, day(2024, 1, 1))
		r.FeedbackScore = f64(s)
		view = append(view, r)
	}
	missing := record(99, "n", "A", "Completed", 7, day(2024, 1, 1))
	missing.FeedbackScore = nil
	view = append(view, missing)

	out := FeedbackDistribution(view)

	assert.Equal(t, []models.FeedbackBucket{
		{Label: "Excellent support and communication", Count: 2},
		{Label: "Poor mentoring experience", Count: 2},
		{Label: "Very helpful mentor and clear instructions", Count: 1},
	}, out)
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 1, MonthIndex("January"))
	assert.Equal(t, 9, MonthIndex(" sep "))
	assert.Equal(t, 12, MonthIndex("DECEMBER"))
	assert.Equal(t, 13, MonthIndex("Q2"))
	assert.Equal(t, 13, MonthIndex(""))
	assert.Equal(t, "February", MonthLabel(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}
