package analytics

import (
	"time"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

func f64(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func record(id int, name, dept, status string, quality float64, assigned *time.Time) models.InternRecord {
	r := models.InternRecord{
		InternID:       id,
		Name:           name,
		Department:     dept,
		Status:         status,
		QualityScore:   f64(quality),
		FeedbackScore:  f64(4),
		CompletionDays: f64(10),
		AssignedAt:     assigned,
	}
	if assigned != nil {
		r.Month = MonthLabel(*assigned)
	}
	return r
}

func openCriteria(departments, statuses []string) models.FilterCriteria {
	return models.FilterCriteria{
		Departments: departments,
		Statuses:    statuses,
		QualityMin:  models.QualityScoreMin,
		QualityMax:  models.QualityScoreMax,
	}
}

func ids(records []models.InternRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.InternID
	}
	return out
}
