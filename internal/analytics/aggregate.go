package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

// mean accumulates an arithmetic mean that skips missing values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

type metricMeans struct {
	days, quality, feedback mean
	count                   int
}

func (g *metricMeans) add(r models.InternRecord) {
	g.days.add(r.CompletionDays)
	g.quality.add(r.QualityScore)
	g.feedback.add(r.FeedbackScore)
	g.count++
}

// MonthlySummary groups the view by month label and averages each metric, ordered January to
// December. Records without a month label are skipped; unknown labels sort after December.
func MonthlySummary(view []models.InternRecord) []models.MonthlyAggregate {
	groups := map[string]*metricMeans{}
	for _, r := range view {
		label := strings.TrimSpace(r.Month)
		if label == "" {
			continue
		}
		g, ok := groups[label]
		if !ok {
			g = &metricMeans{}
			groups[label] = g
		}
		g.add(r)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		mi, mj := MonthIndex(labels[i]), MonthIndex(labels[j])
		if mi != mj {
			return mi < mj
		}
		return labels[i] < labels[j]
	})

	out := make([]models.MonthlyAggregate, 0, len(labels))
	for _, label := range labels {
		g := groups[label]
		feedback := g.feedback.value()
		out = append(out, models.MonthlyAggregate{
			Month:              label,
			MeanCompletionDays: g.days.value(),
			MeanQuality:        g.quality.value(),
			MeanFeedback:       feedback,
			FeedbackHint:       FeedbackHint(feedback),
			Count:              g.count,
		})
	}
	return out
}

// DepartmentSummary averages each metric per department, ordered by department name.
func DepartmentSummary(view []models.InternRecord) []models.DepartmentAggregate {
	groups := map[string]*metricMeans{}
	for _, r := range view {
		g, ok := groups[r.Department]
		if !ok {
			g = &metricMeans{}
			groups[r.Department] = g
		}
		g.add(r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.DepartmentAggregate, 0, len(names))
	for _, name := range names {
		g := groups[name]
		out = append(out, models.DepartmentAggregate{
			Department:         name,
			MeanCompletionDays: g.days.value(),
			MeanQuality:        g.quality.value(),
			MeanFeedback:       g.feedback.value(),
			Count:              g.count,
		})
	}
	return out
}

// ComputeKPIs returns headline means over the view.
func ComputeKPIs(view []models.InternRecord) models.KPIs {
	var g metricMeans
	for _, r := range view {
		g.add(r)
	}
	return models.KPIs{
		MeanCompletionDays: g.days.value(),
		MeanQuality:        g.quality.value(),
		MeanFeedback:       g.feedback.value(),
		Records:            g.count,
	}
}

// MeansForName averages the metrics of every record whose name equals name.
func MeansForName(records []models.InternRecord, name string) models.InternMeans {
	var g metricMeans
	for _, r := range records {
		if r.Name == name {
			g.add(r)
		}
	}
	return models.InternMeans{
		CompletionDays: g.days.value(),
		QualityScore:   g.quality.value(),
		FeedbackScore:  g.feedback.value(),
		Records:        g.count,
	}
}

// TopPerformers ranks the view by quality score, highest first. Ties keep source order and
// records without a score are skipped.
func TopPerformers(view []models.InternRecord, limit int) []models.TopPerformer {
	scored := make([]models.InternRecord, 0, len(view))
	for _, r := range view {
		if r.QualityScore != nil {
			scored = append(scored, r)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].QualityScore > *scored[j].QualityScore
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]models.TopPerformer, 0, len(scored))
	for _, r := range scored {
		out = append(out, models.TopPerformer{
			InternID:     r.InternID,
			Name:         r.Name,
			Department:   r.Department,
			QualityScore: *r.QualityScore,
			QualityHint:  QualityHint(r.QualityScore),
		})
	}
	return out
}

// FeedbackDistribution counts records per mentor feedback label, most frequent first.
func FeedbackDistribution(view []models.InternRecord) []models.FeedbackBucket {
	counts := map[string]int{}
	for _, r := range view {
		if r.FeedbackScore == nil {
			continue
		}
		counts[FeedbackLabel(*r.FeedbackScore)]++
	}
	out := make([]models.FeedbackBucket, 0, len(counts))
	for label, count := range counts {
		out = append(out, models.FeedbackBucket{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// MonthIndex returns the calendar position (1-12) of an English month name or its
// three-letter abbreviation, or 13 for anything else.
func MonthIndex(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) < 3 {
		return 13
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if l == name || l == name[:3] {
			return int(m)
		}
	}
	return 13
}

// MonthLabel is the month label derived from a date.
func MonthLabel(t time.Time) string {
	return t.Month().String()
}
