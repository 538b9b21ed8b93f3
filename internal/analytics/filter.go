// Package analytics derives filtered views and aggregates from the intern dataset.
// Every function is pure: inputs are never mutated and results are freshly allocated.
package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

// Range warnings surfaced to clients when a criteria bound is inverted.
const (
	WarningDateRange    = "start date should be before end date"
	WarningQualityRange = "minimum quality score should not exceed maximum quality score"
)

// Filter returns the records satisfying every predicate of criteria, in source order.
// Empty department or status sets admit nothing. Inverted ranges yield an empty view.
// A zero DateFrom or DateTo leaves that side of the date range open.
func Filter(records []models.InternRecord, criteria models.FilterCriteria) []models.InternRecord {
	out := make([]models.InternRecord, 0, len(records))
	if len(RangeWarnings(criteria)) > 0 {
		return out
	}

	m := newMatcher(criteria)
	for _, record := range records {
		if m.match(record) {
			out = append(out, record)
		}
	}
	return out
}

// RangeWarnings lists the inverted bounds of criteria.
func RangeWarnings(criteria models.FilterCriteria) []string {
	var warnings []string
	if !criteria.DateFrom.IsZero() && !criteria.DateTo.IsZero() && DateOnly(criteria.DateFrom).After(DateOnly(criteria.DateTo)) {
		warnings = append(warnings, WarningDateRange)
	}
	if criteria.QualityMin > criteria.QualityMax {
		warnings = append(warnings, WarningQualityRange)
	}
	return warnings
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type matcher struct {
	departments map[string]struct{}
	statuses    map[string]struct{}
	qualityMin  float64
	qualityMax  float64
	from        time.Time
	to          time.Time
	search      string
}

func newMatcher(c models.FilterCriteria) matcher {
	m := matcher{
		departments: toSet(c.Departments),
		statuses:    toSet(c.Statuses),
		qualityMin:  c.QualityMin,
		qualityMax:  c.QualityMax,
		search:      strings.ToLower(strings.TrimSpace(c.Search)),
	}
	if !c.DateFrom.IsZero() {
		m.from = DateOnly(c.DateFrom)
	}
	if !c.DateTo.IsZero() {
		m.to = DateOnly(c.DateTo)
	}
	return m
}

func (m matcher) match(r models.InternRecord) bool {
	if _, ok := m.departments[r.Department]; !ok {
		return false
	}
	if _, ok := m.statuses[r.Status]; !ok {
		return false
	}
	if r.QualityScore == nil || *r.QualityScore < m.qualityMin || *r.QualityScore > m.qualityMax {
		return false
	}
	if r.AssignedAt == nil {
		return false
	}
	assigned := DateOnly(*r.AssignedAt)
	if !m.from.IsZero() && assigned.Before(m.from) {
		return false
	}
	if !m.to.IsZero() && assigned.After(m.to) {
		return false
	}
	if m.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), m.search) ||
		strings.Contains(strconv.Itoa(r.InternID), m.search)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
