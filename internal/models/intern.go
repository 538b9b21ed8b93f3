package models

import "time"

// InternRecord is one row of the intern performance dataset. Nil metrics and dates are missing values.
type InternRecord struct {
	InternID       int        `db:"intern_id" json:"intern_id"`
	Name           string     `db:"intern_name" json:"name"`
	Department     string     `db:"department" json:"department"`
	Status         string     `db:"completion_status" json:"status"`
	QualityScore   *float64   `db:"project_quality_score" json:"quality_score"`
	FeedbackScore  *float64   `db:"mentor_feedback_score" json:"feedback_score"`
	CompletionDays *float64   `db:"task_completion_days" json:"completion_days"`
	AssignedAt     *time.Time `db:"date_of_assignment" json:"assigned_at"`
	CompletedAt    *time.Time `db:"date_of_completion" json:"completed_at"`
	Month          string     `db:"month" json:"month"`
}

// FilterCriteria selects a derived view of the dataset. Ranges are inclusive.
type FilterCriteria struct {
	Departments []string  `json:"departments"`
	Statuses    []string  `json:"statuses"`
	QualityMin  float64   `json:"quality_min"`
	QualityMax  float64   `json:"quality_max"`
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
	Search      string    `json:"search,omitempty"`
}

// Score bounds of the quality metric.
const (
	QualityScoreMin = 0.0
	QualityScoreMax = 10.0
)

// DisplayHint is a presentation-neutral highlight level for a metric value.
type DisplayHint string

const (
	HintNormal   DisplayHint = "normal"
	HintWarning  DisplayHint = "warning"
	HintCritical DisplayHint = "critical"
)

// InternRow is a dataset record annotated with display hints.
type InternRow struct {
	InternRecord
	QualityHint  DisplayHint `json:"quality_hint"`
	FeedbackHint DisplayHint `json:"feedback_hint"`
}

// InternMeans are metric means over every record sharing an intern name.
type InternMeans struct {
	CompletionDays *float64 `json:"completion_days"`
	QualityScore   *float64 `json:"quality_score"`
	FeedbackScore  *float64 `json:"feedback_score"`
	Records        int      `json:"records"`
}

// InternDetail is the single-intern view.
type InternDetail struct {
	Record InternRow   `json:"record"`
	Means  InternMeans `json:"means"`
	Note   string      `json:"note"`
}

// MonthlyAggregate holds metric means for one month label.
type MonthlyAggregate struct {
	Month              string      `json:"month"`
	MeanCompletionDays *float64    `json:"mean_completion_days"`
	MeanQuality        *float64    `json:"mean_quality"`
	MeanFeedback       *float64    `json:"mean_feedback"`
	FeedbackHint       DisplayHint `json:"feedback_hint"`
	Count              int         `json:"count"`
}

// DepartmentAggregate holds metric means for one department.
type DepartmentAggregate struct {
	Department         string   `json:"department"`
	MeanCompletionDays *float64 `json:"mean_completion_days"`
	MeanQuality        *float64 `json:"mean_quality"`
	MeanFeedback       *float64 `json:"mean_feedback"`
	Count              int      `json:"count"`
}

// KPIs are headline means over a view.
type KPIs struct {
	MeanCompletionDays *float64 `json:"mean_completion_days"`
	MeanQuality        *float64 `json:"mean_quality"`
	MeanFeedback       *float64 `json:"mean_feedback"`
	Records            int      `json:"records"`
}

// TopPerformer is a leaderboard entry ranked by quality score.
type TopPerformer struct {
	InternID     int         `json:"intern_id"`
	Name         string      `json:"name"`
	Department   string      `json:"department"`
	QualityScore float64     `json:"quality_score"`
	QualityHint  DisplayHint `json:"quality_hint"`
}

// FeedbackBucket counts records sharing a mentor feedback label.
type FeedbackBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardSummary composes every aggregate for one filtered view.
type DashboardSummary struct {
	Criteria             FilterCriteria        `json:"criteria"`
	KPIs                 KPIs                  `json:"kpis"`
	Monthly              []MonthlyAggregate    `json:"monthly"`
	Departments          []DepartmentAggregate `json:"departments"`
	TopPerformers        []TopPerformer        `json:"top_performers"`
	FeedbackDistribution []FeedbackBucket      `json:"feedback_distribution"`
	GeneratedAt          time.Time             `json:"generated_at"`
}

// OptionCount is a categorical value with the number of records carrying it.
type OptionCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DatasetOptions describes the selectable filter values of the loaded dataset.
type DatasetOptions struct {
	Departments []OptionCount  `json:"departments"`
	Statuses    []OptionCount  `json:"statuses"`
	DateMin     *time.Time     `json:"date_min"`
	DateMax     *time.Time     `json:"date_max"`
	QualityMin  float64        `json:"quality_min"`
	QualityMax  float64        `json:"quality_max"`
	Records     int            `json:"records"`
	Defaults    FilterCriteria `json:"defaults"`
}
