package dto

// FilterQuery carries raw filter parameters from a query string or JSON body.
// Departments and statuses may repeat or hold comma separated values. Empty means all.
type FilterQuery struct {
	Departments []string `form:"department" json:"departments"`
	Statuses    []string `form:"status" json:"statuses"`
	QualityMin  *float64 `form:"qualityMin" json:"qualityMin"`
	QualityMax  *float64 `form:"qualityMax" json:"qualityMax"`
	From        string   `form:"from" json:"from"`
	To          string   `form:"to" json:"to"`
	Search      string   `form:"search" json:"search"`
}

// InternListQuery adds ordering and paging to FilterQuery.
type InternListQuery struct {
	FilterQuery
	Sort  string `form:"sort"`
	Order string `form:"order"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}
