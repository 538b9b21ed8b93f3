package analytics

import (
	"sort"
	"strings"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
)

// SortField names a sortable record column.
type SortField string

const (
	SortByID       SortField = "id"
	SortByName     SortField = "name"
	SortByQuality  SortField = "quality"
	SortByFeedback SortField = "feedback"
	SortByDays     SortField = "days"
	SortByAssigned SortField = "assigned"
)

// ParseSortField resolves a client supplied sort key. Empty input means source order.
func ParseSortField(raw string) (SortField, bool) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return "", true
	case SortByID, SortByName, SortByQuality, SortByFeedback, SortByDays, SortByAssigned:
		return f, true
	default:
		return "", false
	}
}

// Sort returns a stably sorted copy of records. Missing values always sort last.
func Sort(records []models.InternRecord, field SortField, desc bool) []models.InternRecord {
	out := make([]models.InternRecord, len(records))
	copy(out, records)
	if field == "" {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c, ok := compare(out[i], out[j], field)
		if !ok {
			return c < 0
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compare orders a before b on field. ok is false when exactly one side is missing, in
// which case c already places the missing side last regardless of direction.
func compare(a, b models.InternRecord, field SortField) (c int, ok bool) {
	switch field {
	case SortByID:
		return cmpInt(a.InternID, b.InternID), true
	case SortByName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)), true
	case SortByQuality:
		return cmpOptional(a.QualityScore, b.QualityScore)
	case SortByFeedback:
		return cmpOptional(a.FeedbackScore, b.FeedbackScore)
	case SortByDays:
		return cmpOptional(a.CompletionDays, b.CompletionDays)
	case SortByAssigned:
		switch {
		case a.AssignedAt == nil && b.AssignedAt == nil:
			return 0, true
		case a.AssignedAt == nil:
			return 1, false
		case b.AssignedAt == nil:
			return -1, false
		}
		return a.AssignedAt.Compare(*b.AssignedAt), true
	}
	return 0, true
}

func cmpOptional(a, b *float64) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return 1, false
	case b == nil:
		return -1, false
	case *a < *b:
		return -1, true
	case *a > *b:
		return 1, true
	}
	return 0, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate returns the requested page (1-based) of items with its metadata.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = len(items)
	}
	meta := models.Pagination{Page: page, PageSize: size, TotalCount: len(items)}
	// compare before multiplying so huge page numbers cannot overflow
	if size == 0 || page-1 > len(items)/size {
		return []T{}, meta
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
