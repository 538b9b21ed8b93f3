package analytics

import "github.com/noah-isme/intern-dashboard-api/internal/models"

const (
	qualityWarningBelow   = 6.0
	feedbackCriticalBelow = 3.0
)

// QualityHint flags quality scores below 6.
func QualityHint(score *float64) models.DisplayHint {
	if score != nil && *score < qualityWarningBelow {
		return models.HintWarning
	}
	return models.HintNormal
}

// FeedbackHint flags mentor feedback below 3.
func FeedbackHint(score *float64) models.DisplayHint {
	if score != nil && *score < feedbackCriticalBelow {
		return models.HintCritical
	}
	return models.HintNormal
}

// FeedbackLabel maps a mentor feedback score to its descriptive label.
func FeedbackLabel(score float64) string {
	switch score {
	case 5:
		return "Excellent support and communication"
	case 4:
		return "Very helpful mentor and clear instructions"
	case 3:
		return "Satisfactory performance with room to improve"
	case 2:
		return "Needs better guidance and structure"
	default:
		return "Poor mentoring experience"
	}
}

// Annotate attaches display hints to each record.
func Annotate(records []models.InternRecord) []models.InternRow {
	out := make([]models.InternRow, len(records))
	for i, r := range records {
		out[i] = models.InternRow{
			InternRecord: r,
			QualityHint:  QualityHint(r.QualityScore),
			FeedbackHint: FeedbackHint(r.FeedbackScore),
		}
	}
	return out
}
