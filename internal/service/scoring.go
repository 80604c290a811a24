package service

import "feedback-backend/internal/models"

// NPSCategory buckets a single recommendation score.
type NPSCategory string

const (
	Promoter  NPSCategory = "Promoter"
	Passive   NPSCategory = "Passive"
	Detractor NPSCategory = "Detractor"
)

func CategorizeNPS(score int) NPSCategory {
	switch {
	case score >= 9:
		return Promoter
	case score >= 7:
		return Passive
	default:
		return Detractor
	}
}

// OverallScore is the mean of the five product and service averages,
// skipping nil ones. The recommendation score is not part of it. ok is false
// when every average is nil.
func OverallScore(avg models.RatingAverages) (score float64, ok bool) {
	var sum float64
	var n int
	for _, v := range []*float64{
		avg.ToolBuildQuality,
		avg.Packaging,
		avg.OnTimeDelivery,
		avg.AfterSalesSupport,
		avg.ProductUsability,
	} {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
