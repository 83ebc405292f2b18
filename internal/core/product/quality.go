package product

import "math"

const (
	minDescriptionLength = 120
	highRatingThreshold  = 4.5
	reviewCountWeight    = 0.1
	imageWeight          = 15
	descriptionWeight    = 10
	ratingWeight         = 20
)

const (
	ReasonMissingImagery    = "Missing product imagery"
	ReasonShortDescription  = "Description is too short"
	ReasonLowSupplierRating = "Supplier rating below preferred threshold"
	ReasonMissingRating     = "Missing supplier rating"
)

// QualityInputs are the signals the scorer looks at.
type QualityInputs struct {
	Description         *string
	Images              []string
	SupplierRating      *float64
	SupplierReviewCount *int
}

// ScoreQuality computes the heuristic completeness score for a listing.
// Downstream review sorts and filters on Overall, so the formula and the
// order of adjustments must stay stable.
func ScoreQuality(in QualityInputs) QualityScore {
	score := 50.0
	reasons := []string{}

	hasImages := len(in.Images) > 0
	hasDescription := in.Description != nil && len(*in.Description) >= minDescriptionLength

	if hasImages {
		score += imageWeight
	} else {
		score -= 10
		reasons = append(reasons, ReasonMissingImagery)
	}

	if hasDescription {
		score += descriptionWeight
	} else {
		score -= 5
		reasons = append(reasons, ReasonShortDescription)
	}

	if in.SupplierRating != nil {
		rating := *in.SupplierRating
		boost := math.Max(0, rating-3) / (highRatingThreshold - 3) * ratingWeight
		score += math.Max(0, math.Min(ratingWeight, boost))
		if rating < 3.5 {
			score -= 5
			reasons = append(reasons, ReasonLowSupplierRating)
		}
	} else {
		score -= 5
		reasons = append(reasons, ReasonMissingRating)
	}

	if in.SupplierReviewCount != nil {
		score += math.Min(10, float64(*in.SupplierReviewCount)*reviewCountWeight)
	}

	overall := int(math.Max(0, math.Min(100, math.Round(score))))

	return QualityScore{
		Overall: overall,
		Reasons: reasons,
		Metrics: QualityMetrics{
			HasImages:           hasImages,
			HasDescription:      hasDescription,
			SupplierRating:      in.SupplierRating,
			SupplierReviewCount: in.SupplierReviewCount,
		},
	}
}
