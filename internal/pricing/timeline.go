package pricing

import (
	"math"
	"time"

	"appforge/internal/domain"
)

const (
	revisionWindow = 14 * 24 * time.Hour
	deliveryBuffer = 3 * 24 * time.Hour
	dayPerFeature  = 0.5
)

var baseDays = map[domain.ComplexityTier]float64{
	domain.ComplexitySimple:     3,
	domain.ComplexityMedium:     7,
	domain.ComplexityComplex:    14,
	domain.ComplexityEnterprise: 21,
}

// EstimateTimeline derives the three delivery milestones from the tier and
// feature count, anchored at now. Zero features still yield the tier base
// timeline; unknown tiers use the simple tier.
func EstimateTimeline(spec domain.AppSpecification, now time.Time) domain.Timeline {
	days, ok := baseDays[spec.Complexity]
	if !ok {
		days = baseDays[domain.ComplexitySimple]
	}

	totalDays := math.Ceil(days + dayPerFeature*float64(len(spec.Features)))

	estimated := now.Add(time.Duration(totalDays) * 24 * time.Hour)
	revision := estimated.Add(revisionWindow)

	return domain.Timeline{
		EstimatedCompletion: estimated,
		RevisionDeadline:    revision,
		FinalDelivery:       revision.Add(deliveryBuffer),
	}
}
