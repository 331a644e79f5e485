// Package pricing holds the deterministic, side-effect-free calculators:
// order pricing, delivery timelines and tax. Everything here is a pure
// function of its inputs so it is testable without mocks.
package pricing

import (
	"math"

	"appforge/internal/domain"
)

const Currency = "USD"

// DefaultFeaturePrice applies to feature names missing from the add-on
// table. Unknown inputs are priced, not rejected.
const DefaultFeaturePrice int64 = 500

var basePrices = map[domain.ComplexityTier]int64{
	domain.ComplexitySimple:     2500,
	domain.ComplexityMedium:     5000,
	domain.ComplexityComplex:    10000,
	domain.ComplexityEnterprise: 25000,
}

var complexityMultipliers = map[domain.ComplexityTier]float64{
	domain.ComplexitySimple:     1.0,
	domain.ComplexityMedium:     1.5,
	domain.ComplexityComplex:    2.0,
	domain.ComplexityEnterprise: 3.0,
}

var featurePrices = map[string]int64{
	"3D Integration":      1500,
	"AI/ML Features":      2000,
	"Real-time Chat":      800,
	"Payment Processing":  1200,
	"Advanced Analytics":  1000,
	"Multi-platform":      2500,
	"Custom Integrations": 1800,
	"Enterprise Security": 3000,
}

// Calculate prices an app specification. Unknown tiers fall back to the
// simple tier, unknown features to DefaultFeaturePrice.
func Calculate(spec domain.AppSpecification) domain.Pricing {
	base, ok := basePrices[spec.Complexity]
	if !ok {
		base = basePrices[domain.ComplexitySimple]
	}

	mult, ok := complexityMultipliers[spec.Complexity]
	if !ok {
		mult = complexityMultipliers[domain.ComplexitySimple]
	}

	var addOns int64
	for _, f := range spec.Features {
		if p, ok := featurePrices[f]; ok {
			addOns += p
		} else {
			addOns += DefaultFeaturePrice
		}
	}

	total := int64(math.Round(float64(base)*mult)) + addOns

	return domain.Pricing{
		BasePrice:            base,
		ComplexityMultiplier: mult,
		FeatureAddOns:        addOns,
		TotalAmount:          total,
		Currency:             Currency,
	}
}
