package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"appforge/internal/domain"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		spec     domain.AppSpecification
		expected domain.Pricing
	}{
		{
			name: "simple with no priced features",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexitySimple,
			},
			expected: domain.Pricing{
				BasePrice:            2500,
				ComplexityMultiplier: 1.0,
				FeatureAddOns:        0,
				TotalAmount:          2500,
				Currency:             "USD",
			},
		},
		{
			name: "medium with two known features",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityMedium,
				Features:   []string{"Real-time Chat", "Payment Processing"},
			},
			expected: domain.Pricing{
				BasePrice:            5000,
				ComplexityMultiplier: 1.5,
				FeatureAddOns:        2000,
				TotalAmount:          9500,
				Currency:             "USD",
			},
		},
		{
			name: "enterprise with the full catalog entry",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityEnterprise,
				Features:   []string{"Enterprise Security", "Multi-platform"},
			},
			expected: domain.Pricing{
				BasePrice:            25000,
				ComplexityMultiplier: 3.0,
				FeatureAddOns:        5500,
				TotalAmount:          80500,
				Currency:             "USD",
			},
		},
		{
			name: "unknown feature priced at the default",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityComplex,
				Features:   []string{"Quantum Sync"},
			},
			expected: domain.Pricing{
				BasePrice:            10000,
				ComplexityMultiplier: 2.0,
				FeatureAddOns:        500,
				TotalAmount:          20500,
				Currency:             "USD",
			},
		},
		{
			name: "unknown tier falls back to simple",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityTier("galactic"),
				Features:   []string{"AI/ML Features"},
			},
			expected: domain.Pricing{
				BasePrice:            2500,
				ComplexityMultiplier: 1.0,
				FeatureAddOns:        2000,
				TotalAmount:          4500,
				Currency:             "USD",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.spec))
		})
	}
}

func TestCalculateDeterministic(t *testing.T) {
	spec := domain.AppSpecification{
		Complexity: domain.ComplexityMedium,
		Features:   []string{"3D Integration", "Advanced Analytics"},
	}
	first := Calculate(spec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Calculate(spec))
	}
}

func TestEstimateTimeline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		spec     domain.AppSpecification
		wantDays int
	}{
		{
			name:     "simple zero features keeps the base",
			spec:     domain.AppSpecification{Complexity: domain.ComplexitySimple},
			wantDays: 3,
		},
		{
			name: "medium with two features rounds up",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityMedium,
				Features:   []string{"Real-time Chat", "Payment Processing"},
			},
			wantDays: 8,
		},
		{
			name: "half day remainder ceils",
			spec: domain.AppSpecification{
				Complexity: domain.ComplexityComplex,
				Features:   []string{"3D Integration", "AI/ML Features", "Real-time Chat"},
			},
			wantDays: 16, // 14 + 1.5 -> 16
		},
		{
			name:     "unknown tier falls back to simple",
			spec:     domain.AppSpecification{Complexity: domain.ComplexityTier("galactic")},
			wantDays: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := EstimateTimeline(tt.spec, now)

			assert.Equal(t, now.Add(time.Duration(tt.wantDays)*24*time.Hour), tl.EstimatedCompletion)
			assert.Equal(t, tl.EstimatedCompletion.Add(14*24*time.Hour), tl.RevisionDeadline)
			assert.Equal(t, tl.RevisionDeadline.Add(3*24*time.Hour), tl.FinalDelivery)
		})
	}
}

func TestTax(t *testing.T) {
	tests := []struct {
		country string
		amount  int64
		want    int64
	}{
		{"US", 10000, 800},
		{"CA", 10000, 1300},
		{"EU", 10000, 2000},
		{"UK", 10000, 2000},
		{"JP", 10000, 800}, // unmapped countries use the US rate
		{"US", 0, 0},
		{"CA", 9999, 1300}, // 1299.87 rounds to 1300
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tax(tt.amount, tt.country), "country %s amount %d", tt.country, tt.amount)
	}
}
