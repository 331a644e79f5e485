package domain

import "time"

// Read-side report shapes produced by the dashboard aggregator.

type RevenueReport struct {
	Daily   int64 `json:"daily"`
	Weekly  int64 `json:"weekly"`
	Monthly int64 `json:"monthly"`
	Yearly  int64 `json:"yearly"`
}

type PerformanceReport struct {
	AverageGenerationHours float64 `json:"averageGenerationHours"`
	SuccessRate            float64 `json:"successRate"`
	RevisionRate           float64 `json:"revisionRate"`
}

type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

type AnalyticsReport struct {
	PopularFeatures        []FeatureCount             `json:"popularFeatures"`
	ComplexityDistribution map[ComplexityTier]int     `json:"complexityDistribution"`
	RevenueByComplexity    map[ComplexityTier]int64   `json:"revenueByComplexity"`
	TimeToCompletionDays   map[ComplexityTier]float64 `json:"timeToCompletionDays"`
}

// ConversionReport ratios are fractions in [0,1] and default to 0 whenever
// a denominator is 0.
type ConversionReport struct {
	PaymentToGeneration  float64 `json:"paymentToGeneration"`
	GenerationToDelivery float64 `json:"generationToDelivery"`
	OverallSuccess       float64 `json:"overallSuccess"`
}

type DashboardReport struct {
	ActiveOrders    []Order           `json:"activeOrders"`
	GenerationQueue []Order           `json:"generationQueue"`
	CompletedOrders []Order           `json:"completedOrders"`
	Revenue         RevenueReport     `json:"revenue"`
	Performance     PerformanceReport `json:"performance"`
	Analytics       AnalyticsReport   `json:"analytics"`
	Conversion      ConversionReport  `json:"conversion"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// OrderFilters is the shared filter/sort predicate used by search and the
// dashboard.
type OrderFilters struct {
	Status        []OrderStatus    `json:"status,omitempty"`
	PaymentStatus []PaymentStatus  `json:"paymentStatus,omitempty"`
	Complexity    []ComplexityTier `json:"complexity,omitempty"`
	CreatedAfter  *time.Time       `json:"createdAfter,omitempty"`
	CreatedBefore *time.Time       `json:"createdBefore,omitempty"`
	SortBy        string           `json:"sortBy,omitempty"`    // createdAt | updatedAt | totalAmount | complexity
	SortOrder     string           `json:"sortOrder,omitempty"` // asc | desc
}
