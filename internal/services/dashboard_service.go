package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"appforge/internal/domain"
	"appforge/internal/repository"
)

const dashboardCacheTTL = 10 * time.Second

// DashboardService is the read-side projection over the order store. It
// recomputes reports on demand from a snapshot of the orders, optionally
// memoized in redis; mutations elsewhere drop the cache key. Reads never
// block writers, so reports may trail the latest mutation slightly.
type DashboardService struct {
	orders      repository.OrderRepository
	redisClient *redis.Client
	log         *logrus.Entry
}

func NewDashboardService(orders repository.OrderRepository) *DashboardService {
	return &DashboardService{
		orders: orders,
		log:    logrus.WithField("component", "dashboard"),
	}
}

func (s *DashboardService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// GetDashboard builds the full report. When filters are nil the snapshot is
// served from redis when present.
func (s *DashboardService) GetDashboard(ctx context.Context, filters *domain.OrderFilters) (*domain.DashboardReport, error) {
	cacheable := filters == nil
	if cacheable && s.redisClient != nil {
		if b, err := s.redisClient.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var cached domain.DashboardReport
			if err := json.Unmarshal([]byte(b), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	all, err := s.orders.FindAll()
	if err != nil {
		return nil, err
	}
	orders := ApplyFilters(all, filters)
	now := time.Now().UTC()

	report := &domain.DashboardReport{GeneratedAt: now}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Revenue = revenueReport(orders, now)
		return nil
	})
	g.Go(func() error {
		report.Performance = performanceReport(orders)
		return nil
	})
	g.Go(func() error {
		report.Analytics = analyticsReport(orders)
		return nil
	})
	g.Go(func() error {
		report.Conversion = conversionReport(orders)
		return nil
	})
	g.Go(func() error {
		active, queue, completed := bucketOrders(orders)
		report.ActiveOrders = active
		report.GenerationQueue = queue
		report.CompletedOrders = completed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cacheable && s.redisClient != nil {
		if b, err := json.Marshal(report); err == nil {
			s.redisClient.Set(ctx, dashboardCacheKey, b, dashboardCacheTTL)
		}
	}

	return report, nil
}

func bucketOrders(orders []domain.Order) (active, queue, completed []domain.Order) {
	for _, o := range orders {
		switch {
		case o.Status.DeliveredOrBetter():
			completed = append(completed, o)
		case o.Status.Active():
			active = append(active, o)
		}
		if o.Status.InGenerationQueue() {
			queue = append(queue, o)
		}
	}
	return active, queue, completed
}

// revenueReport sums totalAmount over orders with a completed payment,
// windowed by createdAt.
func revenueReport(orders []domain.Order, now time.Time) domain.RevenueReport {
	var r domain.RevenueReport
	day := now.Add(-24 * time.Hour)
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)
	year := now.Add(-365 * 24 * time.Hour)

	for _, o := range orders {
		if o.PaymentStatus != domain.PaymentCompleted {
			continue
		}
		amount := o.Pricing.TotalAmount
		if !o.CreatedAt.Before(day) {
			r.Daily += amount
		}
		if !o.CreatedAt.Before(week) {
			r.Weekly += amount
		}
		if !o.CreatedAt.Before(month) {
			r.Monthly += amount
		}
		if !o.CreatedAt.Before(year) {
			r.Yearly += amount
		}
	}
	return r
}

func performanceReport(orders []domain.Order) domain.PerformanceReport {
	total := len(orders)
	if total == 0 {
		return domain.PerformanceReport{}
	}

	var delivered, revisions int
	var genTime time.Duration
	for _, o := range orders {
		if o.Status.DeliveredOrBetter() {
			delivered++
			genTime += o.UpdatedAt.Sub(o.CreatedAt)
		}
		if o.Status.InRevision() {
			revisions++
		}
	}

	var avgHours float64
	if delivered > 0 {
		avgHours = genTime.Hours() / float64(delivered)
	}

	return domain.PerformanceReport{
		AverageGenerationHours: avgHours,
		SuccessRate:            float64(delivered) / float64(total),
		RevisionRate:           float64(revisions) / float64(total),
	}
}

func analyticsReport(orders []domain.Order) domain.AnalyticsReport {
	features := make(map[string]int)
	distribution := make(map[domain.ComplexityTier]int)
	revenue := make(map[domain.ComplexityTier]int64)
	completionSum := make(map[domain.ComplexityTier]float64)
	completionCount := make(map[domain.ComplexityTier]int)

	for _, o := range orders {
		tier := o.AppSpecification.Complexity
		distribution[tier]++
		revenue[tier] += o.Pricing.TotalAmount
		for _, f := range o.AppSpecification.Features {
			features[f]++
		}
		if o.Status.DeliveredOrBetter() {
			completionSum[tier] += o.UpdatedAt.Sub(o.CreatedAt).Hours() / 24
			completionCount[tier]++
		}
	}

	popular := make([]domain.FeatureCount, 0, len(features))
	for f, c := range features {
		popular = append(popular, domain.FeatureCount{Feature: f, Count: c})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Feature < popular[j].Feature
	})
	if len(popular) > 10 {
		popular = popular[:10]
	}

	completion := make(map[domain.ComplexityTier]float64, len(completionSum))
	for tier, sum := range completionSum {
		completion[tier] = sum / float64(completionCount[tier])
	}

	return domain.AnalyticsReport{
		PopularFeatures:        popular,
		ComplexityDistribution: distribution,
		RevenueByComplexity:    revenue,
		TimeToCompletionDays:   completion,
	}
}

// conversionReport: every ratio falls back to 0 on an empty denominator.
func conversionReport(orders []domain.Order) domain.ConversionReport {
	var paid, generated, delivered int
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentCompleted {
			paid++
		}
		if o.Status.Generated() {
			generated++
		}
		if o.Status.DeliveredOrBetter() {
			delivered++
		}
	}

	return domain.ConversionReport{
		PaymentToGeneration:  ratio(generated, paid),
		GenerationToDelivery: ratio(delivered, generated),
		OverallSuccess:       ratio(delivered, len(orders)),
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
