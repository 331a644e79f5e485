package services

import (
	"sort"

	"appforge/internal/domain"
)

// ApplyFilters narrows and orders a result set with the predicate shared by
// searchOrders and the dashboard.
func ApplyFilters(orders []domain.Order, f *domain.OrderFilters) []domain.Order {
	if f == nil {
		return orders
	}

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if len(f.Status) > 0 && !containsStatus(f.Status, o.Status) {
			continue
		}
		if len(f.PaymentStatus) > 0 && !containsPayment(f.PaymentStatus, o.PaymentStatus) {
			continue
		}
		if len(f.Complexity) > 0 && !containsTier(f.Complexity, o.AppSpecification.Complexity) {
			continue
		}
		if f.CreatedAfter != nil && o.CreatedAt.Before(*f.CreatedAfter) {
			continue
		}
		if f.CreatedBefore != nil && o.CreatedAt.After(*f.CreatedBefore) {
			continue
		}
		out = append(out, o)
	}

	sortOrders(out, f.SortBy, f.SortOrder)
	return out
}

func sortOrders(orders []domain.Order, by, order string) {
	if by == "" {
		return
	}

	less := func(a, b domain.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch by {
	case "updatedAt":
		less = func(a, b domain.Order) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case "totalAmount":
		less = func(a, b domain.Order) bool { return a.Pricing.TotalAmount < b.Pricing.TotalAmount }
	case "complexity":
		less = func(a, b domain.Order) bool {
			return tierRank(a.AppSpecification.Complexity) < tierRank(b.AppSpecification.Complexity)
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if order == "desc" {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}

func tierRank(t domain.ComplexityTier) int {
	switch t {
	case domain.ComplexityMedium:
		return 1
	case domain.ComplexityComplex:
		return 2
	case domain.ComplexityEnterprise:
		return 3
	default:
		return 0
	}
}

func containsStatus(set []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPayment(set []domain.PaymentStatus, s domain.PaymentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsTier(set []domain.ComplexityTier, t domain.ComplexityTier) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}
