package services

import (
	"context"
	"time"

	"appforge/internal/domain"
	"appforge/internal/repository/memory"
)

// Fast gateway settings so the async payment paths resolve within a test
// run. FailureRate 0 makes confirmation deterministic; individual tests
// override it when exercising the decline path.
func testPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Latency:       5 * time.Millisecond,
		RefundLatency: 5 * time.Millisecond,
		FailureRate:   0,
		WebhookSecret: "whsec_test",
	}
}

const awaitTimeout = 2 * time.Second

func validOrderInput() CreateOrderInput {
	return CreateOrderInput{
		UserID: "user-1",
		CustomerInfo: domain.CustomerInfo{
			Name:    "Ada Lovelace",
			Email:   "ada@example.com",
			Country: "UK",
		},
		AppSpecification: domain.AppSpecification{
			Name:        "notes-app",
			Description: "a note taking app",
			Complexity:  domain.ComplexityMedium,
			Features:    []string{"Real-time Chat", "Payment Processing"},
		},
	}
}

func enterpriseOrderInput() CreateOrderInput {
	in := validOrderInput()
	in.AppSpecification.Name = "erp-suite"
	in.AppSpecification.Complexity = domain.ComplexityEnterprise
	in.AppSpecification.Features = []string{"Enterprise Security", "Advanced Analytics"}
	return in
}

// newOrderFixture wires an order service over fresh in-memory storage and
// returns both for direct repository assertions.
func newOrderFixture() (*OrderService, *memory.OrderRepository) {
	repo := memory.NewOrderRepository()
	return NewOrderService(repo, nil), repo
}

func newPaymentFixture(cfg PaymentConfig) (*OrderService, *PaymentService, *memory.PaymentRepository) {
	orders, _ := newOrderFixture()
	paymentRepo := memory.NewPaymentRepository()
	payments := NewPaymentService(paymentRepo, orders, nil, cfg)
	orders.SetRefunder(payments)
	return orders, payments, paymentRepo
}

func createTestOrder(orders *OrderService, in CreateOrderInput) *domain.Order {
	order, err := orders.CreateOrder(context.Background(), in)
	if err != nil {
		panic(err)
	}
	return order
}
