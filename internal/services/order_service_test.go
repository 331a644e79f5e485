package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appforge/internal/domain"
	"appforge/internal/mocks"
)

func TestOrderService_CreateOrder(t *testing.T) {
	orders, repo := newOrderFixture()

	order, err := orders.CreateOrder(context.Background(), validOrderInput())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.StatusPendingPayment, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, int64(9500), order.Pricing.TotalAmount)
	assert.Equal(t, "USD", order.Pricing.Currency)
	assert.False(t, order.Timeline.EstimatedCompletion.IsZero())
	assert.True(t, order.Timeline.RevisionDeadline.After(order.Timeline.EstimatedCompletion))
	assert.True(t, order.Timeline.FinalDelivery.After(order.Timeline.RevisionDeadline))

	// Totals below the redistribution threshold keep the standard license.
	assert.NotEmpty(t, order.Legal.ContractID)
	assert.Equal(t, "client", order.Legal.CodeOwnership)
	assert.False(t, order.Legal.RedistributionRights)

	saved, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, order.ID, saved.ID)
}

func TestOrderService_CreateOrderRedistributionRights(t *testing.T) {
	orders, _ := newOrderFixture()

	order, err := orders.CreateOrder(context.Background(), enterpriseOrderInput())
	require.NoError(t, err)
	assert.True(t, order.Legal.RedistributionRights)
}

func TestOrderService_CreateOrderValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
		field  string
	}{
		{"missing user", func(in *CreateOrderInput) { in.UserID = "" }, "userId"},
		{"missing customer name", func(in *CreateOrderInput) { in.CustomerInfo.Name = "" }, "customerInfo.name"},
		{"missing customer email", func(in *CreateOrderInput) { in.CustomerInfo.Email = "" }, "customerInfo.email"},
		{"missing app name", func(in *CreateOrderInput) { in.AppSpecification.Name = "" }, "appSpecification.name"},
		{"no features", func(in *CreateOrderInput) { in.AppSpecification.Features = nil }, "appSpecification.features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, repo := newOrderFixture()

			in := validOrderInput()
			tt.mutate(&in)

			_, err := orders.CreateOrder(context.Background(), in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			// Rejected input writes nothing.
			all, err := repo.FindAll()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestOrderService_GetOrderNotFound(t *testing.T) {
	orders, _ := newOrderFixture()

	_, err := orders.GetOrder(context.Background(), "ord_missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	err := orders.UpdateOrderStatus(context.Background(), order.ID, domain.StatusPaymentConfirmed)
	require.NoError(t, err)

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentConfirmed, got.Status)
	assert.False(t, got.UpdatedAt.Before(order.UpdatedAt))

	history, err := orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusPendingPayment, history[0].From)
	assert.Equal(t, domain.StatusPaymentConfirmed, history[0].To)
}

func TestOrderService_UpdateOrderStatusIllegalTransition(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	err := orders.UpdateOrderStatus(context.Background(), order.ID, domain.StatusDeploying)

	var terr *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.StatusPendingPayment, terr.From)
	assert.Equal(t, domain.StatusDeploying, terr.To)

	// A rejected transition leaves the order untouched.
	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, got.Status)
	assert.Equal(t, order.UpdatedAt, got.UpdatedAt)

	history, err := orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOrderService_CancelOrderWithoutPayment(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	refunder := &mocks.MockRefunder{}
	orders.SetRefunder(refunder)

	err := orders.CancelOrder(context.Background(), order.ID, "changed my mind")
	require.NoError(t, err)

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	// Nothing captured yet, so no refund is issued.
	refunder.AssertNotCalled(t, "RefundOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrderRefundsCompletedPayment(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	require.NoError(t, orders.SetPaymentStatus(context.Background(), order.ID, domain.PaymentCompleted))

	refunder := &mocks.MockRefunder{}
	refunder.On("RefundOrder", mock.Anything, order.ID, "too slow").Return(nil)
	orders.SetRefunder(refunder)

	err := orders.CancelOrder(context.Background(), order.ID, "too slow")
	require.NoError(t, err)

	refunder.AssertExpectations(t)

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestOrderService_CancelOrderNotCancellable(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	require.NoError(t, orders.CancelOrder(context.Background(), order.ID, "first"))

	// Cancelling twice, or after delivery, is refused.
	err := orders.CancelOrder(context.Background(), order.ID, "second")
	assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)
}

func TestOrderService_MarkFailed(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	require.NoError(t, orders.MarkFailed(context.Background(), order.ID, "generation exploded"))

	got, err := orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)

	history, err := orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "generation exploded", history[0].Reason)

	// Terminal orders are left alone on repeat calls.
	require.NoError(t, orders.MarkFailed(context.Background(), order.ID, "again"))
	got, err = orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

func TestOrderService_GetUserOrders(t *testing.T) {
	orders, _ := newOrderFixture()

	createTestOrder(orders, validOrderInput())
	createTestOrder(orders, validOrderInput())

	other := validOrderInput()
	other.UserID = "user-2"
	createTestOrder(orders, other)

	mine, err := orders.GetUserOrders(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := orders.GetUserOrders(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestOrderService_SearchOrders(t *testing.T) {
	orders, _ := newOrderFixture()

	a := createTestOrder(orders, validOrderInput())

	other := validOrderInput()
	other.CustomerInfo.Name = "Grace Hopper"
	other.CustomerInfo.Email = "grace@navy.mil"
	other.AppSpecification.Name = "compiler-playground"
	other.AppSpecification.Complexity = domain.ComplexityEnterprise
	b := createTestOrder(orders, other)

	ctx := context.Background()

	byName, err := orders.SearchOrders(ctx, "grace", nil)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, b.ID, byName[0].ID)

	byApp, err := orders.SearchOrders(ctx, "notes", nil)
	require.NoError(t, err)
	require.Len(t, byApp, 1)
	assert.Equal(t, a.ID, byApp[0].ID)

	byID, err := orders.SearchOrders(ctx, a.ID, nil)
	require.NoError(t, err)
	require.Len(t, byID, 1)

	all, err := orders.SearchOrders(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := orders.SearchOrders(ctx, "", &domain.OrderFilters{
		Complexity: []domain.ComplexityTier{domain.ComplexityEnterprise},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, b.ID, filtered[0].ID)
}

func TestOrderService_StoreAndFetchGeneratedApp(t *testing.T) {
	orders, _ := newOrderFixture()
	order := createTestOrder(orders, validOrderInput())

	app := &domain.GeneratedApp{
		OrderID:   order.ID,
		Name:      "notes-app",
		Framework: "nextjs",
		Files:     []domain.GeneratedFile{{Path: "pages/index.tsx", Content: "export default ..."}},
	}
	require.NoError(t, orders.StoreGeneratedApp(context.Background(), app))
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.CreatedAt.IsZero())

	got, err := orders.GeneratedApp(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, app.ID, got.ID)
	assert.Len(t, got.Files, 1)
}

func TestApplyFiltersSorting(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	input := []domain.Order{
		{ID: "a", CreatedAt: base.Add(2 * time.Hour), Pricing: domain.Pricing{TotalAmount: 100}},
		{ID: "b", CreatedAt: base, Pricing: domain.Pricing{TotalAmount: 300}},
		{ID: "c", CreatedAt: base.Add(time.Hour), Pricing: domain.Pricing{TotalAmount: 200}},
	}

	byCreated := ApplyFilters(input, &domain.OrderFilters{SortBy: "createdAt", SortOrder: "asc"})
	assert.Equal(t, []string{"b", "c", "a"}, orderIDs(byCreated))

	byAmount := ApplyFilters(input, &domain.OrderFilters{SortBy: "totalAmount", SortOrder: "desc"})
	assert.Equal(t, []string{"b", "c", "a"}, orderIDs(byAmount))

	after := base.Add(30 * time.Minute)
	windowed := ApplyFilters(input, &domain.OrderFilters{CreatedAfter: &after})
	assert.Len(t, windowed, 2)
}

func orderIDs(orders []domain.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
