package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appforge/internal/domain"
)

func TestPaymentService_CreatePaymentIntent(t *testing.T) {
	orders, payments, _ := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput()) // total 9500, UK customer

	intent, err := payments.CreatePaymentIntent(context.Background(), order, "pm_card")
	require.NoError(t, err)

	// UK tax is 20%: 9500 + 1900.
	assert.Equal(t, int64(11400), intent.Amount)
	assert.Equal(t, "USD", intent.Currency)
	assert.Equal(t, domain.IntentPending, intent.Status)
	assert.Equal(t, order.ID, intent.OrderID)
	assert.NotEmpty(t, intent.ClientSecret)
}

func TestPaymentService_ConfirmAndAwaitSuccess(t *testing.T) {
	ctx := context.Background()
	orders, payments, repo := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	intent, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)

	confirmed, err := payments.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentProcessing, confirmed.Status)

	status, err := payments.AwaitResult(ctx, intent.ID, awaitTimeout)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentSucceeded, status)

	// A succeeded intent carries an invoice and flips the order's payment
	// status before the awaiter wakes up.
	invoices, err := repo.FindInvoicesByOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, domain.InvoicePaid, invoices[0].Status)
	assert.Equal(t, intent.Amount, invoices[0].TotalAmount)
	assert.Regexp(t, `^INV-\d{4}-\d{6}$`, invoices[0].Number)
	require.NotNil(t, invoices[0].PaidAt)

	got, err := orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, got.PaymentStatus)
}

func TestPaymentService_ConfirmAndAwaitDecline(t *testing.T) {
	ctx := context.Background()
	cfg := testPaymentConfig()
	cfg.FailureRate = 1
	orders, payments, repo := newPaymentFixture(cfg)
	order := createTestOrder(orders, validOrderInput())

	intent, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)

	status, err := payments.AwaitResult(ctx, intent.ID, awaitTimeout)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFailed, status)

	failed, err := payments.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, "payment declined by gateway", failed.ErrorMessage)

	// Declines never produce invoices.
	invoices, err := repo.FindInvoicesByOrder(order.ID)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	got, err := orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
}

func TestPaymentService_ConfirmRejectsSecondCapture(t *testing.T) {
	ctx := context.Background()
	orders, payments, _ := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	first, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, first.ID)
	require.NoError(t, err)
	_, err = payments.AwaitResult(ctx, first.ID, awaitTimeout)
	require.NoError(t, err)

	second, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)
}

func TestPaymentService_ConfirmUnknownIntent(t *testing.T) {
	_, payments, _ := newPaymentFixture(testPaymentConfig())

	_, err := payments.ConfirmPayment(context.Background(), "pi_missing")
	assert.ErrorIs(t, err, domain.ErrIntentNotFound)
}

func TestPaymentService_AwaitTimeout(t *testing.T) {
	ctx := context.Background()
	cfg := testPaymentConfig()
	cfg.Latency = time.Hour // gateway never answers within the test
	orders, payments, _ := newPaymentFixture(cfg)
	order := createTestOrder(orders, validOrderInput())

	intent, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)

	_, err = payments.AwaitResult(ctx, intent.ID, 20*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrPaymentTimeout)
}

func TestPaymentService_ProcessRefundFull(t *testing.T) {
	ctx := context.Background()
	orders, payments, repo := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	intent := captureIntent(t, payments, order)

	refund, err := payments.ProcessRefund(ctx, intent.ID, 0, "customer request")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundPending, refund.Status)
	assert.Equal(t, intent.Amount, refund.Amount)

	assert.Eventually(t, func() bool {
		got, err := orders.GetOrder(ctx, order.ID)
		return err == nil && got.PaymentStatus == domain.PaymentRefunded
	}, awaitTimeout, 5*time.Millisecond)

	refunds, err := repo.FindRefundsByIntent(intent.ID)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, domain.RefundSucceeded, refunds[0].Status)
}

func TestPaymentService_ProcessRefundPartial(t *testing.T) {
	ctx := context.Background()
	orders, payments, _ := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	intent := captureIntent(t, payments, order)

	refund, err := payments.ProcessRefund(ctx, intent.ID, intent.Amount/2, "half back")
	require.NoError(t, err)
	assert.Equal(t, intent.Amount/2, refund.Amount)

	assert.Eventually(t, func() bool {
		got, err := orders.GetOrder(ctx, order.ID)
		return err == nil && got.PaymentStatus == domain.PaymentPartialRefund
	}, awaitTimeout, 5*time.Millisecond)
}

func TestPaymentService_ProcessRefundGuards(t *testing.T) {
	ctx := context.Background()
	orders, payments, _ := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	unresolved, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)

	_, err = payments.ProcessRefund(ctx, unresolved.ID, 0, "nothing captured")
	assert.ErrorIs(t, err, domain.ErrIntentNotRefundable)

	intent := captureIntent(t, payments, order)
	_, err = payments.ProcessRefund(ctx, intent.ID, intent.Amount+1, "too much")
	assert.ErrorIs(t, err, domain.ErrRefundExceedsOriginal)
}

func TestPaymentService_RefundOrderWithoutCaptureIsNoop(t *testing.T) {
	ctx := context.Background()
	orders, payments, repo := newPaymentFixture(testPaymentConfig())
	order := createTestOrder(orders, validOrderInput())

	require.NoError(t, payments.RefundOrder(ctx, order.ID, "nothing to refund"))

	intents, err := repo.FindIntentsByOrder(order.ID)
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	cfg := testPaymentConfig()
	cfg.Latency = time.Hour // resolution arrives via webhook, not the timer
	orders, payments, repo := newPaymentFixture(cfg)
	order := createTestOrder(orders, validOrderInput())

	intent, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)

	payload, _ := json.Marshal(map[string]any{
		"type": "payment_intent.succeeded",
		"data": map[string]any{"object": map[string]any{"id": intent.ID}},
	})

	t.Run("bad signature changes nothing", func(t *testing.T) {
		err := payments.HandleWebhook(ctx, payload, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrBadWebhookSignature)

		got, err := payments.GetIntent(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntentProcessing, got.Status)
	})

	t.Run("valid signature resolves the intent", func(t *testing.T) {
		err := payments.HandleWebhook(ctx, payload, payments.SignPayload(payload))
		require.NoError(t, err)

		got, err := payments.GetIntent(ctx, intent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntentSucceeded, got.Status)

		invoices, err := repo.FindInvoicesByOrder(order.ID)
		require.NoError(t, err)
		assert.Len(t, invoices, 1)
	})

	t.Run("duplicate delivery is idempotent", func(t *testing.T) {
		err := payments.HandleWebhook(ctx, payload, payments.SignPayload(payload))
		require.NoError(t, err)

		invoices, err := repo.FindInvoicesByOrder(order.ID)
		require.NoError(t, err)
		assert.Len(t, invoices, 1)
	})

	t.Run("unknown event types are ignored", func(t *testing.T) {
		unknown, _ := json.Marshal(map[string]any{"type": "customer.updated"})
		assert.NoError(t, payments.HandleWebhook(ctx, unknown, payments.SignPayload(unknown)))
	})
}

// captureIntent runs the happy confirmation path to completion.
func captureIntent(t *testing.T, payments *PaymentService, order *domain.Order) *domain.PaymentIntent {
	t.Helper()
	ctx := context.Background()

	intent, err := payments.CreatePaymentIntent(ctx, order, "pm_card")
	require.NoError(t, err)
	_, err = payments.ConfirmPayment(ctx, intent.ID)
	require.NoError(t, err)

	status, err := payments.AwaitResult(ctx, intent.ID, awaitTimeout)
	require.NoError(t, err)
	require.Equal(t, domain.IntentSucceeded, status)

	captured, err := payments.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	return captured
}
