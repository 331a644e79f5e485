package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"appforge/internal/domain"
	"appforge/internal/infra/rabbitmq"
	"appforge/internal/pricing"
	"appforge/internal/repository"
)

// OrderPaymentUpdater is the slice of the order store the ledger needs when
// an intent or refund resolves.
type OrderPaymentUpdater interface {
	SetPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error
}

// PaymentConfig tunes the simulated gateway. Production deployments set
// FailureRate to 0 and drive resolution through HandleWebhook instead.
type PaymentConfig struct {
	Latency       time.Duration
	RefundLatency time.Duration
	FailureRate   float64
	WebhookSecret string
}

// PaymentService manages the PaymentIntent lifecycle: create,
// confirm-asynchronously, refund. Confirm and refund return once the work
// is accepted; resolution lands later on a separate goroutine, so callers
// await or subscribe rather than assume completion.
type PaymentService struct {
	repo      repository.PaymentRepository
	orders    OrderPaymentUpdater
	publisher rabbitmq.PublisherInterface
	cfg       PaymentConfig
	log       *logrus.Entry

	mu       sync.Mutex
	watchers map[string][]chan domain.PaymentIntentStatus
	rng      *rand.Rand

	invoiceSeq uint64
}

func NewPaymentService(repo repository.PaymentRepository, orders OrderPaymentUpdater, publisher rabbitmq.PublisherInterface, cfg PaymentConfig) *PaymentService {
	return &PaymentService{
		repo:      repo,
		orders:    orders,
		publisher: publisher,
		cfg:       cfg,
		watchers:  make(map[string][]chan domain.PaymentIntentStatus),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       logrus.WithField("component", "payments"),
	}
}

// CreatePaymentIntent materializes an intent for the order total plus tax
// for the customer's country.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, order *domain.Order, paymentMethodID string) (*domain.PaymentIntent, error) {
	total := order.Pricing.TotalAmount
	amount := total + pricing.Tax(total, order.CustomerInfo.Country)

	now := time.Now().UTC()
	intent := &domain.PaymentIntent{
		ID:              "pi_" + uuid.NewString(),
		OrderID:         order.ID,
		Amount:          amount,
		Currency:        order.Pricing.Currency,
		Status:          domain.IntentPending,
		PaymentMethodID: paymentMethodID,
		ClientSecret:    "pi_secret_" + uuid.NewString(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.SaveIntent(intent); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"intentId": intent.ID,
		"orderId":  order.ID,
		"amount":   amount,
	}).Info("payment intent created")

	return intent, nil
}

func (s *PaymentService) GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	pi, err := s.repo.FindIntentByID(id)
	if err != nil {
		return nil, err
	}
	if pi == nil {
		return nil, domain.ErrIntentNotFound
	}
	return pi, nil
}

// ConfirmPayment moves the intent to processing and schedules the gateway
// resolution. It returns before the intent resolves.
func (s *PaymentService) ConfirmPayment(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	intent, err := s.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentPending {
		return nil, fmt.Errorf("payment intent %s is %s, not confirmable", intentID, intent.Status)
	}

	existing, err := s.repo.FindSucceededIntentByOrder(intent.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrOrderAlreadyPaid
	}

	intent.Status = domain.IntentProcessing
	intent.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateIntent(intent); err != nil {
		return nil, err
	}

	// Simulated gateway webhook latency.
	time.AfterFunc(s.cfg.Latency, func() {
		s.resolveIntent(intentID, s.outcome())
	})

	return intent, nil
}

func (s *PaymentService) outcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() >= s.cfg.FailureRate
}

// AwaitResult blocks until the intent resolves, the timeout elapses, or ctx
// is cancelled. Timeout maps to ErrPaymentTimeout.
func (s *PaymentService) AwaitResult(ctx context.Context, intentID string, timeout time.Duration) (domain.PaymentIntentStatus, error) {
	ch := make(chan domain.PaymentIntentStatus, 1)
	s.mu.Lock()
	s.watchers[intentID] = append(s.watchers[intentID], ch)
	s.mu.Unlock()

	// Re-check after registering so a resolution racing the registration
	// is never missed.
	intent, err := s.GetIntent(ctx, intentID)
	if err != nil {
		s.dropWatcher(intentID, ch)
		return "", err
	}
	if intent.Status.Resolved() {
		s.dropWatcher(intentID, ch)
		return intent.Status, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case st := <-ch:
		return st, nil
	case <-timer.C:
		s.dropWatcher(intentID, ch)
		return "", domain.ErrPaymentTimeout
	case <-ctx.Done():
		s.dropWatcher(intentID, ch)
		return "", ctx.Err()
	}
}

func (s *PaymentService) dropWatcher(intentID string, ch chan domain.PaymentIntentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := s.watchers[intentID]
	for i, w := range ws {
		if w == ch {
			s.watchers[intentID] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(s.watchers[intentID]) == 0 {
		delete(s.watchers, intentID)
	}
}

// resolveIntent applies the eventual gateway signal exactly once.
func (s *PaymentService) resolveIntent(intentID string, success bool) {
	ctx := context.Background()

	intent, err := s.repo.FindIntentByID(intentID)
	if err != nil || intent == nil {
		s.log.WithError(err).WithField("intentId", intentID).Warn("resolve: intent lookup failed")
		return
	}
	if intent.Status.Resolved() {
		return
	}

	if success {
		// At most one succeeded intent per order, ever.
		existing, err := s.repo.FindSucceededIntentByOrder(intent.OrderID)
		if err == nil && existing != nil && existing.ID != intent.ID {
			success = false
			intent.ErrorMessage = "order already captured by another intent"
		}
	}

	now := time.Now().UTC()
	intent.UpdatedAt = now
	if success {
		intent.Status = domain.IntentSucceeded
	} else {
		intent.Status = domain.IntentFailed
		if intent.ErrorMessage == "" {
			intent.ErrorMessage = "payment declined by gateway"
		}
	}
	if err := s.repo.UpdateIntent(intent); err != nil {
		s.log.WithError(err).WithField("intentId", intentID).Error("resolve: intent update failed")
		return
	}

	if success {
		if _, err := s.issueInvoice(intent); err != nil {
			s.log.WithError(err).WithField("intentId", intentID).Error("invoice creation failed")
		}
		if err := s.orders.SetPaymentStatus(ctx, intent.OrderID, domain.PaymentCompleted); err != nil {
			s.log.WithError(err).WithField("orderId", intent.OrderID).Error("order payment status update failed")
		}
		s.publishPaymentEvent(domain.EventPaymentSucceeded, intent)
		s.log.WithField("intentId", intentID).Info("payment succeeded")
	} else {
		if err := s.orders.SetPaymentStatus(ctx, intent.OrderID, domain.PaymentFailed); err != nil {
			s.log.WithError(err).WithField("orderId", intent.OrderID).Error("order payment status update failed")
		}
		s.publishPaymentEvent(domain.EventPaymentFailed, intent)
		s.log.WithField("intentId", intentID).Info("payment failed")
	}

	s.notifyWatchers(intentID, intent.Status)
}

func (s *PaymentService) notifyWatchers(intentID string, status domain.PaymentIntentStatus) {
	s.mu.Lock()
	ws := s.watchers[intentID]
	delete(s.watchers, intentID)
	s.mu.Unlock()

	for _, ch := range ws {
		select {
		case ch <- status:
		default:
		}
	}
}

func (s *PaymentService) issueInvoice(intent *domain.PaymentIntent) (*domain.Invoice, error) {
	now := time.Now().UTC()
	seq := atomic.AddUint64(&s.invoiceSeq, 1)
	paidAt := now

	invoice := &domain.Invoice{
		ID:          "inv_" + uuid.NewString(),
		OrderID:     intent.OrderID,
		IntentID:    intent.ID,
		Number:      fmt.Sprintf("INV-%d-%06d", now.Year(), seq),
		Amount:      intent.Amount,
		TotalAmount: intent.Amount,
		Currency:    intent.Currency,
		Status:      domain.InvoicePaid,
		DueDate:     now,
		PaidAt:      &paidAt,
		CreatedAt:   now,
	}
	if err := s.repo.SaveInvoice(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *PaymentService) OrderInvoices(ctx context.Context, orderID string) ([]domain.Invoice, error) {
	return s.repo.FindInvoicesByOrder(orderID)
}

// ProcessRefund accepts a refund for a succeeded intent. amount 0 means a
// full refund. Resolution is asynchronous, like confirmation.
func (s *PaymentService) ProcessRefund(ctx context.Context, intentID string, amount int64, reason string) (*domain.Refund, error) {
	intent, err := s.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentSucceeded {
		return nil, domain.ErrIntentNotRefundable
	}
	if amount == 0 {
		amount = intent.Amount
	}
	if amount > intent.Amount {
		return nil, domain.ErrRefundExceedsOriginal
	}

	now := time.Now().UTC()
	refund := &domain.Refund{
		ID:        "re_" + uuid.NewString(),
		IntentID:  intent.ID,
		OrderID:   intent.OrderID,
		Amount:    amount,
		Status:    domain.RefundPending,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.SaveRefund(refund); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"refundId": refund.ID,
		"intentId": intent.ID,
		"amount":   amount,
	}).Info("refund accepted")

	full := amount == intent.Amount
	settled := *refund
	time.AfterFunc(s.cfg.RefundLatency, func() {
		s.settleRefund(&settled, full)
	})

	return refund, nil
}

func (s *PaymentService) settleRefund(refund *domain.Refund, full bool) {
	ctx := context.Background()

	refund.Status = domain.RefundSucceeded
	refund.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateRefund(refund); err != nil {
		s.log.WithError(err).WithField("refundId", refund.ID).Error("settle: refund update failed")
		return
	}

	status := domain.PaymentPartialRefund
	if full {
		status = domain.PaymentRefunded
	}
	if err := s.orders.SetPaymentStatus(ctx, refund.OrderID, status); err != nil {
		s.log.WithError(err).WithField("orderId", refund.OrderID).Error("settle: order payment status update failed")
	}

	go func() {
		if s.publisher == nil {
			return
		}
		event := domain.RefundEvent{
			RefundID: refund.ID,
			IntentID: refund.IntentID,
			OrderID:  refund.OrderID,
			Amount:   refund.Amount,
			Full:     full,
		}
		if err := s.publisher.Publish(context.Background(), domain.EventRefundProcessed, event); err != nil {
			s.log.WithError(err).Warn("refund event publish failed")
		}
	}()

	s.log.WithField("refundId", refund.ID).Info("refund processed")
}

// RefundOrder issues a full refund for whatever succeeded intent the order
// holds. A no-op when nothing was captured.
func (s *PaymentService) RefundOrder(ctx context.Context, orderID, reason string) error {
	intent, err := s.repo.FindSucceededIntentByOrder(orderID)
	if err != nil {
		return err
	}
	if intent == nil {
		return nil
	}
	_, err = s.ProcessRefund(ctx, intent.ID, 0, reason)
	return err
}

// webhookEvent mirrors the gateway's signed callback payload.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies the HMAC-SHA256 signature and dispatches on event
// type. Bad signatures change no state; unknown event types are logged and
// ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.verifySignature(payload, signature) {
		return domain.ErrBadWebhookSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		s.resolveIntent(event.Data.Object.ID, true)
	case "payment_intent.payment_failed":
		s.resolveIntent(event.Data.Object.ID, false)
	case "invoice.payment_succeeded":
		return s.markInvoicePaid(ctx, event.Data.Object.ID)
	default:
		s.log.WithField("type", event.Type).Info("unhandled webhook event")
	}
	return nil
}

func (s *PaymentService) verifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload produces the signature HandleWebhook expects; used by tests
// and by the local gateway simulator.
func (s *PaymentService) SignPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) markInvoicePaid(ctx context.Context, invoiceID string) error {
	invoice, err := s.repo.FindInvoiceByID(invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrInvoiceNotFound
	}
	if invoice.Status == domain.InvoicePaid {
		return nil
	}
	now := time.Now().UTC()
	invoice.Status = domain.InvoicePaid
	invoice.PaidAt = &now
	return s.repo.UpdateInvoice(invoice)
}

func (s *PaymentService) publishPaymentEvent(routingKey string, intent *domain.PaymentIntent) {
	if s.publisher == nil {
		return
	}
	event := domain.PaymentEvent{
		IntentID: intent.ID,
		OrderID:  intent.OrderID,
		Amount:   intent.Amount,
		Status:   intent.Status,
		At:       intent.UpdatedAt,
	}
	go func() {
		if err := s.publisher.Publish(context.Background(), routingKey, event); err != nil {
			s.log.WithError(err).Warn("payment event publish failed")
		}
	}()
}
