package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"appforge/internal/domain"
	"appforge/internal/infra/rabbitmq"
	"appforge/internal/pricing"
	"appforge/internal/repository"
)

// dashboardCacheKey is shared with the dashboard aggregator; every order or
// payment mutation drops it.
const dashboardCacheKey = "dashboard:snapshot"

// Refunder lets the order store trigger a full refund on cancellation
// without importing the payment ledger directly.
type Refunder interface {
	RefundOrder(ctx context.Context, orderID, reason string) error
}

// OrderService owns Order entities and enforces the status state machine.
// All mutations for one order are serialized through a per-order lock; the
// repository underneath allows concurrent reads.
type OrderService struct {
	repo        repository.OrderRepository
	publisher   rabbitmq.PublisherInterface
	redisClient *redis.Client
	refunder    Refunder
	locks       sync.Map
	log         *logrus.Entry
}

func NewOrderService(repo repository.OrderRepository, publisher rabbitmq.PublisherInterface) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		log:       logrus.WithField("component", "orders"),
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *OrderService) SetRefunder(r Refunder) {
	s.refunder = r
}

type CreateOrderInput struct {
	UserID           string                  `json:"userId"`
	CustomerInfo     domain.CustomerInfo     `json:"customerInfo"`
	AppSpecification domain.AppSpecification `json:"appSpecification"`
}

func validateOrderInput(in CreateOrderInput) error {
	switch {
	case in.UserID == "":
		return &domain.ValidationError{Field: "userId"}
	case in.CustomerInfo.Name == "":
		return &domain.ValidationError{Field: "customerInfo.name"}
	case in.CustomerInfo.Email == "":
		return &domain.ValidationError{Field: "customerInfo.email"}
	case in.AppSpecification.Name == "":
		return &domain.ValidationError{Field: "appSpecification.name"}
	case len(in.AppSpecification.Features) == 0:
		return &domain.ValidationError{Field: "appSpecification.features"}
	}
	return nil
}

// CreateOrder validates the input, prices it, derives the timeline and
// legal terms, and persists the order as pending_payment. Validation
// failures happen before any write.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	priced := pricing.Calculate(in.AppSpecification)

	order := &domain.Order{
		ID:               "ord_" + uuid.NewString(),
		UserID:           in.UserID,
		CustomerInfo:     in.CustomerInfo,
		AppSpecification: in.AppSpecification,
		Pricing:          priced,
		Timeline:         pricing.EstimateTimeline(in.AppSpecification, now),
		Legal: domain.LegalTerms{
			ContractID:           "contract_" + uuid.NewString(),
			CodeOwnership:        "client",
			LicenseType:          "MIT",
			CommercialRights:     true,
			RedistributionRights: priced.TotalAmount >= 10000,
		},
		Status:        domain.StatusPendingPayment,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Save(order); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"orderId": order.ID,
		"total":   priced.TotalAmount,
		"tier":    in.AppSpecification.Complexity,
	}).Info("order created")

	go s.publish(domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: priced.TotalAmount,
		Currency:    priced.Currency,
		CreatedAt:   order.CreatedAt,
	})
	s.invalidateDashboard(ctx)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.FindByUser(userID)
}

func (s *OrderService) History(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.HistoryByOrder(orderID)
}

// UpdateOrderStatus applies one edge of the state graph. Illegal
// transitions leave the order untouched and return
// InvalidStateTransitionError.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, to domain.OrderStatus) error {
	unlock := s.lockOrder(id)
	defer unlock()
	return s.transition(ctx, id, to, "")
}

// CancelOrder refunds a completed payment in full and moves the order to
// cancelled. Delivered, completed and already-terminal orders are not
// cancellable.
func (s *OrderService) CancelOrder(ctx context.Context, id, reason string) error {
	unlock := s.lockOrder(id)
	defer unlock()

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status.Terminal() || order.Status.DeliveredOrBetter() {
		return domain.ErrOrderNotCancellable
	}

	if order.PaymentStatus == domain.PaymentCompleted && s.refunder != nil {
		if err := s.refunder.RefundOrder(ctx, id, reason); err != nil {
			return err
		}
	}

	s.log.WithFields(logrus.Fields{"orderId": id, "reason": reason}).Info("order cancelled")
	return s.transition(ctx, id, domain.StatusCancelled, reason)
}

// MarkFailed is the pipeline's terminal rollback. Orders already in a
// terminal status are left alone.
func (s *OrderService) MarkFailed(ctx context.Context, id, reason string) error {
	unlock := s.lockOrder(id)
	defer unlock()

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return nil
	}
	return s.transition(ctx, id, domain.StatusFailed, reason)
}

// SetPaymentStatus is called by the payment ledger when an intent or
// refund resolves.
func (s *OrderService) SetPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	order.PaymentStatus = status
	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(order); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *OrderService) StoreGeneratedApp(ctx context.Context, app *domain.GeneratedApp) error {
	if app.ID == "" {
		app.ID = "app_" + uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	return s.repo.SaveGeneratedApp(app)
}

func (s *OrderService) GeneratedApp(ctx context.Context, orderID string) (*domain.GeneratedApp, error) {
	return s.repo.FindGeneratedApp(orderID)
}

// SearchOrders substring-matches over customer name/email, app name and
// order id, then applies the shared dashboard filter/sort predicate.
func (s *OrderService) SearchOrders(ctx context.Context, query string, filters *domain.OrderFilters) ([]domain.Order, error) {
	all, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matched []domain.Order
	for _, o := range all {
		if q == "" ||
			strings.Contains(strings.ToLower(o.CustomerInfo.Name), q) ||
			strings.Contains(strings.ToLower(o.CustomerInfo.Email), q) ||
			strings.Contains(strings.ToLower(o.AppSpecification.Name), q) ||
			strings.Contains(strings.ToLower(o.ID), q) {
			matched = append(matched, o)
		}
	}

	return ApplyFilters(matched, filters), nil
}

// transition assumes the caller holds the order lock.
func (s *OrderService) transition(ctx context.Context, id string, to domain.OrderStatus, reason string) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}

	from := order.Status
	if !domain.CanTransition(from, to) {
		return &domain.InvalidStateTransitionError{From: from, To: to}
	}

	now := time.Now().UTC()
	order.Status = to
	order.UpdatedAt = now
	if err := s.repo.Update(order); err != nil {
		return err
	}

	change := &domain.StatusChange{OrderID: id, From: from, To: to, Reason: reason, At: now}
	if err := s.repo.AppendStatusChange(change); err != nil {
		s.log.WithError(err).WithField("orderId", id).Warn("status history append failed")
	}

	s.log.WithFields(logrus.Fields{"orderId": id, "from": from, "to": to}).Info("order status changed")

	go s.publish(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID: id,
		From:    from,
		To:      to,
		At:      now,
	})
	s.invalidateDashboard(ctx)

	return nil
}

func (s *OrderService) lockOrder(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// publish is fire-and-forget: a broker outage never blocks or fails an
// order mutation.
func (s *OrderService) publish(routingKey string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), routingKey, event); err != nil {
		s.log.WithError(err).WithField("routingKey", routingKey).Warn("event publish failed")
	}
}

func (s *OrderService) invalidateDashboard(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, dashboardCacheKey)
}
