// Package memory implements the repositories over process-local maps with
// a read-write lock: concurrent reads, serialized writes. Used by the test
// suites and when the server runs without a database.
package memory

import (
	"sort"
	"sync"

	"appforge/internal/domain"
	"appforge/internal/repository"
)

type OrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]domain.Order
	history map[string][]domain.StatusChange
	apps    map[string]domain.GeneratedApp
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:  make(map[string]domain.Order),
		history: make(map[string][]domain.StatusChange),
		apps:    make(map[string]domain.GeneratedApp),
	}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Save(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *OrderRepository) Update(order *domain.Order) error {
	return r.Save(order)
}

func (r *OrderRepository) FindByID(id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (r *OrderRepository) FindByUser(userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *OrderRepository) FindAll() ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *OrderRepository) AppendStatusChange(change *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	change.ID = uint64(len(r.history[change.OrderID]) + 1)
	r.history[change.OrderID] = append(r.history[change.OrderID], *change)
	return nil
}

func (r *OrderRepository) HistoryByOrder(orderID string) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StatusChange, len(r.history[orderID]))
	copy(out, r.history[orderID])
	return out, nil
}

func (r *OrderRepository) SaveGeneratedApp(app *domain.GeneratedApp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.OrderID] = *app
	return nil
}

func (r *OrderRepository) FindGeneratedApp(orderID string) (*domain.GeneratedApp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[orderID]
	if !ok {
		return nil, nil
	}
	cp := app
	return &cp, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type PaymentRepository struct {
	mu       sync.RWMutex
	intents  map[string]domain.PaymentIntent
	invoices map[string]domain.Invoice
	refunds  map[string]domain.Refund
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		intents:  make(map[string]domain.PaymentIntent),
		invoices: make(map[string]domain.Invoice),
		refunds:  make(map[string]domain.Refund),
	}
}

var _ repository.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) SaveIntent(intent *domain.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents[intent.ID] = *intent
	return nil
}

func (r *PaymentRepository) UpdateIntent(intent *domain.PaymentIntent) error {
	return r.SaveIntent(intent)
}

func (r *PaymentRepository) FindIntentByID(id string) (*domain.PaymentIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, ok := r.intents[id]
	if !ok {
		return nil, nil
	}
	cp := pi
	return &cp, nil
}

func (r *PaymentRepository) FindIntentsByOrder(orderID string) ([]domain.PaymentIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PaymentIntent
	for _, pi := range r.intents {
		if pi.OrderID == orderID {
			out = append(out, pi)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRepository) FindSucceededIntentByOrder(orderID string) (*domain.PaymentIntent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pi := range r.intents {
		if pi.OrderID == orderID && pi.Status == domain.IntentSucceeded {
			cp := pi
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PaymentRepository) SaveInvoice(invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *PaymentRepository) UpdateInvoice(invoice *domain.Invoice) error {
	return r.SaveInvoice(invoice)
}

func (r *PaymentRepository) FindInvoiceByID(id string) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := inv
	return &cp, nil
}

func (r *PaymentRepository) FindInvoicesByOrder(orderID string) ([]domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Invoice
	for _, inv := range r.invoices {
		if inv.OrderID == orderID {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRepository) SaveRefund(refund *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds[refund.ID] = *refund
	return nil
}

func (r *PaymentRepository) UpdateRefund(refund *domain.Refund) error {
	return r.SaveRefund(refund)
}

func (r *PaymentRepository) FindRefundsByIntent(intentID string) ([]domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Refund
	for _, re := range r.refunds {
		if re.IntentID == intentID {
			out = append(out, re)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
