package domain

import "time"

// Events published fire-and-forget to the order exchange. Routing keys are
// the event struct patterns below.

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderStuck         = "order.stuck"
	EventPaymentSucceeded   = "payment.succeeded"
	EventPaymentFailed      = "payment.failed"
	EventRefundProcessed    = "payment.refunded"
)

type OrderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount int64     `json:"totalAmount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID string      `json:"orderId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	At      time.Time   `json:"at"`
}

type OrderStuckEvent struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type PaymentEvent struct {
	IntentID string              `json:"intentId"`
	OrderID  string              `json:"orderId"`
	Amount   int64               `json:"amount"`
	Status   PaymentIntentStatus `json:"status"`
	At       time.Time           `json:"at"`
}

type RefundEvent struct {
	RefundID string `json:"refundId"`
	IntentID string `json:"intentId"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Full     bool   `json:"full"`
}
