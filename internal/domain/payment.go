package domain

import "time"

type PaymentIntentStatus string

const (
	IntentPending    PaymentIntentStatus = "pending"
	IntentProcessing PaymentIntentStatus = "processing"
	IntentSucceeded  PaymentIntentStatus = "succeeded"
	IntentFailed     PaymentIntentStatus = "failed"
	IntentCancelled  PaymentIntentStatus = "cancelled"
)

// Resolved reports whether the gateway signal for this intent has arrived.
func (s PaymentIntentStatus) Resolved() bool {
	return s == IntentSucceeded || s == IntentFailed || s == IntentCancelled
}

// PaymentIntent is a single attempt to capture an order's total. An order
// may accumulate intents across retries but holds at most one succeeded
// intent at a time.
type PaymentIntent struct {
	ID              string              `json:"id" gorm:"primaryKey;size:64"`
	OrderID         string              `json:"orderId" gorm:"column:order_id;index;not null"`
	Amount          int64               `json:"amount" gorm:"column:amount;not null"`
	Currency        string              `json:"currency" gorm:"column:currency"`
	Status          PaymentIntentStatus `json:"status" gorm:"column:status;index"`
	PaymentMethodID string              `json:"paymentMethodId" gorm:"column:payment_method_id"`
	ClientSecret    string              `json:"clientSecret,omitempty" gorm:"column:client_secret"`
	ErrorMessage    string              `json:"errorMessage,omitempty" gorm:"column:error_message"`
	CreatedAt       time.Time           `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" gorm:"column:updated_at"`
}

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
)

// Invoice is derived from a succeeded PaymentIntent and immutable except
// for its status and paidAt.
type Invoice struct {
	ID          string        `json:"id" gorm:"primaryKey;size:64"`
	OrderID     string        `json:"orderId" gorm:"column:order_id;index;not null"`
	IntentID    string        `json:"intentId" gorm:"column:intent_id;index"`
	Number      string        `json:"number" gorm:"column:number;uniqueIndex"`
	Amount      int64         `json:"amount" gorm:"column:amount"`
	TaxAmount   int64         `json:"taxAmount" gorm:"column:tax_amount"`
	TotalAmount int64         `json:"totalAmount" gorm:"column:total_amount"`
	Currency    string        `json:"currency" gorm:"column:currency"`
	Status      InvoiceStatus `json:"status" gorm:"column:status"`
	DueDate     time.Time     `json:"dueDate" gorm:"column:due_date"`
	PaidAt      *time.Time    `json:"paidAt,omitempty" gorm:"column:paid_at"`
	CreatedAt   time.Time     `json:"createdAt" gorm:"column:created_at"`
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
)

type Refund struct {
	ID        string       `json:"id" gorm:"primaryKey;size:64"`
	IntentID  string       `json:"intentId" gorm:"column:intent_id;index;not null"`
	OrderID   string       `json:"orderId" gorm:"column:order_id;index;not null"`
	Amount    int64        `json:"amount" gorm:"column:amount"`
	Status    RefundStatus `json:"status" gorm:"column:status"`
	Reason    string       `json:"reason,omitempty" gorm:"column:reason"`
	CreatedAt time.Time    `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time    `json:"updatedAt" gorm:"column:updated_at"`
}
