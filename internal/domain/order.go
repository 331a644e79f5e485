package domain

import "time"

type ComplexityTier string

const (
	ComplexitySimple     ComplexityTier = "simple"
	ComplexityMedium     ComplexityTier = "medium"
	ComplexityComplex    ComplexityTier = "complex"
	ComplexityEnterprise ComplexityTier = "enterprise"
)

type OrderStatus string

const (
	StatusPendingPayment     OrderStatus = "pending_payment"
	StatusPaymentConfirmed   OrderStatus = "payment_confirmed"
	StatusContractSigned     OrderStatus = "contract_signed"
	StatusInQueue            OrderStatus = "in_queue"
	StatusOrchestrating      OrderStatus = "orchestrating"
	StatusGeneratingCore     OrderStatus = "generating_core"
	StatusGeneratingUI       OrderStatus = "generating_ui"
	StatusIntegrating        OrderStatus = "integrating"
	StatusTesting            OrderStatus = "testing"
	StatusDeploying          OrderStatus = "deploying"
	StatusReadyForReview     OrderStatus = "ready_for_review"
	StatusRevisionRequested  OrderStatus = "revision_requested"
	StatusRevisionInProgress OrderStatus = "revision_in_progress"
	StatusFinalApproval      OrderStatus = "final_approval"
	StatusDelivered          OrderStatus = "delivered"
	StatusCompleted          OrderStatus = "completed"
	StatusCancelled          OrderStatus = "cancelled"
	StatusFailed             OrderStatus = "failed"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentCompleted     PaymentStatus = "completed"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentPartialRefund PaymentStatus = "partial_refund"
)

type CustomerInfo struct {
	Name    string `json:"name" gorm:"column:customer_name"`
	Email   string `json:"email" gorm:"column:customer_email;index"`
	Country string `json:"country" gorm:"column:customer_country"`
}

type AppSpecification struct {
	Name        string         `json:"name" gorm:"column:app_name"`
	Description string         `json:"description" gorm:"column:app_description"`
	Complexity  ComplexityTier `json:"complexity" gorm:"column:complexity;index"`
	Features    []string       `json:"features" gorm:"column:features;serializer:json"`
}

// Pricing is computed once at order creation and never re-derived. Amounts
// are whole currency units; the multiplier is a factor, not money.
type Pricing struct {
	BasePrice            int64   `json:"basePrice" gorm:"column:base_price"`
	ComplexityMultiplier float64 `json:"complexityMultiplier" gorm:"column:complexity_multiplier"`
	FeatureAddOns        int64   `json:"featureAddOns" gorm:"column:feature_add_ons"`
	TotalAmount          int64   `json:"totalAmount" gorm:"column:total_amount"`
	Currency             string  `json:"currency" gorm:"column:currency"`
}

type Timeline struct {
	EstimatedCompletion time.Time `json:"estimatedCompletion" gorm:"column:estimated_completion"`
	RevisionDeadline    time.Time `json:"revisionDeadline" gorm:"column:revision_deadline"`
	FinalDelivery       time.Time `json:"finalDelivery" gorm:"column:final_delivery"`
}

type LegalTerms struct {
	ContractID           string `json:"contractId" gorm:"column:contract_id"`
	CodeOwnership        string `json:"codeOwnership" gorm:"column:code_ownership"`
	LicenseType          string `json:"licenseType" gorm:"column:license_type"`
	CommercialRights     bool   `json:"commercialRights" gorm:"column:commercial_rights"`
	RedistributionRights bool   `json:"redistributionRights" gorm:"column:redistribution_rights"`
}

type Order struct {
	ID               string           `json:"id" gorm:"primaryKey;size:64"`
	UserID           string           `json:"userId" gorm:"column:user_id;index;not null"`
	CustomerInfo     CustomerInfo     `json:"customerInfo" gorm:"embedded"`
	AppSpecification AppSpecification `json:"appSpecification" gorm:"embedded"`
	Pricing          Pricing          `json:"pricing" gorm:"embedded"`
	Timeline         Timeline         `json:"timeline" gorm:"embedded"`
	Legal            LegalTerms       `json:"legal" gorm:"embedded"`
	Status           OrderStatus      `json:"status" gorm:"column:status;index;not null"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus" gorm:"column:payment_status;index;not null"`
	CreatedAt        time.Time        `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" gorm:"column:updated_at"`
}

// StatusChange is one audit-trail entry for an order transition.
type StatusChange struct {
	ID      uint64      `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID string      `json:"orderId" gorm:"column:order_id;index;not null"`
	From    OrderStatus `json:"from" gorm:"column:from_status"`
	To      OrderStatus `json:"to" gorm:"column:to_status"`
	Reason  string      `json:"reason,omitempty" gorm:"column:reason"`
	At      time.Time   `json:"at" gorm:"column:at"`
}
