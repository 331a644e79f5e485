package http

import "appforge/internal/domain"

type CreateOrderRequest struct {
	UserID           string                  `json:"userId" binding:"required"`
	CustomerInfo     domain.CustomerInfo     `json:"customerInfo"`
	AppSpecification domain.AppSpecification `json:"appSpecification"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type CreateIntentRequest struct {
	OrderID         string `json:"orderId" binding:"required"`
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
}

type RefundRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

type RunPipelineRequest struct {
	UserID           string                  `json:"userId" binding:"required"`
	CustomerInfo     domain.CustomerInfo     `json:"customerInfo"`
	AppSpecification domain.AppSpecification `json:"appSpecification"`
	PaymentMethodID  string                  `json:"paymentMethodId" binding:"required"`
}
