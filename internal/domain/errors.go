package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrIntentNotFound        = errors.New("payment intent not found")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrOrderNotCancellable   = errors.New("order cannot be cancelled in its current status")
	ErrOrderAlreadyPaid      = errors.New("order already has a succeeded payment")
	ErrIntentNotRefundable   = errors.New("payment intent is not refundable")
	ErrRefundExceedsOriginal = errors.New("refund amount exceeds original payment amount")
	ErrPaymentDeclined       = errors.New("payment declined")
	ErrPaymentTimeout        = errors.New("payment confirmation timed out")
	ErrBadWebhookSignature   = errors.New("webhook signature mismatch")
	ErrPipelineCancelled     = errors.New("order cancelled, pipeline stopped")
)

// ValidationError rejects malformed order data before any persistence.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s is required", e.Field)
}

// InvalidStateTransitionError reports a status update outside the allowed
// graph. No mutation happened.
type InvalidStateTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// PhaseError marks a pipeline phase failure. The orchestrator converts it
// into a terminal order state plus a refund side effect before re-throwing.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("pipeline phase %q failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
