package domain

// forwardTransitions is the single source of truth for the fulfillment
// graph. The two absorbing states, cancelled and failed, are handled in
// CanTransition: they are reachable from every non-terminal state except
// completed.
var forwardTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment:     {StatusPaymentConfirmed},
	StatusPaymentConfirmed:   {StatusContractSigned},
	StatusContractSigned:     {StatusInQueue},
	StatusInQueue:            {StatusOrchestrating},
	StatusOrchestrating:      {StatusGeneratingCore},
	StatusGeneratingCore:     {StatusGeneratingUI},
	StatusGeneratingUI:       {StatusIntegrating},
	StatusIntegrating:        {StatusTesting},
	StatusTesting:            {StatusDeploying},
	StatusDeploying:          {StatusReadyForReview},
	StatusReadyForReview:     {StatusRevisionRequested, StatusFinalApproval},
	StatusRevisionRequested:  {StatusRevisionInProgress},
	StatusRevisionInProgress: {StatusReadyForReview},
	StatusFinalApproval:      {StatusDelivered},
	StatusDelivered:          {StatusCompleted},
	StatusCompleted:          {},
	StatusCancelled:          {},
	StatusFailed:             {},
}

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Known reports whether s is part of the fulfillment graph at all.
func (s OrderStatus) Known() bool {
	_, ok := forwardTransitions[s]
	return ok
}

// CanTransition reports whether from → to is an edge of the allowed graph.
func CanTransition(from, to OrderStatus) bool {
	if !from.Known() || !to.Known() {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled || to == StatusFailed {
		return true
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InRevision reports whether the order sits in one of the revision states.
func (s OrderStatus) InRevision() bool {
	return s == StatusRevisionRequested || s == StatusRevisionInProgress
}

// Generated reports whether the order progressed at least to review, i.e.
// code generation finished for it at some point.
func (s OrderStatus) Generated() bool {
	switch s {
	case StatusReadyForReview, StatusRevisionRequested, StatusRevisionInProgress,
		StatusFinalApproval, StatusDelivered, StatusCompleted:
		return true
	}
	return false
}

// DeliveredOrBetter reports delivered or completed.
func (s OrderStatus) DeliveredOrBetter() bool {
	return s == StatusDelivered || s == StatusCompleted
}

// Active covers every status still moving toward delivery.
func (s OrderStatus) Active() bool {
	return s.Known() && !s.Terminal() && !s.DeliveredOrBetter()
}

// InGenerationQueue covers the machine-driven generation stages.
func (s OrderStatus) InGenerationQueue() bool {
	switch s {
	case StatusInQueue, StatusOrchestrating, StatusGeneratingCore,
		StatusGeneratingUI, StatusIntegrating, StatusTesting, StatusDeploying:
		return true
	}
	return false
}
