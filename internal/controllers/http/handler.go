package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"appforge/internal/domain"
	"appforge/internal/services"
)

type Handler struct {
	orders    *services.OrderService
	payments  *services.PaymentService
	dashboard *services.DashboardService
	pipeline  *services.PipelineService
}

func NewHandler(orders *services.OrderService, payments *services.PaymentService, dashboard *services.DashboardService, pipeline *services.PipelineService) *Handler {
	return &Handler{orders: orders, payments: payments, dashboard: dashboard, pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/search", h.SearchOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/:id/history", h.GetOrderHistory)
	r.GET("/orders/:id/app", h.GetGeneratedApp)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.POST("/orders/:id/cancel", h.CancelOrder)
	r.GET("/users/:userId/orders", h.GetUserOrders)

	r.POST("/payments/intents", h.CreatePaymentIntent)
	r.POST("/payments/intents/:id/confirm", h.ConfirmPayment)
	r.POST("/payments/intents/:id/refund", h.RefundPayment)
	r.POST("/payments/webhook", h.PaymentWebhook)

	r.GET("/dashboard", h.GetDashboard)
	r.POST("/pipeline/run", h.RunPipeline)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:           req.UserID,
		CustomerInfo:     req.CustomerInfo,
		AppSpecification: req.AppSpecification,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	history, err := h.orders.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) GetGeneratedApp(c *gin.Context) {
	app, err := h.orders.GeneratedApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no generated application for order"})
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) GetUserOrders(c *gin.Context) {
	orders, err := h.orders.GetUserOrders(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Known() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + string(req.Status)})
		return
	}

	if err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.orders.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusCancelled})
}

func (h *Handler) SearchOrders(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.orders.SearchOrders(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	intent, err := h.payments.CreatePaymentIntent(c.Request.Context(), order, req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	intent, err := h.payments.ConfirmPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, intent)
}

func (h *Handler) RefundPayment(c *gin.Context) {
	var req RefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	refund, err := h.payments.ProcessRefund(c.Request.Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, refund)
}

func (h *Handler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.dashboard.GetDashboard(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) RunPipeline(c *gin.Context) {
	var req RunPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), services.CreateOrderInput{
		UserID:           req.UserID,
		CustomerInfo:     req.CustomerInfo,
		AppSpecification: req.AppSpecification,
	}, req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// parseFilters builds the shared filter predicate from query parameters.
// Nil means no filtering, which lets the dashboard serve its cached
// snapshot.
func parseFilters(c *gin.Context) (*domain.OrderFilters, error) {
	var f domain.OrderFilters
	var set bool

	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			f.Status = append(f.Status, domain.OrderStatus(s))
		}
		set = true
	}
	if v := c.Query("paymentStatus"); v != "" {
		for _, s := range strings.Split(v, ",") {
			f.PaymentStatus = append(f.PaymentStatus, domain.PaymentStatus(s))
		}
		set = true
	}
	if v := c.Query("complexity"); v != "" {
		for _, s := range strings.Split(v, ",") {
			f.Complexity = append(f.Complexity, domain.ComplexityTier(s))
		}
		set = true
	}
	if v := c.Query("createdAfter"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.Wrap(err, "createdAfter")
		}
		f.CreatedAfter = &t
		set = true
	}
	if v := c.Query("createdBefore"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.Wrap(err, "createdBefore")
		}
		f.CreatedBefore = &t
		set = true
	}
	if v := c.Query("sortBy"); v != "" {
		f.SortBy = v
		f.SortOrder = c.DefaultQuery("sortOrder", "desc")
		set = true
	}

	if !set {
		return nil, nil
	}
	return &f, nil
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var transition *domain.InvalidStateTransitionError
	var phase *domain.PhaseError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": transition.Error()})
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrIntentNotFound),
		errors.Is(err, domain.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotCancellable),
		errors.Is(err, domain.ErrOrderAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrIntentNotRefundable),
		errors.Is(err, domain.ErrRefundExceedsOriginal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBadWebhookSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.As(err, &phase):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "phase": phase.Phase})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
