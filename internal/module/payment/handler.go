package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/digiworldadda/server/internal/module/catalog"
	"github.com/digiworldadda/server/internal/module/payment/provider"
	"github.com/digiworldadda/server/internal/shared/response"
)

// Handler handles HTTP requests for checkout initiation and confirmation.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the payment routes. The paths are a wire contract
// with the storefront client and stay outside the versioned API group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payment := r.Group("/payment")
	{
		payment.POST("/initiate", h.InitiateCheckout)
		payment.POST("/confirm", h.ConfirmPayment)
		payment.GET("/orders/:orderId", h.GetOrderStatus)
	}
}

// InitiateCheckout creates a gateway order for one catalog item.
//
//	@Summary		Initiate checkout
//	@Description	Resolve an item, create a payment gateway order and return client checkout parameters
//	@Tags			Payment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InitiateCheckoutRequest	true	"Checkout request"
//	@Success		200		{object}	response.Envelope{data=CheckoutOrderData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/payment/initiate [post]
func (h *Handler) InitiateCheckout(c *gin.Context) {
	var req InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	meta := RequestMeta{
		UserAgent: c.Request.UserAgent(),
		ClientIP:  c.ClientIP(),
	}

	data, err := h.service.InitiateCheckout(c.Request.Context(), &req, meta)
	if err != nil {
		h.respondInitiateError(c, &req, err)
		return
	}

	response.OK(c, data)
}

// GetOrderStatus returns the state of one sale.
//
//	@Summary		Order status
//	@Description	Look up a sale by its order id
//	@Tags			Payment
//	@Produce		json
//	@Param			orderId	path		string	true	"Order id"
//	@Success		200		{object}	response.Envelope{data=OrderStatusData}
//	@Failure		404		{object}	response.Envelope
//	@Router			/payment/orders/{orderId} [get]
func (h *Handler) GetOrderStatus(c *gin.Context) {
	data, err := h.service.GetOrderStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			response.NotFound(c, "Order not found")
			return
		}
		h.logger.Error("order status lookup failed", zap.String("order_id", c.Param("orderId")), zap.Error(err))
		response.InternalError(c, "Failed to load order")
		return
	}

	response.OK(c, data)
}

// respondInitiateError maps pipeline failures onto the checkout wire
// contract. Message strings here are fixed; the storefront client matches
// on them.
func (h *Handler) respondInitiateError(c *gin.Context, req *InitiateCheckoutRequest, err error) {
	var cfgErr *ConfigurationError
	var gwErr *provider.Error

	switch {
	case errors.Is(err, catalog.ErrIdentifierRequired):
		response.BadRequest(c, "Either productId or serviceId is required")
	case errors.Is(err, catalog.ErrProductNotFound):
		response.NotFound(c, "Product not found")
	case errors.Is(err, catalog.ErrServiceNotFound):
		response.NotFound(c, "Service not found")
	case errors.As(err, &cfgErr):
		response.ErrorWithDebug(c, http.StatusInternalServerError,
			"Payment gateway is not configured", cfgErr.DebugFlags())
	case errors.As(err, &gwErr):
		response.InternalError(c, gwErr.Description)
	default:
		h.logger.Error("checkout initiation failed",
			zap.String("product_id", req.ProductID),
			zap.String("service_id", req.ServiceID),
			zap.Error(err))
		response.InternalError(c, "Failed to initiate checkout")
	}
}

// ConfirmPayment records the client-reported checkout outcome.
//
//	@Summary		Confirm payment
//	@Description	Finalize a pending sale with the gateway callback result
//	@Tags			Payment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ConfirmPaymentRequest	true	"Confirmation request"
//	@Success		200		{object}	response.Envelope{data=ConfirmPaymentData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/payment/confirm [post]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	data, err := h.service.ConfirmPayment(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFinalStatus):
			response.BadRequest(c, "status must be success, failed or cancelled")
		case errors.Is(err, ErrInvalidSignature):
			response.BadRequest(c, "Invalid payment signature")
		case errors.Is(err, ErrSaleNotFound):
			response.NotFound(c, "Order not found")
		case errors.Is(err, ErrAlreadyFinalized):
			response.Conflict(c, "Payment already finalized")
		default:
			h.logger.Error("payment confirmation failed",
				zap.String("razorpay_order_id", req.RazorpayOrderID),
				zap.Error(err))
			response.InternalError(c, "Failed to confirm payment")
		}
		return
	}

	response.OK(c, data)
}
