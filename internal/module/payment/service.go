package payment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digiworldadda/server/internal/module/catalog"
	"github.com/digiworldadda/server/internal/module/payment/provider"
	"github.com/digiworldadda/server/internal/shared/config"
	"github.com/digiworldadda/server/internal/shared/metrics"
)

// RequestMeta carries request-scoped metadata recorded on the sale ledger.
type RequestMeta struct {
	UserAgent string
	ClientIP  string
}

// Service orchestrates checkout: resolve the item, create the gateway order,
// write the sale ledger entry, and later finalize on confirmation.
type Service struct {
	repo     Repository
	resolver *catalog.Resolver
	gateway  provider.Gateway
	cfg      config.CheckoutConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a new payment service.
func NewService(repo Repository, resolver *catalog.Resolver, gateway provider.Gateway, cfg config.CheckoutConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		gateway:  gateway,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// InitiateCheckout runs the checkout initiation pipeline for one request.
//
// The sale ledger write near the end is best-effort: a customer who is ready
// to pay is never blocked by a bookkeeping failure, so write errors are
// logged, counted, and swallowed.
func (s *Service) InitiateCheckout(ctx context.Context, req *InitiateCheckoutRequest, meta RequestMeta) (*CheckoutOrderData, error) {
	if (req.ProductID == "") == (req.ServiceID == "") {
		return nil, catalog.ErrIdentifierRequired
	}

	if !s.gateway.IsConfigured() {
		keyID, keySecret := s.gateway.CredentialPresence()
		return nil, &ConfigurationError{KeyIDPresent: keyID, KeySecretPresent: keySecret}
	}

	item, err := s.resolver.Resolve(ctx, req.ProductID, req.ServiceID)
	if err != nil {
		s.countInitiation(req, "error")
		return nil, err
	}

	amountPaise := ToMinorUnits(item.UnitPrice)
	receiptID := s.gateway.GenerateReceiptID(item.ID)

	notes := map[string]interface{}{
		"itemId":       item.ID,
		"itemName":     item.Name,
		"supportEmail": s.cfg.SupportEmail,
	}
	if req.CustomerEmail != "" {
		notes["customerEmail"] = req.CustomerEmail
	}
	if req.CustomerPhone != "" {
		notes["customerPhone"] = req.CustomerPhone
	}
	if item.DownloadLink != "" {
		notes["downloadLink"] = item.DownloadLink
	} else {
		notes["fulfillment"] = "delivery details will be sent to " + s.cfg.SupportEmail
	}

	order, err := s.gateway.CreateOrder(ctx, provider.OrderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receiptID,
		Notes:    notes,
	})
	if err != nil {
		s.countInitiation(req, "error")
		return nil, err
	}

	s.recordSale(ctx, req, item, order, receiptID, amountPaise, meta)
	s.countInitiation(req, "ok")

	return &CheckoutOrderData{
		OrderID:       order.ID,
		Amount:        item.UnitPrice,
		AmountInPaise: amountPaise,
		Currency:      "INR",
		ProductName:   item.Name,
		ProductID:     req.ProductID,
		ServiceID:     req.ServiceID,
		KeyID:         s.gateway.ClientKeyID(),
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ReceiptID:     receiptID,
	}, nil
}

// recordSale persists the pending sale. Failures are swallowed.
func (s *Service) recordSale(ctx context.Context, req *InitiateCheckoutRequest, item *catalog.ResolvedItem, order *provider.Order, receiptID string, amountPaise int64, meta RequestMeta) {
	notes, _ := json.Marshal(map[string]string{
		"itemId":          item.ID,
		"itemName":        item.Name,
		"razorpayOrderId": order.ID,
		"receiptId":       receiptID,
	})

	sale := &Sale{
		ID:              uuid.New().String(),
		OrderID:         receiptID,
		RazorpayOrderID: order.ID,
		ReceiptID:       receiptID,
		ProductID:       req.ProductID,
		ServiceID:       req.ServiceID,
		ItemName:        item.Name,
		Partition:       string(item.Partition),
		Amount:          item.UnitPrice,
		AmountInPaise:   amountPaise,
		Currency:        "INR",
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		UserAgent:       meta.UserAgent,
		ClientIP:        meta.ClientIP,
		PaymentStatus:   PaymentStatusPending,
		OrderStatus:     OrderStatusCreated,
		Notes:           string(notes),
	}

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		s.metrics.LedgerWriteFailures.Inc()
		s.logger.Error("failed to record sale, continuing checkout",
			zap.String("order_id", receiptID),
			zap.String("razorpay_order_id", order.ID),
			zap.Error(err))
	}
}

func (s *Service) countInitiation(req *InitiateCheckoutRequest, outcome string) {
	kind := "product"
	if req.ServiceID != "" {
		kind = "service"
	}
	s.metrics.CheckoutsInitiatedTotal.WithLabelValues(kind, outcome).Inc()
}

// GetOrderStatus returns the current state of a sale by its internal order
// id (the receipt string shown to the customer).
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatusData, error) {
	sale, err := s.repo.GetSaleByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderStatusData{
		OrderID:       sale.OrderID,
		ItemName:      sale.ItemName,
		Amount:        sale.Amount,
		Currency:      sale.Currency,
		PaymentStatus: string(sale.PaymentStatus),
		OrderStatus:   string(sale.OrderStatus),
		CreatedAt:     sale.CreatedAt,
	}, nil
}

// ConfirmPayment finalizes a pending sale from the client's checkout
// callback. A successful payment must carry a valid gateway signature; failed
// and cancelled outcomes are recorded as reported.
func (s *Service) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*ConfirmPaymentData, error) {
	var paymentStatus PaymentStatus
	var orderStatus OrderStatus
	switch req.Status {
	case string(PaymentStatusSuccess):
		paymentStatus, orderStatus = PaymentStatusSuccess, OrderStatusCompleted
	case string(PaymentStatusFailed):
		paymentStatus, orderStatus = PaymentStatusFailed, OrderStatusFailed
	case string(PaymentStatusCancelled):
		paymentStatus, orderStatus = PaymentStatusCancelled, OrderStatusFailed
	default:
		return nil, ErrInvalidFinalStatus
	}

	if paymentStatus == PaymentStatusSuccess {
		if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
			return nil, ErrInvalidSignature
		}
	}

	sale, err := s.repo.GetSaleByRazorpayOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if sale.PaymentStatus != PaymentStatusPending {
		return nil, ErrAlreadyFinalized
	}

	sale.RazorpayPaymentID = req.RazorpayPaymentID
	sale.RazorpaySignature = req.RazorpaySignature
	sale.PaymentStatus = paymentStatus
	sale.OrderStatus = orderStatus

	if err := s.repo.FinalizeSale(ctx, sale); err != nil {
		return nil, err
	}

	s.metrics.CheckoutsConfirmedTotal.WithLabelValues(string(paymentStatus)).Inc()
	s.logger.Info("payment confirmed",
		zap.String("order_id", sale.OrderID),
		zap.String("razorpay_order_id", sale.RazorpayOrderID),
		zap.String("payment_status", string(paymentStatus)))

	return &ConfirmPaymentData{
		OrderID:       sale.OrderID,
		PaymentStatus: string(paymentStatus),
		OrderStatus:   string(orderStatus),
	}, nil
}
