package payment

import "time"

// InitiateCheckoutRequest is the body of POST /api/payment/initiate. Exactly
// one of ProductID/ServiceID must be set.
type InitiateCheckoutRequest struct {
	ProductID     string `json:"productId"`
	ServiceID     string `json:"serviceId"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// CheckoutOrderData is the success payload of checkout initiation: everything
// the client needs to open the hosted checkout UI.
type CheckoutOrderData struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	AmountInPaise int64   `json:"amountInPaise"`
	Currency      string  `json:"currency"`
	ProductName   string  `json:"productName"`
	ProductID     string  `json:"productId,omitempty"`
	ServiceID     string  `json:"serviceId,omitempty"`
	KeyID         string  `json:"keyId"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	ReceiptID     string  `json:"receiptId"`
}

// ConfirmPaymentRequest is the body of POST /api/payment/confirm, filed by
// the client after the hosted checkout resolves.
type ConfirmPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
	Status            string `json:"status" binding:"required"` // success, failed, cancelled
}

// ConfirmPaymentData is the success payload of payment confirmation.
type ConfirmPaymentData struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
	OrderStatus   string `json:"orderStatus"`
}

// OrderStatusData is the customer-facing view of a sale.
type OrderStatusData struct {
	OrderID       string    `json:"orderId"`
	ItemName      string    `json:"itemName"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"paymentStatus"`
	OrderStatus   string    `json:"orderStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}
