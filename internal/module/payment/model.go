package payment

import "time"

// PaymentStatus tracks the payment lifecycle of a sale. The string values are
// part of the reconciliation contract with admin tooling and must not change.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// OrderStatus tracks fulfillment independently of payment.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Sale is the locally persisted record of one checkout attempt. It is created
// optimistically before the customer completes payment, so its existence does
// not imply a successful transaction.
type Sale struct {
	ID      string `json:"id" gorm:"primaryKey"`
	OrderID string `json:"orderId" gorm:"uniqueIndex;not null"` // internal correlation key, equals the gateway receipt

	// Gateway references. Payment id and signature stay empty until the
	// confirmation callback lands.
	RazorpayOrderID   string `json:"razorpayOrderId" gorm:"index"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
	ReceiptID         string `json:"receiptId"`

	// Exactly one of ProductID/ServiceID is set per sale.
	ProductID string `json:"productId,omitempty" gorm:"index"`
	ServiceID string `json:"serviceId,omitempty" gorm:"index"`
	ItemName  string `json:"itemName"`
	Partition string `json:"partition,omitempty"`

	// Price snapshot at order-creation time. Never recomputed from the
	// catalog, even if the listed price changes later.
	Amount        float64 `json:"amount"`
	AmountInPaise int64   `json:"amountInPaise"`
	Currency      string  `json:"currency"`

	CustomerEmail string `json:"customerEmail,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
	ClientIP      string `json:"clientIp,omitempty"`

	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"not null;default:pending;index"`
	OrderStatus   OrderStatus   `json:"orderStatus" gorm:"not null;default:created"`

	// Free-form duplication of the key identifiers for auditability.
	Notes string `json:"notes,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name.
func (Sale) TableName() string {
	return "sales"
}
