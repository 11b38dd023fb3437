package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository defines the interface for sale ledger data access.
type Repository interface {
	CreateSale(ctx context.Context, sale *Sale) error
	GetSaleByOrderID(ctx context.Context, orderID string) (*Sale, error)
	GetSaleByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*Sale, error)
	FinalizeSale(ctx context.Context, sale *Sale) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new sale repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSale(ctx context.Context, sale *Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) GetSaleByOrderID(ctx context.Context, orderID string) (*Sale, error) {
	var sale Sale
	err := r.db.WithContext(ctx).First(&sale, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repository) GetSaleByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*Sale, error) {
	var sale Sale
	err := r.db.WithContext(ctx).First(&sale, "razorpay_order_id = ?", razorpayOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FinalizeSale writes the confirmation-time payment fields. Sales are never
// deleted; this is the single mutation after creation.
func (r *repository) FinalizeSale(ctx context.Context, sale *Sale) error {
	result := r.db.WithContext(ctx).Model(&Sale{}).
		Where("order_id = ?", sale.OrderID).
		Updates(map[string]interface{}{
			"razorpay_payment_id": sale.RazorpayPaymentID,
			"razorpay_signature":  sale.RazorpaySignature,
			"payment_status":      sale.PaymentStatus,
			"order_status":        sale.OrderStatus,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSaleNotFound
	}
	return nil
}
