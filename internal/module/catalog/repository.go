package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository defines the interface for catalog data access.
type Repository interface {
	// Product operations
	GetProduct(ctx context.Context, partition Partition, id string) (*Product, error)
	ListProducts(ctx context.Context, partition Partition, category string) ([]*Product, error)

	// Service operations
	GetService(ctx context.Context, id string) (*ServiceItem, error)
	ListServices(ctx context.Context, category string) ([]*ServiceItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// --- Product Operations ---

func (r *repository) GetProduct(ctx context.Context, partition Partition, id string) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).
		Where("partition = ? AND id = ?", partition, id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, partition Partition, category string) ([]*Product, error) {
	var products []*Product
	query := r.db.WithContext(ctx).
		Where("partition = ? AND active = ?", partition, true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}

// --- Service Operations ---

func (r *repository) GetService(ctx context.Context, id string) (*ServiceItem, error) {
	var service ServiceItem
	err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *repository) ListServices(ctx context.Context, category string) ([]*ServiceItem, error) {
	var services []*ServiceItem
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&services).Error
	return services, err
}
