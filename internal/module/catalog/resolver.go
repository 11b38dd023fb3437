package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ItemKind tags which catalog a resolved item came from.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// ResolvedItem is the checkout-facing view of a sellable item.
type ResolvedItem struct {
	Kind         ItemKind
	Partition    Partition // Set for products only
	ID           string
	Name         string
	UnitPrice    float64 // In rupees (major units)
	Category     string
	DownloadLink string
}

// Resolver locates a sellable item by id across the catalogs.
type Resolver struct {
	repo   Repository
	logger *zap.Logger
}

// NewResolver creates a new resolver.
func NewResolver(repo Repository, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve locates the item identified by exactly one of productID/serviceID.
//
// Product lookups probe the partitions in PartitionProbeOrder; the first hit
// wins. A failed probe (storage error, as opposed to a clean miss) aborts
// resolution and propagates, so callers can tell "not found" apart from
// "could not check".
func (r *Resolver) Resolve(ctx context.Context, productID, serviceID string) (*ResolvedItem, error) {
	if (productID == "") == (serviceID == "") {
		return nil, ErrIdentifierRequired
	}

	if serviceID != "" {
		return r.resolveService(ctx, serviceID)
	}
	return r.resolveProduct(ctx, productID)
}

func (r *Resolver) resolveProduct(ctx context.Context, id string) (*ResolvedItem, error) {
	for _, partition := range PartitionProbeOrder {
		product, err := r.repo.GetProduct(ctx, partition, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("probe %s catalog: %w", partition, err)
		}

		return &ResolvedItem{
			Kind:         ItemKindProduct,
			Partition:    product.Partition,
			ID:           product.ID,
			Name:         product.Name,
			UnitPrice:    product.Price,
			Category:     product.Category,
			DownloadLink: product.DownloadLink,
		}, nil
	}

	r.logger.Debug("product not found in any partition", zap.String("product_id", id))
	return nil, ErrProductNotFound
}

func (r *Resolver) resolveService(ctx context.Context, id string) (*ResolvedItem, error) {
	service, err := r.repo.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("fetch service: %w", err)
	}

	return &ResolvedItem{
		Kind:      ItemKindService,
		ID:        service.ID,
		Name:      service.Name,
		UnitPrice: service.RepresentativePrice(),
		Category:  service.Category,
	}, nil
}
