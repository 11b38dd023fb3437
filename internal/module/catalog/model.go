package catalog

import "time"

// Partition identifies one of the tenant product catalogs that share the
// storefront checkout surface.
type Partition string

const (
	PartitionPPV           Partition = "ppv"
	PartitionDigiworldadda Partition = "digiworldadda"
)

// PartitionProbeOrder is the order in which product lookups probe the
// partitions. First match wins, so the order is part of the resolution
// contract when an id exists in more than one partition.
var PartitionProbeOrder = []Partition{PartitionPPV, PartitionDigiworldadda}

// IsValid checks if the partition is a known catalog partition.
func (p Partition) IsValid() bool {
	switch p {
	case PartitionPPV, PartitionDigiworldadda:
		return true
	default:
		return false
	}
}

// Product represents a sellable digital product in one catalog partition.
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Partition    Partition `json:"partition" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"` // In rupees (major units)
	Category     string    `json:"category,omitempty" gorm:"index"`
	DownloadLink string    `json:"download_link,omitempty"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "products"
}

// ServiceItem represents a sellable service. Services live in a single
// undivided catalog and carry a price range instead of a unit price.
type ServiceItem struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	PriceFrom *float64  `json:"price_from,omitempty"`
	PriceTo   *float64  `json:"price_to,omitempty"`
	Category  string    `json:"category,omitempty" gorm:"index"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ServiceItem) TableName() string {
	return "service_items"
}

// RepresentativePrice collapses the price range to the single price used at
// checkout: priceFrom, else priceTo, else 0.
func (s *ServiceItem) RepresentativePrice() float64 {
	if s.PriceFrom != nil {
		return *s.PriceFrom
	}
	if s.PriceTo != nil {
		return *s.PriceTo
	}
	return 0
}
