package catalog

import "errors"

// Module errors.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrIdentifierRequired = errors.New("either productId or serviceId is required")
	ErrInvalidPartition   = errors.New("invalid catalog partition")
)
