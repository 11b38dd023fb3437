package catalog

import (
	"errors"

	"github.com/digiworldadda/server/internal/shared/response"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the storefront catalog.
type Handler struct {
	repo Repository
}

// NewHandler creates a new catalog handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/catalog")
	{
		catalog.GET("/products", h.ListProducts)
		catalog.GET("/products/:id", h.GetProduct)
		catalog.GET("/services", h.ListServices)
		catalog.GET("/services/:id", h.GetService)
	}
}

// ListProducts returns products in a catalog partition.
//
//	@Summary		List products
//	@Description	List active products in one catalog partition
//	@Tags			Catalog
//	@Produce		json
//	@Param			partition	query		string	false	"Catalog partition (ppv or digiworldadda)"
//	@Param			category	query		string	false	"Category filter"
//	@Success		200			{object}	response.Envelope
//	@Router			/catalog/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	partition := Partition(c.DefaultQuery("partition", string(PartitionPPV)))
	if !partition.IsValid() {
		response.BadRequest(c, ErrInvalidPartition.Error())
		return
	}

	products, err := h.repo.ListProducts(c.Request.Context(), partition, c.Query("category"))
	if err != nil {
		response.InternalError(c, "failed to list products")
		return
	}

	response.OK(c, gin.H{"products": products})
}

// GetProduct returns a product by id, probing both catalog partitions.
//
//	@Summary		Get product
//	@Description	Fetch one product by id across catalog partitions
//	@Tags			Catalog
//	@Produce		json
//	@Param			id	path		string	true	"Product id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/catalog/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	for _, partition := range PartitionProbeOrder {
		product, err := h.repo.GetProduct(c.Request.Context(), partition, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			response.InternalError(c, "failed to fetch product")
			return
		}
		response.OK(c, product)
		return
	}

	response.NotFound(c, "Product not found")
}

// ListServices returns active services.
//
//	@Summary		List services
//	@Description	List active services
//	@Tags			Catalog
//	@Produce		json
//	@Param			category	query		string	false	"Category filter"
//	@Success		200			{object}	response.Envelope
//	@Router			/catalog/services [get]
func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.repo.ListServices(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.InternalError(c, "failed to list services")
		return
	}

	response.OK(c, gin.H{"services": services})
}

// GetService returns a service by id.
//
//	@Summary		Get service
//	@Description	Fetch one service by id
//	@Tags			Catalog
//	@Produce		json
//	@Param			id	path		string	true	"Service id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/catalog/services/{id} [get]
func (h *Handler) GetService(c *gin.Context) {
	service, err := h.repo.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			response.NotFound(c, "Service not found")
			return
		}
		response.InternalError(c, "failed to fetch service")
		return
	}

	response.OK(c, service)
}
