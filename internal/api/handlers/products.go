package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pricesniper/backend/internal/extract"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/services"
	"github.com/pricesniper/backend/internal/storage"
)

type ProductHandler struct {
	products  storage.ProductStore
	history   storage.HistoryStore
	registry  *extract.Registry
	scheduler *services.Scheduler
}

func NewProductHandler(products storage.ProductStore, history storage.HistoryStore, registry *extract.Registry, scheduler *services.Scheduler) *ProductHandler {
	return &ProductHandler{
		products:  products,
		history:   history,
		registry:  registry,
		scheduler: scheduler,
	}
}

type trackRequest struct {
	URL string `json:"url" binding:"required"`
}

// TrackProduct registers a URL for tracking. The first sample runs
// inline so the response already carries a name and price; from then
// on the scheduler owns the cadence.
func (h *ProductHandler) TrackProduct(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	extractor, err := h.registry.For(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported retailer URL"})
		return
	}

	// Re-tracking an existing URL returns the existing product
	existing, err := h.products.ProductByURL(req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	result, err := extractor.Extract(c.Request.Context(), req.URL)
	if err != nil {
		log.Printf("Products API: initial extraction failed for %s: %v", req.URL, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not extract product details: " + err.Error()})
		return
	}

	now := time.Now()
	product := models.Product{
		ID:            uuid.New().String(),
		URL:           req.URL,
		Name:          result.Title,
		Platform:      models.DetectPlatform(req.URL),
		CurrentPrice:  result.Price,
		Currency:      result.Currency,
		IsAvailable:   result.Availability,
		ImageURL:      result.ImageURL,
		LastCheckedAt: &now,
	}
	if err := h.products.CreateProduct(&product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.products.CommitSample(product.ID, result.Price, result.Currency, result.Availability, result.ImageURL, now); err != nil {
		log.Printf("Products API: failed to record first sample for %s: %v", product.ID, err)
	}

	log.Printf("Products API: tracking %s product %s (%s)", product.Platform, product.ID, product.Name)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct returns the product with its recorded price history.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.products.ProductByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	history, err := h.history.QueryWindow(product.ID, time.Now().Add(-90*24*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ProductWithHistory{Product: *product, History: history})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := h.products.ProductByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err := h.products.DeleteProduct(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// RefreshProduct queues an urgent out-of-cadence sample.
func (h *ProductHandler) RefreshProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := h.products.ProductByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	position := h.scheduler.RefreshOne(id)
	c.JSON(http.StatusOK, gin.H{
		"message":        "refresh queued",
		"queue_position": position,
	})
}

// RefreshAll requests a full sweep ahead of the next cadence tick.
func (h *ProductHandler) RefreshAll(c *gin.Context) {
	h.scheduler.RefreshAll()
	c.JSON(http.StatusOK, gin.H{"message": "full refresh queued"})
}
