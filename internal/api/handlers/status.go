package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricesniper/backend/internal/services"
	"github.com/pricesniper/backend/internal/storage"
)

type StatusHandler struct {
	scheduler *services.Scheduler
	products  storage.ProductStore
}

func NewStatusHandler(scheduler *services.Scheduler, products storage.ProductStore) *StatusHandler {
	return &StatusHandler{scheduler: scheduler, products: products}
}

// GetStatus reports scheduler progress and tracking totals.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	status := h.scheduler.GetStatus()

	tracked := 0
	if products, err := h.products.ListProducts(); err == nil {
		tracked = len(products)
	}

	c.JSON(http.StatusOK, gin.H{
		"scheduler":        status,
		"products_tracked": tracked,
	})
}
