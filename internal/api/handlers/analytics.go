package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pricesniper/backend/internal/services"
)

type AnalyticsHandler struct {
	trends *services.TrendService
}

func NewAnalyticsHandler(trends *services.TrendService) *AnalyticsHandler {
	return &AnalyticsHandler{trends: trends}
}

// GetAnalysis classifies the product's current price against its
// recorded history.
func (h *AnalyticsHandler) GetAnalysis(c *gin.Context) {
	snapshot, product, err := h.trends.Analyze(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":   product.ID,
		"product_name": product.Name,
		"analysis":     snapshot,
	})
}

// GetTrend returns the price series for charting. Defaults to the last
// 30 days.
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	id := c.Param("id")
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	points, err := h.trends.Trend(id, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"days":       days,
		"points":     points,
		"count":      len(points),
	})
}

// GetSavings reports real savings against the 30-day average for a
// purchase of the given quantity.
func (h *AnalyticsHandler) GetSavings(c *gin.Context) {
	id := c.Param("id")
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive integer"})
		return
	}

	savings, product, err := h.trends.Savings(id, quantity)
	if err != nil {
		if errors.Is(err, services.ErrNoHistory) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough price history to compute savings"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": product.ID,
		"quantity":   quantity,
		"savings":    savings,
	})
}
