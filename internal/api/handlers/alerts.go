package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/storage"
)

type AlertHandler struct {
	alerts   storage.AlertStore
	products storage.ProductStore
}

func NewAlertHandler(alerts storage.AlertStore, products storage.ProductStore) *AlertHandler {
	return &AlertHandler{alerts: alerts, products: products}
}

type createAlertRequest struct {
	ProductID     string  `json:"product_id" binding:"required"`
	TargetPrice   float64 `json:"target_price" binding:"required"`
	ContactMethod string  `json:"contact_method"`
	ContactValue  string  `json:"contact_value"`
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and target_price are required"})
		return
	}
	if req.TargetPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_price must be positive"})
		return
	}

	product, err := h.products.ProductByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	method := req.ContactMethod
	if method == "" {
		method = "telegram"
	}

	alert := models.Alert{
		ID:            uuid.New().String(),
		ProductID:     req.ProductID,
		TargetPrice:   req.TargetPrice,
		ContactMethod: method,
		ContactValue:  req.ContactValue,
		Status:        models.AlertActive,
	}
	if err := h.alerts.CreateAlert(&alert); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Alerts API: alert %s created for product %s at target %.2f", alert.ID, alert.ProductID, alert.TargetPrice)
	c.JSON(http.StatusCreated, alert)
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	alerts, err := h.alerts.ListAlerts(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *AlertHandler) AlertsByProduct(c *gin.Context) {
	alerts, err := h.alerts.AlertsByProduct(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// CancelAlert cancels an active alert. Triggered and cancelled alerts
// are terminal and cannot be cancelled again.
func (h *AlertHandler) CancelAlert(c *gin.Context) {
	id := c.Param("id")
	cancelled, err := h.alerts.CancelAlert(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !cancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "alert is not active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert cancelled"})
}
