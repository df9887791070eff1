package services

import (
	"log"
	"time"

	"github.com/pricesniper/backend/internal/metrics"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/storage"
)

// AlertEngine owns the active -> triggered transition. Concurrent
// evaluations for the same alert serialize at the store's per-alert
// CAS, never at a product-wide lock, so racing pipeline runs cannot
// double-fire one alert or block unrelated alerts on the same product.
type AlertEngine struct {
	alerts storage.AlertStore
}

func NewAlertEngine(alerts storage.AlertStore) *AlertEngine {
	return &AlertEngine{alerts: alerts}
}

// Evaluate fires every pending alert on the product whose target the
// current price meets, exactly once each. A lost trigger race is a
// silent no-op: some other evaluation already fired that alert and
// owns its notification.
func (e *AlertEngine) Evaluate(product *models.Product, currentPrice float64) ([]models.FiredAlert, error) {
	pending, err := e.alerts.ActiveAlerts(product.ID)
	if err != nil {
		return nil, err
	}

	var fired []models.FiredAlert
	for _, alert := range pending {
		if currentPrice > alert.TargetPrice {
			continue
		}

		now := time.Now()
		won, err := e.alerts.AtomicTrigger(alert.ID, now)
		if err != nil {
			log.Printf("Alert engine: trigger failed for alert %s: %v", alert.ID, err)
			continue
		}
		if !won {
			metrics.AlertRacesLostTotal.Inc()
			continue
		}

		metrics.AlertsFiredTotal.Inc()
		log.Printf("Alert engine: alert %s fired for product %s (target %.2f, price %.2f)",
			alert.ID, product.ID, alert.TargetPrice, currentPrice)

		// Payload captured at transition time; later mutations of the
		// alert or product rows can't change what gets delivered
		fired = append(fired, models.FiredAlert{
			AlertID:       alert.ID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			ProductURL:    product.URL,
			TargetPrice:   alert.TargetPrice,
			ObservedPrice: currentPrice,
			Currency:      product.Currency,
			ContactMethod: alert.ContactMethod,
			ContactValue:  alert.ContactValue,
			FiredAt:       now,
		})
	}

	return fired, nil
}
