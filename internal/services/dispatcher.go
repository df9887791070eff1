package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pricesniper/backend/internal/metrics"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/notify"
	"github.com/pricesniper/backend/internal/storage"
)

// Dispatcher hands fired-alert payloads to the notifier and tracks
// delivery outcomes. A failed delivery never rolls back the alert's
// triggered state; the outbox re-scan retries it on the next sweep.
type Dispatcher struct {
	alerts   storage.AlertStore
	products storage.ProductStore
	notifier notify.Notifier
	interval time.Duration
}

func NewDispatcher(alerts storage.AlertStore, products storage.ProductStore, notifier notify.Notifier, outboxInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		alerts:   alerts,
		products: products,
		notifier: notifier,
		interval: outboxInterval,
	}
}

// Dispatch attempts delivery for each payload independently. One
// failed delivery does not block the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, fired []models.FiredAlert) {
	for _, payload := range fired {
		d.deliver(ctx, payload)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, payload models.FiredAlert) {
	message := notify.FormatAlertMessage(payload)

	if err := d.notifier.Deliver(ctx, message, payload.ContactValue); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		log.Printf("Dispatcher: delivery failed for alert %s: %v", payload.AlertID, err)
		if rerr := d.alerts.RecordNotifyError(payload.AlertID, err.Error()); rerr != nil {
			log.Printf("Dispatcher: failed to record delivery error for alert %s: %v", payload.AlertID, rerr)
		}
		return
	}

	metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
	if err := d.alerts.MarkNotified(payload.AlertID, time.Now()); err != nil {
		// The outbox re-scan will re-attempt; the channel tolerates
		// at-least-once delivery
		log.Printf("Dispatcher: failed to mark alert %s notified: %v", payload.AlertID, err)
	}
}

// Start runs the periodic outbox re-scan: triggered alerts whose
// notification was never confirmed (crash between commit and dispatch,
// or every attempt so far failed) are re-delivered.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Printf("Dispatcher: outbox re-scan every %v", d.interval)

	// Catch anything left over from before the last shutdown
	d.Rescan(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dispatcher stopping...")
			return
		case <-ticker.C:
			d.Rescan(ctx)
		}
	}
}

// Rescan re-attempts delivery for every un-notified triggered alert.
func (d *Dispatcher) Rescan(ctx context.Context) {
	pending, err := d.alerts.ListUnnotified()
	if err != nil {
		log.Printf("Dispatcher: outbox scan failed: %v", err)
		return
	}
	metrics.OutboxPending.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	log.Printf("Dispatcher: outbox re-scan found %d undelivered alerts", len(pending))
	for _, alert := range pending {
		payload, err := d.rebuildPayload(alert)
		if err != nil {
			log.Printf("Dispatcher: cannot rebuild payload for alert %s: %v", alert.ID, err)
			continue
		}
		d.deliver(ctx, payload)
	}
}

// rebuildPayload reconstructs a fired payload for an alert whose
// original dispatch was lost. Target and trigger time come from the
// alert row; the observed price is the product's price at trigger time
// only if nothing sampled since, so the current price is the honest
// substitute.
func (d *Dispatcher) rebuildPayload(alert models.Alert) (models.FiredAlert, error) {
	product, err := d.products.ProductByID(alert.ProductID)
	if err != nil {
		return models.FiredAlert{}, err
	}
	if product == nil {
		return models.FiredAlert{}, fmt.Errorf("product %s not found", alert.ProductID)
	}

	firedAt := alert.CreatedAt
	if alert.TriggeredAt != nil {
		firedAt = *alert.TriggeredAt
	}

	return models.FiredAlert{
		AlertID:       alert.ID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		ProductURL:    product.URL,
		TargetPrice:   alert.TargetPrice,
		ObservedPrice: product.CurrentPrice,
		Currency:      product.Currency,
		ContactMethod: alert.ContactMethod,
		ContactValue:  alert.ContactValue,
		FiredAt:       firedAt,
	}, nil
}
