package services

import (
	"fmt"
	"time"

	"github.com/pricesniper/backend/internal/analytics"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/storage"
)

// ErrNoHistory is returned when a product has no recorded prices yet.
var ErrNoHistory = fmt.Errorf("no price history")

// TrendService is the read path: it feeds recorded history into the
// pure analyzer. Snapshots are memoized per latest price point, so any
// newly sampled price forces a recompute.
type TrendService struct {
	products storage.ProductStore
	history  storage.HistoryStore
	analyzer *analytics.Analyzer
	cache    *analytics.SnapshotCache
	horizon  time.Duration
}

func NewTrendService(products storage.ProductStore, history storage.HistoryStore, analyzer *analytics.Analyzer) *TrendService {
	return &TrendService{
		products: products,
		history:  history,
		analyzer: analyzer,
		cache:    analytics.NewSnapshotCache(),
		horizon:  90 * 24 * time.Hour,
	}
}

// Analyze classifies the product's current price against its history.
func (t *TrendService) Analyze(productID string) (*models.TrendSnapshot, *models.Product, error) {
	product, err := t.products.ProductByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, nil
	}

	latest, err := t.history.LatestPoint(productID)
	if err != nil {
		return nil, nil, err
	}

	var lastPointID uint
	if latest != nil {
		lastPointID = latest.ID
		if snap, ok := t.cache.Get(productID, lastPointID); ok {
			return &snap, product, nil
		}
	}

	now := time.Now()
	history, err := t.history.QueryWindow(productID, now.Add(-t.horizon))
	if err != nil {
		return nil, nil, err
	}

	snap := t.analyzer.Compute(history, product.CurrentPrice, now)
	if latest != nil {
		t.cache.Add(productID, lastPointID, snap)
	}
	return &snap, product, nil
}

// Trend returns the recorded price series for charting, ascending by
// capture time.
func (t *TrendService) Trend(productID string, days int) ([]models.PricePoint, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	return t.history.QueryWindow(productID, since)
}

// Savings reports real savings against the 30-day average.
func (t *TrendService) Savings(productID string, quantity int) (*models.Savings, *models.Product, error) {
	snap, product, err := t.Analyze(productID)
	if err != nil || snap == nil {
		return nil, nil, err
	}
	if !snap.Month.Present {
		return nil, product, ErrNoHistory
	}
	savings := analytics.Savings(product.CurrentPrice, snap.Month.Average, quantity)
	return &savings, product, nil
}
