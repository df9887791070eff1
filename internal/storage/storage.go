// Package storage is the only mutation surface over the product, price
// history, and alert tables. Relations are explicit: no cascading
// gorm associations, every cross-table write happens in a transaction
// spelled out here.
package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pricesniper/backend/internal/models"
)

// ProductStore manages tracked products. CommitSample is the single
// write path for sampled prices: the point append and the denormalized
// latest-price update commit together or not at all.
type ProductStore interface {
	ListProducts() ([]models.Product, error)
	ProductByID(id string) (*models.Product, error)
	ProductByURL(url string) (*models.Product, error)
	CreateProduct(p *models.Product) error
	DeleteProduct(id string) error
	CommitSample(productID string, price float64, currency string, available bool, imageURL string, at time.Time) (*models.PricePoint, error)
}

// HistoryStore reads the append-only price history.
type HistoryStore interface {
	QueryWindow(productID string, since time.Time) ([]models.PricePoint, error)
	LatestPoint(productID string) (*models.PricePoint, error)
}

// AlertStore manages alert state. AtomicTrigger is the only path from
// active to triggered; a false return means another evaluation won the
// race, which callers treat as a no-op, not an error.
type AlertStore interface {
	CreateAlert(a *models.Alert) error
	ActiveAlerts(productID string) ([]models.Alert, error)
	AlertsByProduct(productID string) ([]models.Alert, error)
	ListAlerts(limit, offset int) ([]models.Alert, error)
	AtomicTrigger(alertID string, at time.Time) (bool, error)
	CancelAlert(alertID string) (bool, error)
	MarkNotified(alertID string, at time.Time) error
	RecordNotifyError(alertID string, msg string) error
	ListUnnotified() ([]models.Alert, error)
}

// GormStore implements ProductStore, HistoryStore, and AlertStore over
// a single gorm connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *GormStore) ProductByID(id string) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) ProductByURL(url string) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("url = ?", url).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) CreateProduct(p *models.Product) error {
	return s.db.Create(p).Error
}

func (s *GormStore) DeleteProduct(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Alert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.PricePoint{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Product{}).Error
	})
}

// CommitSample appends the price point and updates the product's
// denormalized latest price in one transaction.
func (s *GormStore) CommitSample(productID string, price float64, currency string, available bool, imageURL string, at time.Time) (*models.PricePoint, error) {
	point := models.PricePoint{
		ProductID:  productID,
		Price:      price,
		Currency:   currency,
		CapturedAt: at,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&point).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"current_price":   price,
			"currency":        currency,
			"is_available":    available,
			"last_checked_at": at,
			"updated_at":      at,
		}
		if imageURL != "" {
			updates["image_url"] = imageURL
		}

		result := tx.Model(&models.Product{}).Where("id = ?", productID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (s *GormStore) QueryWindow(productID string, since time.Time) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.Where("product_id = ? AND captured_at >= ?", productID, since).
		Order("captured_at ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (s *GormStore) LatestPoint(productID string) (*models.PricePoint, error) {
	var point models.PricePoint
	err := s.db.Where("product_id = ?", productID).
		Order("captured_at DESC").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func (s *GormStore) CreateAlert(a *models.Alert) error {
	return s.db.Create(a).Error
}

func (s *GormStore) ActiveAlerts(productID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.Where("product_id = ? AND status = ?", productID, models.AlertActive).
		Order("created_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *GormStore) AlertsByProduct(productID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *GormStore) ListAlerts(limit, offset int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// AtomicTrigger performs the guarded active -> triggered transition.
// The WHERE clause is the optimistic precondition: of N concurrent
// callers exactly one sees RowsAffected == 1.
func (s *GormStore) AtomicTrigger(alertID string, at time.Time) (bool, error) {
	result := s.db.Model(&models.Alert{}).
		Where("id = ? AND status = ?", alertID, models.AlertActive).
		Updates(map[string]any{
			"status":       models.AlertTriggered,
			"triggered_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CancelAlert deactivates an active alert. Triggered alerts stay
// triggered; cancellation is not a way back.
func (s *GormStore) CancelAlert(alertID string) (bool, error) {
	result := s.db.Model(&models.Alert{}).
		Where("id = ? AND status = ?", alertID, models.AlertActive).
		Update("status", models.AlertCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) MarkNotified(alertID string, at time.Time) error {
	return s.db.Model(&models.Alert{}).
		Where("id = ?", alertID).
		Updates(map[string]any{
			"notified_at":  at,
			"notify_error": "",
		}).Error
}

func (s *GormStore) RecordNotifyError(alertID string, msg string) error {
	return s.db.Model(&models.Alert{}).
		Where("id = ?", alertID).
		Update("notify_error", msg).Error
}

// ListUnnotified returns triggered alerts whose delivery has not been
// confirmed, for the outbox re-scan.
func (s *GormStore) ListUnnotified() ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.Where("status = ? AND notified_at IS NULL", models.AlertTriggered).
		Order("triggered_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
