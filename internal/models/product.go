package models

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMyntra   Platform = "myntra"
	PlatformUnknown  Platform = "unknown"
)

// DetectPlatform guesses the retailer from a product URL
func DetectPlatform(url string) Platform {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "amazon"):
		return PlatformAmazon
	case strings.Contains(lower, "flipkart"):
		return PlatformFlipkart
	case strings.Contains(lower, "myntra"):
		return PlatformMyntra
	default:
		return PlatformUnknown
	}
}

type Product struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	URL           string     `json:"url" gorm:"not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"not null"`
	Platform      Platform   `json:"platform" gorm:"not null;index"`
	CurrentPrice  float64    `json:"current_price"`
	Currency      string     `json:"currency" gorm:"default:'INR'"`
	IsAvailable   bool       `json:"is_available" gorm:"default:true"`
	ImageURL      string     `json:"image_url"`
	LastCheckedAt *time.Time `json:"last_checked_at"` // Last successful sample; stale = recent cycles failed
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PricePoint is one immutable price observation. Rows are append-only;
// nothing ever updates or deletes them.
type PricePoint struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID  string    `json:"product_id" gorm:"not null;index"`
	Price      float64   `json:"price" gorm:"not null"`
	Currency   string    `json:"currency" gorm:"default:'INR'"`
	CapturedAt time.Time `json:"captured_at" gorm:"not null;index"`
}

type ProductWithHistory struct {
	Product
	History []PricePoint `json:"price_history"`
}
