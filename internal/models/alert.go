package models

import (
	"time"
)

// AlertStatus is the alert lifecycle state. Triggered and cancelled are
// terminal: an alert fires at most once and is never re-armed, even if
// the price rises back above the target and drops again.
type AlertStatus string

const (
	AlertActive    AlertStatus = "active"
	AlertTriggered AlertStatus = "triggered"
	AlertCancelled AlertStatus = "cancelled"
)

type Alert struct {
	ID            string      `json:"id" gorm:"primaryKey"`
	ProductID     string      `json:"product_id" gorm:"not null;index"`
	TargetPrice   float64     `json:"target_price" gorm:"not null"`
	ContactMethod string      `json:"contact_method" gorm:"default:'telegram'"`
	ContactValue  string      `json:"contact_value"`
	Status        AlertStatus `json:"status" gorm:"not null;index;default:'active'"`
	CreatedAt     time.Time   `json:"created_at"`
	// TriggeredAt is set if and only if Status is triggered
	TriggeredAt *time.Time `json:"triggered_at"`
	// NotifiedAt marks confirmed delivery; triggered alerts with a nil
	// NotifiedAt are picked up by the outbox re-scan
	NotifiedAt  *time.Time `json:"notified_at"`
	NotifyError string     `json:"notify_error,omitempty"`
}

// FiredAlert is the immutable payload produced when an alert wins the
// active -> triggered transition. It captures everything the notifier
// needs at transition time, so later mutations of the Alert or Product
// rows cannot change what gets delivered.
type FiredAlert struct {
	AlertID       string
	ProductID     string
	ProductName   string
	ProductURL    string
	TargetPrice   float64
	ObservedPrice float64
	Currency      string
	ContactMethod string
	ContactValue  string
	FiredAt       time.Time
}
