package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus represents the state of a customer's package entitlement
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription tracks a customer's package entitlement: how many WhatsApp
// sessions they may run and until when. Created by the activation task once
// a transaction settles.
type Subscription struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID        uint               `gorm:"index" json:"user_id"`
	PackageID     uint               `gorm:"index" json:"package_id"`
	TransactionID uint               `gorm:"index" json:"transaction_id"`
	MaxSessions   int                `gorm:"default:1" json:"max_sessions"`
	ExpiresAt     time.Time          `json:"expires_at"`
	Status        SubscriptionStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// Relationships
	User     User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Package  WhatsAppPackage   `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Sessions []WhatsAppSession `gorm:"foreignKey:SubscriptionID" json:"sessions,omitempty"`
}

// IsUsable reports whether the subscription still grants access.
func (s Subscription) IsUsable(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.ExpiresAt)
}
