package models

import (
	"time"

	"gorm.io/gorm"
)

// WhatsAppPackage is a purchasable messaging package. Buying one grants a
// Subscription entitling the customer to MaxSessions concurrent sessions on
// the WhatsApp server for DurationDays.
type WhatsAppPackage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name         string  `gorm:"type:varchar(255)" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"type:decimal(15,2)" json:"price"`
	MaxSessions  int     `gorm:"default:1" json:"max_sessions"`
	DurationDays int     `gorm:"default:30" json:"duration_days"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
}
