package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelWhatsapp NotificationChannel = "whatsapp"
	NotificationChannelNone     NotificationChannel = "none"
)

// NotificationPreference controls how order confirmations and payment
// reminders reach a customer. Absent a row, notifications go to WhatsApp
// (the number is already OTP-verified).
type NotificationPreference struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID  uint                `gorm:"uniqueIndex" json:"user_id"`
	Channel NotificationChannel `gorm:"type:varchar(20);default:'whatsapp'" json:"channel"`
}
