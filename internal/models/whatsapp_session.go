package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionConnectionStatus mirrors the connection state reported by the
// external WhatsApp server. The server is the source of truth; rows here are
// a cache refreshed by sync-on-read and the reconciliation task.
type SessionConnectionStatus string

const (
	SessionStatusStarting     SessionConnectionStatus = "starting"
	SessionStatusScanQR       SessionConnectionStatus = "scan_qr"
	SessionStatusConnected    SessionConnectionStatus = "connected"
	SessionStatusDisconnected SessionConnectionStatus = "disconnected"
	SessionStatusStopped      SessionConnectionStatus = "stopped"
)

// WhatsAppSession is one messaging session slot claimed against a Subscription
type WhatsAppSession struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	SubscriptionID uint   `gorm:"index" json:"subscription_id"`
	UserID         uint   `gorm:"index" json:"user_id"`
	SessionName    string `gorm:"type:varchar(100);uniqueIndex" json:"session_name"`

	ConnectionStatus SessionConnectionStatus `gorm:"type:varchar(20);default:'starting'" json:"connection_status"`
	PhoneNumber      string                  `gorm:"type:varchar(50)" json:"phone_number"`
	MessagesSent     int64                   `gorm:"default:0" json:"messages_sent"`
	LastSyncedAt     *time.Time              `json:"last_synced_at"`

	// Relationships
	Subscription Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
}
