package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentCallbackHistory stores every raw gateway notification we receive,
// before any processing. Kept for reconciliation and dispute handling.
type PaymentCallbackHistory struct {
	ID        uint                   `gorm:"primaryKey" json:"id"`
	Provider  PaymentGatewayProvider `gorm:"type:varchar(50);not null" json:"gateway_provider"`
	OrderID   string                 `gorm:"type:varchar(100);index" json:"order_id"`
	Metadata  json.RawMessage        `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	DeletedAt gorm.DeletedAt         `gorm:"index" json:"deleted_at,omitempty"`
}
