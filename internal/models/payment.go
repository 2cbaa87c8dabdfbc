package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentStatus represents the lifecycle of a single settlement attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentGatewayProvider identifies who settles a payment
type PaymentGatewayProvider string

const (
	GatewayProviderDuitku   PaymentGatewayProvider = "duitku"
	GatewayProviderMidtrans PaymentGatewayProvider = "midtrans"
	GatewayProviderManual   PaymentGatewayProvider = "manual"
)

// Payment is one attempt to settle a Transaction via a specific method.
// The partial unique index on TransactionID enforces "at most one pending
// payment per transaction" at the storage layer, so the check-then-insert
// in the orchestration can never race into a duplicate.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TransactionID uint                   `gorm:"index;uniqueIndex:uniq_payments_one_pending,where:status = 'pending' AND deleted_at IS NULL" json:"transaction_id"`
	OrderID       string                 `gorm:"type:varchar(100);uniqueIndex" json:"order_id"`
	Amount        float64                `gorm:"type:decimal(15,2)" json:"amount"`
	Method        string                 `gorm:"type:varchar(50)" json:"method"`
	Status        PaymentStatus          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ServiceFee    float64                `gorm:"type:decimal(15,2)" json:"service_fee"`
	ExpiresAt     time.Time              `json:"expires_at"`
	ExternalID    string                 `gorm:"type:varchar(100);index" json:"external_id"`
	PaymentURL    string                 `gorm:"type:text" json:"payment_url"`
	Provider      PaymentGatewayProvider `gorm:"type:varchar(50)" json:"gateway_provider"`

	// Opaque blobs of what we sent to / got back from the gateway
	GatewayRequest  json.RawMessage `gorm:"type:jsonb" json:"gateway_request,omitempty"`
	GatewayResponse json.RawMessage `gorm:"type:jsonb" json:"gateway_response,omitempty"`

	PaymentDate *time.Time `json:"payment_date"`

	// Relationships
	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}
