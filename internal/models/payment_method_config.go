package models

import (
	"time"

	"gorm.io/gorm"
)

// FeeType determines how a payment method's service fee is computed
type FeeType string

const (
	FeeTypePercentage FeeType = "percentage"
	FeeTypeFixed      FeeType = "fixed"
)

// PaymentMethodConfig describes one payable channel. Admin-configured,
// read-only from the checkout flow's perspective.
type PaymentMethodConfig struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code        string  `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	Name        string  `gorm:"type:varchar(255)" json:"name"`
	FeeType     FeeType `gorm:"type:varchar(20);default:'fixed'" json:"fee_type"`
	FeeValue    float64 `gorm:"type:decimal(15,2)" json:"fee_value"`
	MinFee      float64 `gorm:"type:decimal(15,2)" json:"min_fee"`
	MaxFee      float64 `gorm:"type:decimal(15,2)" json:"max_fee"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	// Gateway methods call out to a payment processor; manual methods wait
	// for an admin to confirm the incoming transfer.
	IsGateway               bool                   `gorm:"default:false" json:"is_gateway"`
	RequiresManualApproval  bool                   `gorm:"default:false" json:"requires_manual_approval"`
	GatewayProvider         PaymentGatewayProvider `gorm:"type:varchar(50);default:'manual'" json:"gateway_provider"`
	GatewayChannelCode      string                 `gorm:"type:varchar(50)" json:"gateway_channel_code"`

	// Bank details shown to the customer for manual transfer methods
	BankName          string `gorm:"type:varchar(100)" json:"bank_name"`
	BankAccountNumber string `gorm:"type:varchar(50)" json:"bank_account_number"`
	BankAccountName   string `gorm:"type:varchar(255)" json:"bank_account_name"`
}
