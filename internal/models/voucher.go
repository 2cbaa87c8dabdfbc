package models

import (
	"time"

	"gorm.io/gorm"
)

// VoucherType determines how a voucher's discount is computed
type VoucherType string

const (
	VoucherTypePercentage VoucherType = "percentage"
	VoucherTypeFixed      VoucherType = "fixed"
)

// Voucher is a discount code. A voucher attaches to a Transaction at most once.
type Voucher struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code        string      `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	Description string      `gorm:"type:text" json:"description"`
	Type        VoucherType `gorm:"type:varchar(20);default:'fixed'" json:"type"`
	Value       float64     `gorm:"type:decimal(15,2)" json:"value"`
	MinPurchase float64     `gorm:"type:decimal(15,2)" json:"min_purchase"`
	MaxDiscount float64     `gorm:"type:decimal(15,2)" json:"max_discount"`
	ValidFrom   time.Time   `json:"valid_from"`
	ValidUntil  time.Time   `json:"valid_until"`
	UsageLimit  int         `gorm:"default:0" json:"usage_limit"` // 0 = unlimited
	UsedCount   int         `gorm:"default:0" json:"used_count"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
}
