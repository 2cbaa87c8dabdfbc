package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionStatus represents the lifecycle of a customer order
type TransactionStatus string

const (
	TransactionStatusCreated    TransactionStatus = "created"
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusInProgress TransactionStatus = "in_progress"
	TransactionStatusPaid       TransactionStatus = "paid"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusExpired    TransactionStatus = "expired"
)

// Transaction represents one customer order. Rows are never deleted; the
// status column moves through soft transitions only.
//
// Pricing invariant once a payment method is chosen:
// FinalAmount = TotalAfterDiscount + ServiceFeeAmount
type Transaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint              `gorm:"index" json:"user_id"`
	Status TransactionStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`

	Amount             float64 `gorm:"type:decimal(15,2)" json:"amount"`
	OriginalAmount     float64 `gorm:"type:decimal(15,2)" json:"original_amount"`
	DiscountAmount     float64 `gorm:"type:decimal(15,2)" json:"discount_amount"`
	TotalAfterDiscount float64 `gorm:"type:decimal(15,2)" json:"total_after_discount"`
	ServiceFeeAmount   float64 `gorm:"type:decimal(15,2)" json:"service_fee_amount"`
	FinalAmount        float64 `gorm:"type:decimal(15,2)" json:"final_amount"`
	Currency           string  `gorm:"type:varchar(10);default:'IDR'" json:"currency"`

	ExpiresAt time.Time `json:"expires_at"`
	VoucherID *uint     `gorm:"index" json:"voucher_id"`

	// Relationships
	User     User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Voucher  *Voucher          `gorm:"foreignKey:VoucherID" json:"voucher,omitempty"`
	Items    []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
	Payments []Payment         `gorm:"foreignKey:TransactionID" json:"payments,omitempty"`
}

// IsPayable reports whether a payment may still be created for this order.
// Only freshly created or pending (retrying another method) orders qualify.
func (t Transaction) IsPayable() bool {
	return t.Status == TransactionStatusCreated || t.Status == TransactionStatusPending
}

// IsExpired reports whether the order passed its payment deadline.
func (t Transaction) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// TransactionItem is one purchased package line within a Transaction
type TransactionItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TransactionID uint    `gorm:"index" json:"transaction_id"`
	PackageID     uint    `gorm:"index" json:"package_id"`
	PackageName   string  `gorm:"type:varchar(255)" json:"package_name"`
	UnitPrice     float64 `gorm:"type:decimal(15,2)" json:"unit_price"`
	Quantity      int     `gorm:"default:1" json:"quantity"`
	Subtotal      float64 `gorm:"type:decimal(15,2)" json:"subtotal"`

	// Relationships
	Package WhatsAppPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}
