package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin    UserType = "Admin"
	UserTypeCustomer UserType = "Customer"
)

// User represents a customer or admin account.
// Customers are created lazily during checkout once their phone number
// passes OTP verification.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string   `gorm:"type:varchar(255)" json:"name"`
	Phone    string   `gorm:"type:varchar(50);uniqueIndex" json:"phone"`
	Email    string   `gorm:"type:varchar(255)" json:"email"`
	UserType UserType `gorm:"type:varchar(20);default:'Customer'" json:"user_type"`

	// Relationships
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Subscriptions []Subscription `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
}
