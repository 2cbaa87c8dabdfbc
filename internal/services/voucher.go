package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"wagate_app_echo/internal/models"
)

var (
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrVoucherInactive    = errors.New("voucher is not active")
	ErrVoucherNotStarted  = errors.New("voucher is not valid yet")
	ErrVoucherExpired     = errors.New("voucher has expired")
	ErrVoucherExhausted   = errors.New("voucher usage limit reached")
	ErrVoucherMinPurchase = errors.New("purchase amount below voucher minimum")
)

// EvaluateVoucher computes the discount a voucher grants on `amount` at time
// `now`. Pure calculation; the discount never exceeds the amount itself and
// percentage discounts are capped by MaxDiscount when set.
func EvaluateVoucher(v models.Voucher, amount float64, now time.Time) (float64, error) {
	if !v.IsActive {
		return 0, ErrVoucherInactive
	}
	if !v.ValidFrom.IsZero() && now.Before(v.ValidFrom) {
		return 0, ErrVoucherNotStarted
	}
	if !v.ValidUntil.IsZero() && now.After(v.ValidUntil) {
		return 0, ErrVoucherExpired
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return 0, ErrVoucherExhausted
	}
	if v.MinPurchase > 0 && amount < v.MinPurchase {
		return 0, ErrVoucherMinPurchase
	}

	var discount float64
	switch v.Type {
	case models.VoucherTypePercentage:
		discount = amount * v.Value / 100
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	case models.VoucherTypeFixed:
		discount = v.Value
	default:
		return 0, fmt.Errorf("unknown voucher type: %s", v.Type)
	}

	if discount > amount {
		discount = amount
	}

	return Round2(discount), nil
}

// VoucherService resolves codes against the vouchers table
type VoucherService struct {
	db *gorm.DB
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// Evaluate looks up a voucher code and computes the discount for `amount`.
func (s *VoucherService) Evaluate(code string, amount float64) (*models.Voucher, float64, error) {
	var voucher models.Voucher
	if err := s.db.Where("code = ?", code).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrVoucherNotFound
		}
		return nil, 0, err
	}

	discount, err := EvaluateVoucher(voucher, amount, time.Now())
	if err != nil {
		return nil, 0, err
	}
	return &voucher, discount, nil
}

// ConsumeVoucher increments the usage counter inside the caller's transaction.
func ConsumeVoucher(tx *gorm.DB, voucherID uint) error {
	return tx.Model(&models.Voucher{}).Where("id = ?", voucherID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}
