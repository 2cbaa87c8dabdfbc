package services

import (
	"errors"
	"testing"
	"time"

	"wagate_app_echo/internal/models"
)

func TestEvaluateVoucher(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	window := models.Voucher{
		IsActive:   true,
		ValidFrom:  now.AddDate(0, -1, 0),
		ValidUntil: now.AddDate(0, 1, 0),
	}

	tests := []struct {
		name     string
		voucher  func() models.Voucher
		amount   float64
		expected float64
		wantErr  error
	}{
		{
			name: "fixed discount",
			voucher: func() models.Voucher {
				v := window
				v.Type = models.VoucherTypeFixed
				v.Value = 10000
				return v
			},
			amount:   100000,
			expected: 10000,
		},
		{
			name: "percentage discount capped by max discount",
			voucher: func() models.Voucher {
				v := window
				v.Type = models.VoucherTypePercentage
				v.Value = 10
				v.MaxDiscount = 5000
				return v
			},
			amount:   100000,
			expected: 5000,
		},
		{
			name: "fixed discount never exceeds amount",
			voucher: func() models.Voucher {
				v := window
				v.Type = models.VoucherTypeFixed
				v.Value = 75000
				return v
			},
			amount:   50000,
			expected: 50000,
		},
		{
			name: "inactive voucher",
			voucher: func() models.Voucher {
				v := window
				v.IsActive = false
				v.Type = models.VoucherTypeFixed
				v.Value = 1000
				return v
			},
			amount:  100000,
			wantErr: ErrVoucherInactive,
		},
		{
			name: "expired voucher",
			voucher: func() models.Voucher {
				v := window
				v.ValidUntil = now.AddDate(0, -1, 0)
				v.Type = models.VoucherTypeFixed
				v.Value = 1000
				return v
			},
			amount:  100000,
			wantErr: ErrVoucherExpired,
		},
		{
			name: "not started yet",
			voucher: func() models.Voucher {
				v := window
				v.ValidFrom = now.AddDate(0, 0, 1)
				v.Type = models.VoucherTypeFixed
				v.Value = 1000
				return v
			},
			amount:  100000,
			wantErr: ErrVoucherNotStarted,
		},
		{
			name: "usage limit reached",
			voucher: func() models.Voucher {
				v := window
				v.Type = models.VoucherTypeFixed
				v.Value = 1000
				v.UsageLimit = 5
				v.UsedCount = 5
				return v
			},
			amount:  100000,
			wantErr: ErrVoucherExhausted,
		},
		{
			name: "below minimum purchase",
			voucher: func() models.Voucher {
				v := window
				v.Type = models.VoucherTypeFixed
				v.Value = 1000
				v.MinPurchase = 200000
				return v
			},
			amount:  100000,
			wantErr: ErrVoucherMinPurchase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateVoucher(tt.voucher(), tt.amount, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EvaluateVoucher error = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EvaluateVoucher returned error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("EvaluateVoucher = %v; want %v", got, tt.expected)
			}
		})
	}
}
