package services

import (
	"testing"

	"wagate_app_echo/internal/models"
)

func TestCalculateServiceFee(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		cfg      models.PaymentMethodConfig
		expected float64
	}{
		{
			name:   "fixed fee",
			amount: 100000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypeFixed,
				FeeValue: 4000,
			},
			expected: 4000,
		},
		{
			name:   "percentage fee",
			amount: 100000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypePercentage,
				FeeValue: 2,
			},
			expected: 2000,
		},
		{
			name:   "percentage fee below min fee is clamped up",
			amount: 50000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypePercentage,
				FeeValue: 2,
				MinFee:   2000,
			},
			expected: 2000,
		},
		{
			name:   "percentage fee above max fee is clamped down",
			amount: 1000000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypePercentage,
				FeeValue: 2,
				MinFee:   1000,
				MaxFee:   5000,
			},
			expected: 5000,
		},
		{
			name:   "inactive method costs nothing",
			amount: 100000,
			cfg: models.PaymentMethodConfig{
				IsActive: false,
				FeeType:  models.FeeTypeFixed,
				FeeValue: 4000,
			},
			expected: 0,
		},
		{
			name:   "zero fee value costs nothing",
			amount: 100000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypePercentage,
				FeeValue: 0,
			},
			expected: 0,
		},
		{
			name:   "percentage is rounded to 2 decimals",
			amount: 33333,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeTypePercentage,
				FeeValue: 1.5,
			},
			expected: 500,
		},
		{
			name:   "unknown fee type costs nothing",
			amount: 100000,
			cfg: models.PaymentMethodConfig{
				IsActive: true,
				FeeType:  models.FeeType("weird"),
				FeeValue: 4000,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateServiceFee(tt.amount, tt.cfg)
			if got != tt.expected {
				t.Errorf("CalculateServiceFee(%v) = %v; want %v", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestFinalAmountInvariant(t *testing.T) {
	// amount=100000 IDR, fixed fee 4000 => final 104000
	cfg := models.PaymentMethodConfig{IsActive: true, FeeType: models.FeeTypeFixed, FeeValue: 4000}
	fee := CalculateServiceFee(100000, cfg)
	if final := 100000 + fee; final != 104000 {
		t.Errorf("final amount = %v; want 104000", final)
	}

	// amount=50000, 2% with minFee 2000 => raw 1000 clamps to 2000, final 52000
	cfg = models.PaymentMethodConfig{IsActive: true, FeeType: models.FeeTypePercentage, FeeValue: 2, MinFee: 2000}
	fee = CalculateServiceFee(50000, cfg)
	if final := 50000 + fee; final != 52000 {
		t.Errorf("final amount = %v; want 52000", final)
	}
}
